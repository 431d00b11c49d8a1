// Package sheets exports monthly plan reports to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/easy-csp/csp/internal/common"
)

// Config holds the configuration for the Google Sheets exporter.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName: "Conscious Spending Plan",
		RetryAttempts:   3,
		RetryDelay:      time.Second,
	}
}

// Validate ensures at least one authentication method is configured.
func (c *Config) Validate() error {
	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "") {
		return fmt.Errorf("%w: provide either a service account path or OAuth2 credentials for Google Sheets", common.ErrMissingConfig)
	}
	return nil
}
