package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/easy-csp/csp/internal/config"
	"github.com/easy-csp/csp/internal/plaid"
	"github.com/easy-csp/csp/internal/service"
	"github.com/easy-csp/csp/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newPlaidClient builds a Plaid client from config, falling back to
// environment variables for credentials.
func newPlaidClient() (*plaid.Client, error) {
	clientID := viper.GetString("plaid.client_id")
	secret := viper.GetString("plaid.secret")
	environment := viper.GetString("plaid.environment")

	if clientID == "" {
		clientID = os.Getenv("PLAID_CLIENT_ID")
	}
	if secret == "" {
		secret = os.Getenv("PLAID_SECRET")
	}
	if environment == "" {
		environment = os.Getenv("PLAID_ENV")
		if environment == "" {
			environment = "production"
		}
	}

	if clientID == "" || secret == "" {
		return nil, fmt.Errorf("plaid credentials missing. Please add your Client ID and Secret to the config file or set PLAID_CLIENT_ID and PLAID_SECRET environment variables")
	}

	return plaid.NewClient(plaid.Config{
		ClientID:    clientID,
		Secret:      secret,
		Environment: environment,
	})
}

// parseMonth parses a YYYY-MM flag value, defaulting to the current month
// when empty.
func parseMonth(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	}

	month, err := time.ParseInLocation("2006-01", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", value, err)
	}

	return month, nil
}
