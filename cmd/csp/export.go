package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/easy-csp/csp/internal/budget"
	"github.com/easy-csp/csp/internal/service"
	"github.com/easy-csp/csp/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a month's plan to Google Sheets",
		Long: `Export the spending plan report for a month to a Google spreadsheet.
Each month gets its own tab; re-exporting a month replaces its tab.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("month", "m", "", "Month to export (format: 2024-01, default: current month)")
	cmd.Flags().String("spreadsheet-id", "", "Spreadsheet ID (overrides config)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	monthFlag, _ := cmd.Flags().GetString("month")
	month, err := parseMonth(monthFlag)
	if err != nil {
		return err
	}

	sheetsConfig := sheets.DefaultConfig()
	sheetsConfig.ClientID = viper.GetString("sheets.client_id")
	sheetsConfig.ClientSecret = viper.GetString("sheets.client_secret")
	sheetsConfig.RefreshToken = viper.GetString("sheets.refresh_token")
	sheetsConfig.ServiceAccountPath = viper.GetString("sheets.service_account_path")
	if id := viper.GetString("sheets.spreadsheet_id"); id != "" {
		sheetsConfig.SpreadsheetID = id
	}
	if id, _ := cmd.Flags().GetString("spreadsheet-id"); id != "" {
		sheetsConfig.SpreadsheetID = id
	}

	if sheetsConfig.RefreshToken == "" {
		sheetsConfig.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if sheetsConfig.RefreshToken == "" {
		// Fall back to the token file written by 'csp auth sheets'
		if home, homeErr := os.UserHomeDir(); homeErr == nil {
			tokenFile := filepath.Join(home, ".config", "csp", "sheets-token.json")
			if token, tokenErr := sheets.LoadToken(tokenFile); tokenErr == nil {
				sheetsConfig.RefreshToken = token.RefreshToken
			}
		}
	}
	if err := sheetsConfig.Validate(); err != nil {
		return fmt.Errorf("sheets not configured, run 'csp auth sheets' first: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	plan, err := store.GetBudgetPlan(ctx)
	if err != nil {
		return fmt.Errorf("failed to load budget plan: %w", err)
	}

	window := service.MonthRange(month.Year(), month.Month(), month.Location())
	txns, err := store.GetTransactions(ctx, service.TransactionFilter{
		StartDate: &window.Start,
		EndDate:   &window.End,
	})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	result := budget.Aggregate(plan, txns, nil)

	writer, err := sheets.NewWriter(ctx, sheetsConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	start := time.Now()
	if err := writer.Export(ctx, result, month); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	slog.Info("Export complete",
		"month", month.Format("2006-01"),
		"duration", time.Since(start).Round(time.Millisecond))

	return nil
}
