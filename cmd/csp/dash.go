package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easy-csp/csp/internal/tui"
)

func dashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Interactive plan dashboard",
		Long: `Open an interactive terminal dashboard: browse months, watch bucket
progress bars, hide transactions, and track saving targets.`,
		RunE: runDash,
	}

	cmd.Flags().StringP("month", "m", "", "Month to open (format: 2024-01, default: current month)")

	return cmd
}

func runDash(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	monthFlag, _ := cmd.Flags().GetString("month")
	month, err := parseMonth(monthFlag)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	return tui.Run(tui.Config{
		Storage: store,
		Month:   month,
	})
}
