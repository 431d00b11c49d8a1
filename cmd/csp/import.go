package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/easy-csp/csp/internal/cli"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your
bank, for accounts that aren't linked through Plaid.

Examples:
  csp import ~/Downloads/chase_jan_2024.qfx
  csp import ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return fmt.Errorf("no files to import")
	}

	parser := ofx.NewParser()

	var all []model.Transaction
	for _, file := range files {
		f, err := os.Open(file) //nolint:gosec
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}

		txns, parseErr := parser.Parse(f)
		_ = f.Close()
		if parseErr != nil {
			return fmt.Errorf("failed to parse %s: %w", file, parseErr)
		}

		slog.Info("Parsed OFX file", "file", filepath.Base(file), "transactions", len(txns))
		all = append(all, txns...)
	}

	if dryRun {
		for _, txn := range all {
			fmt.Printf("%s  %-40s %12s\n",
				txn.Date.Format("2006-01-02"),
				txn.Name,
				cli.FormatCurrency(txn.Amount))
		}
		slog.Info("Dry run complete, nothing saved", "transactions", len(all))
		return nil
	}

	if len(all) == 0 {
		slog.Info("No transactions found in the given files")
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, all); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("Import complete", "files", len(files), "transactions", len(all))
	return nil
}
