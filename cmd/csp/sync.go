package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/sync"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull new transactions and balances from linked banks",
		Long: `Sync all linked institutions through Plaid: fetch new, modified, and
removed transactions since the last sync, and refresh account balances.`,
		RunE: runSync,
	}

	cmd.Flags().String("institution", "", "Only sync this institution ID")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	client, err := newPlaidClient()
	if err != nil {
		return err
	}

	var institutions []model.FinancialInstitution
	if id, _ := cmd.Flags().GetString("institution"); id != "" {
		inst, instErr := store.GetInstitutionByID(ctx, id)
		if instErr != nil {
			return fmt.Errorf("failed to load institution: %w", instErr)
		}
		institutions = []model.FinancialInstitution{*inst}
	} else {
		institutions, err = store.GetInstitutions(ctx)
		if err != nil {
			return fmt.Errorf("failed to load institutions: %w", err)
		}
	}

	if len(institutions) == 0 {
		slog.Info("No institutions linked. Run 'csp auth plaid' to connect a bank.")
		return nil
	}

	bar := progressbar.NewOptions(len(institutions),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Syncing institutions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	syncer := sync.NewSyncer(store, client)

	var added, modified, removed, failed int
	for _, inst := range institutions {
		stats, syncErr := syncer.SyncInstitution(ctx, inst)
		if syncErr != nil {
			failed++
			common.LogError(syncErr, "Institution sync failed", common.Fields{
				"institution": inst.InstitutionName,
			})
		} else {
			added += stats.Added
			modified += stats.Modified
			removed += stats.Removed
		}
		_ = bar.Add(1)
	}

	slog.Info("Sync complete",
		"institutions", len(institutions),
		"added", added,
		"modified", modified,
		"removed", removed,
		"failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d institutions failed to sync", failed, len(institutions))
	}
	return nil
}
