package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/easy-csp/csp/internal/cli"
	"github.com/easy-csp/csp/internal/common"
)

func institutionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "institutions",
		Short: "Manage linked financial institutions",
	}

	cmd.AddCommand(institutionsListCmd())
	cmd.AddCommand(institutionsRemoveCmd())

	return cmd
}

func institutionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List linked institutions and their accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			institutions, err := store.GetInstitutions(ctx)
			if err != nil {
				return fmt.Errorf("failed to load institutions: %w", err)
			}

			if len(institutions) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No institutions linked. Run 'csp auth plaid' to connect a bank."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, inst := range institutions {
				lastSync := "never"
				if !inst.LastSyncAt.IsZero() {
					lastSync = inst.LastSyncAt.Format("2006-01-02 15:04")
				}

				fmt.Fprintf(w, "%s\t%s\tlast sync: %s\t%s\n",
					cli.BoldStyle.Render(inst.InstitutionName),
					string(inst.Status),
					lastSync,
					cli.SubtleStyle.Render(inst.ID))

				for _, acc := range inst.Accounts {
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
						acc.AccountName,
						string(acc.AccountType),
						cli.FormatCurrency(acc.Balance),
						cli.SubtleStyle.Render(acc.AccountID))
				}
			}
			return w.Flush()
		},
	}
}

func institutionsRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [id]",
		Short: "Unlink an institution",
		Long: `Unlink an institution. Its accounts are removed; imported transactions
are kept unless --purge is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			purge, _ := cmd.Flags().GetBool("purge")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			inst, err := store.GetInstitutionByID(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load institution: %w", err)
			}

			if purge {
				for _, acc := range inst.Accounts {
					if err := store.DeleteTransactionsByAccount(ctx, acc.AccountID); err != nil {
						common.LogError(err, "Failed to purge account transactions", common.Fields{
							"account_id": acc.AccountID,
						})
					}
				}
			}

			if err := store.DeleteInstitution(ctx, inst.ID); err != nil {
				return fmt.Errorf("failed to remove institution: %w", err)
			}

			slog.Info("Institution removed", "name", inst.InstitutionName, "purged", purge)
			return nil
		},
	}

	cmd.Flags().Bool("purge", false, "Also delete the institution's imported transactions")

	return cmd
}
