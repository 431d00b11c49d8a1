package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/easy-csp/csp/internal/cli"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/target"
)

func targetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Manage saving targets",
		Long: `Manage saving targets: goals bound to a linked bank account whose
balance measures progress.`,
	}

	cmd.AddCommand(targetsListCmd())
	cmd.AddCommand(targetsAddCmd())
	cmd.AddCommand(targetsUpdateCmd())
	cmd.AddCommand(targetsRemoveCmd())

	return cmd
}

func targetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saving targets with current progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			resolutions, err := target.NewService(store).List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list saving targets: %w", err)
			}

			if len(resolutions) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No saving targets yet. Add one with 'csp targets add'."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, cli.TableHeaderStyle.Render("Name")+"\t"+
				cli.TableHeaderStyle.Render("Progress")+"\t"+
				cli.TableHeaderStyle.Render("Target")+"\t"+
				cli.TableHeaderStyle.Render("Account"))

			for _, res := range resolutions {
				account := cli.SubtleStyle.Render("not linked")
				if res.AccountInfo != nil {
					account = fmt.Sprintf("%s · %s", res.AccountInfo.InstitutionName, res.AccountInfo.AccountName)
				}

				fmt.Fprintf(w, "%s\t%s (%s)\t%s\t%s\n",
					cli.BoldStyle.Render(res.Target.Name),
					cli.FormatCurrency(res.CurrentAmount),
					cli.FormatPercentage(res.PercentComplete()),
					cli.FormatCurrency(res.Target.TargetAmount),
					account)
			}
			return w.Flush()
		},
	}
}

func targetsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name] [amount]",
		Short: "Add a saving target",
		Long: `Add a saving target bound to an account of a linked institution.

Example:
  csp targets add "Emergency Fund" 10000 --institution ins_12345 --account acc_67890`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			institutionID, _ := cmd.Flags().GetString("institution")
			accountID, _ := cmd.Flags().GetString("account")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			created, err := target.NewService(store).Create(ctx, model.SavingTarget{
				Name:          args[0],
				TargetAmount:  amount,
				InstitutionID: institutionID,
				AccountID:     accountID,
			})
			if err != nil {
				return fmt.Errorf("failed to create saving target: %w", err)
			}

			slog.Info("Saving target created", "id", created.ID, "name", created.Name)
			return nil
		},
	}

	cmd.Flags().String("institution", "", "Institution ID the target's account belongs to")
	cmd.Flags().String("account", "", "Account ID whose balance measures progress")

	return cmd
}

func targetsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a saving target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			existing, err := store.GetSavingTargetByID(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load saving target: %w", err)
			}

			updated := *existing
			if name, _ := cmd.Flags().GetString("name"); name != "" {
				updated.Name = name
			}
			if amount, _ := cmd.Flags().GetString("amount"); amount != "" {
				parsed, parseErr := decimal.NewFromString(amount)
				if parseErr != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, parseErr)
				}
				updated.TargetAmount = parsed
			}
			if institutionID, _ := cmd.Flags().GetString("institution"); institutionID != "" {
				updated.InstitutionID = institutionID
			}
			if accountID, _ := cmd.Flags().GetString("account"); accountID != "" {
				updated.AccountID = accountID
			}

			if _, err := target.NewService(store).Update(ctx, updated); err != nil {
				return fmt.Errorf("failed to update saving target: %w", err)
			}

			slog.Info("Saving target updated", "id", updated.ID, "name", updated.Name)
			return nil
		},
	}

	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("amount", "", "New target amount")
	cmd.Flags().String("institution", "", "New institution ID")
	cmd.Flags().String("account", "", "New account ID")

	return cmd
}

func targetsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id]",
		Short: "Remove a saving target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := target.NewService(store).Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to remove saving target: %w", err)
			}

			slog.Info("Saving target removed", "id", args[0])
			return nil
		},
	}
}
