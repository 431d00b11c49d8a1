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
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage budgeted amounts per category",
		Long: `Manage the budget side of the spending plan: the target amount for
each category within its bucket.`,
	}

	cmd.AddCommand(budgetListCmd())
	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetRemoveCmd())
	cmd.AddCommand(budgetCategoriesCmd())

	return cmd
}

func budgetCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the buckets and the categories they accept",
		RunE: func(_ *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, bucket := range model.Buckets {
				fmt.Fprintln(w, cli.BoldStyle.Render(bucket.DisplayName()))
				for _, category := range model.CategoriesIn(bucket) {
					fmt.Fprintf(w, "  %s\n", category)
				}
			}
			return w.Flush()
		},
	}
}

func budgetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all budget entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			plan, err := store.GetBudgetPlan(ctx)
			if err != nil {
				return fmt.Errorf("failed to load budget plan: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, bucket := range model.Buckets {
				entries := plan.Entries(bucket)
				if len(entries) == 0 {
					continue
				}

				fmt.Fprintf(w, "%s\t%s\n",
					cli.BoldStyle.Render(bucket.DisplayName()),
					cli.FormatCurrency(plan.TotalTarget(bucket)))
				for _, entry := range entries {
					fmt.Fprintf(w, "  %s\t%s\n", entry.Category, cli.FormatCurrency(entry.Target))
				}
			}
			return w.Flush()
		},
	}
}

func budgetSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [category] [amount]",
		Short: "Set the budgeted amount for a category",
		Long: `Set the monthly budgeted amount for a category. The category is placed
in its bucket automatically.

Example:
  csp budget set Groceries 450
  csp budget set "Rent/Mortgage" 1500`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			category := model.Category(args[0])
			if !model.KnownCategory(category) {
				return fmt.Errorf("unknown category %q, run 'csp budget categories' to see valid names", args[0])
			}

			target, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			bucket, _ := model.BucketFor(category)

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			entry := model.BudgetEntry{Category: category, Target: target}
			if _, err := store.UpsertBudgetEntry(ctx, bucket, entry); err != nil {
				return fmt.Errorf("failed to save budget entry: %w", err)
			}

			slog.Info("Budget entry saved",
				"bucket", bucket.DisplayName(),
				"category", category,
				"target", cli.FormatCurrency(target))
			return nil
		},
	}
}

func budgetRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [category]",
		Short: "Remove a category's budget entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			category := model.Category(args[0])
			bucket, ok := model.BucketFor(category)
			if !ok {
				return fmt.Errorf("unknown category %q", args[0])
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

			for _, entry := range plan.Entries(bucket) {
				if entry.Category != category {
					continue
				}
				if err := store.DeleteBudgetEntry(ctx, entry.ID); err != nil {
					return fmt.Errorf("failed to remove budget entry: %w", err)
				}
				slog.Info("Budget entry removed", "category", category)
				return nil
			}

			return fmt.Errorf("no budget entry for category %q", args[0])
		},
	}
}
