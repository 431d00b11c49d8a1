package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/easy-csp/csp/internal/cli"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List and edit transactions",
	}

	cmd.AddCommand(transactionsListCmd())
	cmd.AddCommand(transactionsHideCmd())
	cmd.AddCommand(transactionsUnhideCmd())
	cmd.AddCommand(transactionsCategorizeCmd())

	return cmd
}

func transactionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			monthFlag, _ := cmd.Flags().GetString("month")
			accountID, _ := cmd.Flags().GetString("account")
			categoryFlag, _ := cmd.Flags().GetString("category")
			showHidden, _ := cmd.Flags().GetBool("hidden")
			limit, _ := cmd.Flags().GetInt("limit")

			month, err := parseMonth(monthFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			window := service.MonthRange(month.Year(), month.Month(), month.Location())
			filter := service.TransactionFilter{
				StartDate: &window.Start,
				EndDate:   &window.End,
				AccountID: accountID,
				Limit:     limit,
			}
			if categoryFlag != "" {
				category := model.Category(categoryFlag)
				if !model.KnownCategory(category) {
					return fmt.Errorf("unknown category %q", categoryFlag)
				}
				filter.Category = &category
			}

			txns, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to load transactions: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, cli.TableHeaderStyle.Render("Date")+"\t"+
				cli.TableHeaderStyle.Render("Name")+"\t"+
				cli.TableHeaderStyle.Render("Category")+"\t"+
				cli.TableHeaderStyle.Render("Amount")+"\t"+
				cli.TableHeaderStyle.Render("ID"))

			shown := 0
			for _, txn := range txns {
				if txn.Hidden && !showHidden {
					continue
				}
				shown++

				name := txn.Name
				if txn.MerchantName != "" {
					name = txn.MerchantName
				}
				if txn.Hidden {
					name = cli.SubtleStyle.Render(name + " (hidden)")
				}

				category := string(txn.Category)
				if category == "" {
					category = cli.SubtleStyle.Render("uncategorized")
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					txn.Date.Format("2006-01-02"),
					name,
					category,
					cli.FormatCurrency(txn.Amount),
					cli.SubtleStyle.Render(txn.ID))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if shown == 0 {
				fmt.Println(cli.SubtleStyle.Render("No transactions for " + month.Format("January 2006") + "."))
			}
			return nil
		},
	}

	cmd.Flags().StringP("month", "m", "", "Month to list (format: 2024-01, default: current month)")
	cmd.Flags().String("account", "", "Only show transactions for this account ID")
	cmd.Flags().String("category", "", "Only show transactions in this category")
	cmd.Flags().Bool("hidden", false, "Include hidden transactions")
	cmd.Flags().Int("limit", 0, "Maximum number of transactions to return")

	return cmd
}

func transactionsHideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hide [id...]",
		Short: "Hide transactions from plan totals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setHidden(cmd, args, true)
		},
	}
}

func transactionsUnhideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unhide [id...]",
		Short: "Restore hidden transactions to plan totals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setHidden(cmd, args, false)
		},
	}
}

func setHidden(cmd *cobra.Command, ids []string, hidden bool) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	for _, id := range ids {
		if err := store.SetTransactionHidden(ctx, id, hidden); err != nil {
			return fmt.Errorf("failed to update transaction %s: %w", id, err)
		}
	}

	slog.Info("Transactions updated", "count", len(ids), "hidden", hidden)
	return nil
}

func transactionsCategorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize [id] [category]",
		Short: "Set a transaction's category",
		Long: `Assign a transaction to a category. The category places the transaction
in its spending bucket for plan totals.

Example:
  csp transactions categorize 3f2a... Groceries`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			category := model.Category(args[1])
			if !model.KnownCategory(category) {
				return fmt.Errorf("unknown category %q, run 'csp budget categories' to see valid names", args[1])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.SetTransactionCategory(ctx, args[0], category); err != nil {
				return fmt.Errorf("failed to categorize transaction: %w", err)
			}

			slog.Info("Transaction categorized", "id", args[0], "category", category)
			return nil
		},
	}
}
