package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/easy-csp/csp/internal/budget"
	"github.com/easy-csp/csp/internal/cli"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/service"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "View the spending plan for a month",
		Long: `Show the conscious spending plan for a month: every bucket with its
budgeted amounts, actual spending, and what's left.`,
		RunE: runPlan,
	}

	cmd.Flags().StringP("month", "m", "", "Month to show (format: 2024-01, default: current month)")
	cmd.Flags().Bool("all", false, "Include buckets with no budget and no spending")

	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	monthFlag, _ := cmd.Flags().GetString("month")
	showAll, _ := cmd.Flags().GetBool("all")

	month, err := parseMonth(monthFlag)
	if err != nil {
		return err
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

	fmt.Println(cli.TitleStyle.Render("Conscious Spending Plan · " + month.Format("January 2006")))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, cli.TableHeaderStyle.Render("Category")+"\t"+
		cli.TableHeaderStyle.Render("Budgeted")+"\t"+
		cli.TableHeaderStyle.Render("Spent")+"\t"+
		cli.TableHeaderStyle.Render("Remaining"))

	for _, bucket := range model.Buckets {
		totals := result.Bucket(bucket)
		if !showAll && totals.Budgeted.IsZero() && totals.Spent.IsZero() {
			continue
		}

		header := fmt.Sprintf("%s (%s)", bucket.DisplayName(), cli.FormatPercentage(totals.Percentage))
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			cli.BoldStyle.Render(header),
			cli.FormatCurrency(totals.Budgeted),
			cli.FormatCurrency(totals.Spent),
			cli.RemainingStyle(totals.Remaining.IsNegative()).Render(cli.FormatCurrency(totals.Remaining)))

		for _, c := range totals.Categories {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
				c.Category,
				cli.FormatCurrency(c.Budgeted),
				cli.FormatCurrency(c.Spent),
				cli.FormatCurrency(c.Remaining()))
		}
	}

	fmt.Fprintln(w, strings.Repeat("-", 8)+"\t\t\t")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		cli.BoldStyle.Render("Total"),
		cli.FormatCurrency(result.TotalBudgeted),
		cli.FormatCurrency(result.TotalSpent),
		cli.FormatCurrency(result.TotalBudgeted.Sub(result.TotalSpent)))

	return w.Flush()
}
