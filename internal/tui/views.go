package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/easy-csp/csp/internal/cli"
	"github.com/easy-csp/csp/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.PrimaryColor).
			Padding(0, 1)

	bucketStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(cli.PrimaryColor)

	hiddenStyle = lipgloss.NewStyle().
			Faint(true).
			Strikethrough(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("244"))

	activeTabStyle = tabStyle.
			Foreground(cli.PrimaryColor).
			Bold(true).
			Underline(true)
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.view {
	case ViewPlan:
		b.WriteString(m.renderPlan())
	case ViewTransactions:
		b.WriteString(m.renderTransactions())
	case ViewTargets:
		b.WriteString(m.renderTargets())
	}

	if m.lastError != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("error: " + m.lastError.Error()))
	}

	b.WriteString("\n\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keymap.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keymap.ShortHelp()))
	}

	return b.String()
}

func (m Model) renderLoading() string {
	return headerStyle.Render("Loading plan...")
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("Conscious Spending Plan · " + m.month.Format("January 2006"))

	tabs := make([]string, 0, 3)
	for i, name := range []string{"Plan", "Transactions", "Targets"} {
		style := tabStyle
		if View(i) == m.view {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(name))
	}

	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderPlan() string {
	var b strings.Builder

	for _, bucket := range model.Buckets {
		totals := m.result.Bucket(bucket)
		if totals.Budgeted.IsZero() && totals.Spent.IsZero() {
			continue
		}

		b.WriteString(bucketStyle.Render(bucket.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.progress.ViewAs(min(totals.Percentage/100, 1.0)))
		b.WriteString(fmt.Sprintf("  %s of %s (%s remaining)\n",
			cli.FormatCurrency(totals.Spent),
			cli.FormatCurrency(totals.Budgeted),
			cli.FormatCurrency(totals.Remaining)))

		for _, c := range totals.Categories {
			b.WriteString(rowStyle.Render(fmt.Sprintf("  %-26s %12s / %-12s",
				c.Category,
				cli.FormatCurrency(c.Spent),
				cli.FormatCurrency(c.Budgeted))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(bucketStyle.Render(fmt.Sprintf("Total: %s spent of %s budgeted",
		cli.FormatCurrency(m.result.TotalSpent),
		cli.FormatCurrency(m.result.TotalBudgeted))))

	return b.String()
}

func (m Model) renderTransactions() string {
	if len(m.transactions) == 0 {
		return rowStyle.Render("No transactions this month.")
	}

	var b strings.Builder

	start, end := visibleWindow(m.cursor, len(m.transactions), m.visibleRows())
	for i := start; i < end; i++ {
		txn := m.transactions[i]

		name := txn.Name
		if txn.MerchantName != "" {
			name = txn.MerchantName
		}

		category := string(txn.Category)
		if category == "" {
			category = "uncategorized"
		}

		line := fmt.Sprintf("%s  %-32s %-24s %12s",
			txn.Date.Format("Jan 02"),
			truncate(name, 32),
			truncate(category, 24),
			cli.FormatCurrency(txn.Amount))

		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		case txn.Hidden:
			line = hiddenStyle.Render(line)
		default:
			line = rowStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderTargets() string {
	if len(m.resolutions) == 0 {
		return rowStyle.Render("No saving targets yet.")
	}

	var b strings.Builder

	for _, res := range m.resolutions {
		b.WriteString(bucketStyle.Render(res.Target.Name))
		b.WriteString("\n")
		b.WriteString(m.progress.ViewAs(min(res.PercentComplete()/100, 1.0)))
		b.WriteString(fmt.Sprintf("  %s of %s",
			cli.FormatCurrency(res.CurrentAmount),
			cli.FormatCurrency(res.Target.TargetAmount)))

		if res.AccountInfo != nil {
			b.WriteString(rowStyle.Render(fmt.Sprintf("  (%s · %s)",
				res.AccountInfo.InstitutionName, res.AccountInfo.AccountName)))
		} else {
			b.WriteString(rowStyle.Render("  (account not linked)"))
		}
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) visibleRows() int {
	rows := m.height - 8
	if rows < 5 {
		rows = 5
	}
	return rows
}

// visibleWindow returns a [start, end) slice window keeping the cursor in view.
func visibleWindow(cursor, length, rows int) (int, int) {
	if length <= rows {
		return 0, length
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > length {
		start = length - rows
	}
	return start, start + rows
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}
