package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easy-csp/csp/internal/budget"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/service"
	"github.com/easy-csp/csp/internal/target"
)

// View represents the current view mode.
type View int

const (
	ViewPlan View = iota
	ViewTransactions
	ViewTargets
)

// Config holds the configuration for the dashboard.
type Config struct {
	Storage service.Storage
	Month   time.Time
	Width   int
	Height  int
}

// Model holds the main TUI state.
type Model struct {
	storage      service.Storage
	lastError    error
	progress     progress.Model
	transactions []model.Transaction
	resolutions  []target.Resolution
	result       budget.Result
	month        time.Time
	keymap       KeyMap
	help         help.Model
	cursor       int
	width        int
	height       int
	view         View
	showHelp     bool
	ready        bool
	quitting     bool
}

func newModel(cfg Config) Model {
	month := cfg.Month
	if month.IsZero() {
		now := time.Now()
		month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}

	return Model{
		storage:  cfg.Storage,
		month:    month,
		view:     ViewPlan,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
		width:    cfg.Width,
		height:   cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.loadPlan(m.month),
		m.loadTargets(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(40, msg.Width-40)

	case planLoadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.month = msg.month
		m.result = msg.result
		m.transactions = msg.transactions
		m.cursor = clampCursor(m.cursor, len(m.transactions))
		m.lastError = nil
		m.ready = true

	case targetsLoadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.resolutions = msg.resolutions

	case transactionUpdatedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		return m, m.loadPlan(m.month)

	case errorMsg:
		m.lastError = msg.err
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keymap

	switch {
	case key.Matches(msg, keys.ForceQuit), key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, keys.ToggleView):
		m.view = (m.view + 1) % 3
		m.cursor = 0

	case key.Matches(msg, keys.PrevMonth):
		return m, m.loadPlan(m.month.AddDate(0, -1, 0))

	case key.Matches(msg, keys.NextMonth):
		return m, m.loadPlan(m.month.AddDate(0, 1, 0))

	case key.Matches(msg, keys.ThisMonth):
		now := time.Now()
		return m, m.loadPlan(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < m.listLength()-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.ToggleHide):
		if m.view == ViewTransactions && m.cursor < len(m.transactions) {
			txn := m.transactions[m.cursor]
			return m, m.setHidden(txn.ID, !txn.Hidden)
		}

	case key.Matches(msg, keys.Refresh):
		return m, tea.Batch(m.loadPlan(m.month), m.loadTargets())
	}

	return m, nil
}

func (m Model) listLength() int {
	switch m.view {
	case ViewTransactions:
		return len(m.transactions)
	case ViewTargets:
		return len(m.resolutions)
	default:
		return len(model.Buckets)
	}
}

// loadPlan fetches the month's transactions and budget plan and aggregates
// them off the Update loop.
func (m Model) loadPlan(month time.Time) tea.Cmd {
	storage := m.storage
	return func() tea.Msg {
		ctx := context.Background()

		plan, err := storage.GetBudgetPlan(ctx)
		if err != nil {
			return planLoadedMsg{err: err, month: month}
		}

		window := service.MonthRange(month.Year(), month.Month(), month.Location())
		txns, err := storage.GetTransactions(ctx, service.TransactionFilter{
			StartDate: &window.Start,
			EndDate:   &window.End,
		})
		if err != nil {
			return planLoadedMsg{err: err, month: month}
		}

		return planLoadedMsg{
			month:        window.Start,
			result:       budget.Aggregate(plan, txns, nil),
			transactions: txns,
		}
	}
}

func (m Model) loadTargets() tea.Cmd {
	storage := m.storage
	return func() tea.Msg {
		ctx := context.Background()

		targets, err := storage.GetSavingTargets(ctx)
		if err != nil {
			return targetsLoadedMsg{err: err}
		}

		institutions, err := storage.GetInstitutions(ctx)
		if err != nil {
			return targetsLoadedMsg{err: err}
		}

		return targetsLoadedMsg{resolutions: target.ResolveAll(targets, institutions)}
	}
}

func (m Model) setHidden(id string, hidden bool) tea.Cmd {
	storage := m.storage
	return func() tea.Msg {
		err := storage.SetTransactionHidden(context.Background(), id, hidden)
		return transactionUpdatedMsg{err: err, id: id}
	}
}

func clampCursor(cursor, length int) int {
	if length == 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}
