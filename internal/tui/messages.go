package tui

import (
	"time"

	"github.com/easy-csp/csp/internal/budget"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/target"
)

// Data loading messages.
type planLoadedMsg struct {
	err          error
	month        time.Time
	result       budget.Result
	transactions []model.Transaction
}

type targetsLoadedMsg struct {
	err         error
	resolutions []target.Resolution
}

type transactionUpdatedMsg struct {
	err error
	id  string
}

// Error handling.
type errorMsg struct {
	err error
}
