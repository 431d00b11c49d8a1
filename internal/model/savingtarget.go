package model

import "github.com/shopspring/decimal"

// SavingTarget is a named goal bound to a specific account at a linked
// institution. Its current amount is never stored; it is derived from the
// bound account's live balance at read time.
type SavingTarget struct {
	ID            string
	Name          string
	InstitutionID string
	AccountID     string
	TargetAmount  decimal.Decimal
}

// AccountInfo carries the display names for a saving target's bound
// account. A nil AccountInfo means the account is unlinked or gone, which
// the caller must surface distinctly from genuine zero progress.
type AccountInfo struct {
	InstitutionName string
	AccountName     string
}
