package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstitutionStatus indicates the health of a linked institution.
type InstitutionStatus string

// Institution status constants.
const (
	InstitutionActive     InstitutionStatus = "active"
	InstitutionInactive   InstitutionStatus = "inactive"
	InstitutionAwaitSync  InstitutionStatus = "awaitSync"
	InstitutionSyncFailed InstitutionStatus = "syncFailed"
)

// AccountType classifies an account at a financial institution.
type AccountType string

// Account type constants.
const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
	AccountOther      AccountType = "other"
)

// Account is a single account at a financial institution. Balance is
// authoritative and refreshed by sync; nothing in this application writes
// to it directly.
type Account struct {
	AccountID   string
	AccountName string
	AccountType AccountType
	Balance     decimal.Decimal
}

// FinancialInstitution is a linked aggregation-provider connection with
// its accounts and sync state.
type FinancialInstitution struct {
	LastSyncAt      time.Time
	ID              string
	InstitutionID   string
	InstitutionName string
	AccessToken     string
	Cursor          string // Transactions sync cursor
	Status          InstitutionStatus
	Accounts        []Account
}

// FindAccount returns the account with the given ID, or nil.
func (f *FinancialInstitution) FindAccount(accountID string) *Account {
	for i := range f.Accounts {
		if f.Accounts[i].AccountID == accountID {
			return &f.Accounts[i]
		}
	}
	return nil
}
