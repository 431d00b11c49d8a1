// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/easy-csp/csp/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  *model.Category
	AccountID string
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	SetTransactionHidden(ctx context.Context, id string, hidden bool) error
	SetTransactionCategory(ctx context.Context, id string, category model.Category) error
	DeleteTransactionsByAccount(ctx context.Context, accountID string) error
	DeleteTransactionsByID(ctx context.Context, ids []string) error

	// Budget plan operations
	GetBudgetPlan(ctx context.Context) (model.Plan, error)
	UpsertBudgetEntry(ctx context.Context, bucket model.Bucket, entry model.BudgetEntry) (*model.BudgetEntry, error)
	DeleteBudgetEntry(ctx context.Context, id string) error

	// Saving target operations
	CreateSavingTarget(ctx context.Context, target model.SavingTarget) (*model.SavingTarget, error)
	GetSavingTargets(ctx context.Context) ([]model.SavingTarget, error)
	GetSavingTargetByID(ctx context.Context, id string) (*model.SavingTarget, error)
	UpdateSavingTarget(ctx context.Context, target model.SavingTarget) (*model.SavingTarget, error)
	DeleteSavingTarget(ctx context.Context, id string) error

	// Institution operations
	SaveInstitution(ctx context.Context, institution model.FinancialInstitution) (*model.FinancialInstitution, error)
	GetInstitutions(ctx context.Context) ([]model.FinancialInstitution, error)
	GetInstitutionByID(ctx context.Context, id string) (*model.FinancialInstitution, error)
	UpdateInstitutionSync(ctx context.Context, id, cursor string, status model.InstitutionStatus, syncedAt time.Time) error
	UpdateInstitutionAccounts(ctx context.Context, id string, accounts []model.Account) error
	DeleteInstitution(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MonthRange returns the inclusive boundaries of a calendar month in the
// given location.
func MonthRange(year int, month time.Month, loc *time.Location) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return DateRange{Start: start, End: end}
}

// Contains reports whether t falls within the range, inclusive at both ends.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// SyncStats shows the results of a transactions sync run.
type SyncStats struct {
	Added    int
	Modified int
	Removed  int
	Accounts int
}
