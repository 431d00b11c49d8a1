package plaid

import (
	"context"

	"github.com/easy-csp/csp/internal/model"
)

// AccountSource defines the contract for pulling account and transaction
// data from an aggregation provider. It allows for easy mocking in tests
// and swapping data sources.
type AccountSource interface {
	GetAccounts(ctx context.Context, accessToken string) ([]model.Account, error)
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncResult, error)
}
