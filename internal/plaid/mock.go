package plaid

import (
	"context"

	"github.com/easy-csp/csp/internal/model"
)

// MockClient is a test double for the AccountSource interface.
type MockClient struct {
	Accounts     []model.Account
	AccountsErr  error
	Sync         *SyncResult
	SyncErr      error
	SyncCalls    int
	LastCursor   string
	AccountCalls int
}

// GetAccounts returns the configured accounts or error.
func (m *MockClient) GetAccounts(_ context.Context, _ string) ([]model.Account, error) {
	m.AccountCalls++
	if m.AccountsErr != nil {
		return nil, m.AccountsErr
	}
	return m.Accounts, nil
}

// SyncTransactions returns the configured sync result or error.
func (m *MockClient) SyncTransactions(_ context.Context, _ string, cursor string) (*SyncResult, error) {
	m.SyncCalls++
	m.LastCursor = cursor
	if m.SyncErr != nil {
		return nil, m.SyncErr
	}
	if m.Sync == nil {
		return &SyncResult{NextCursor: cursor}, nil
	}
	return m.Sync, nil
}

// Ensure MockClient implements AccountSource.
var _ AccountSource = (*MockClient)(nil)
