package plaid

import (
	"context"
	"errors"
	"testing"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid sandbox config",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
			},
			wantErr: false,
		},
		{
			name: "valid production config",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "production",
			},
			wantErr: false,
		},
		{
			name: "missing client ID",
			config: Config{
				Secret:      "test-secret",
				Environment: "sandbox",
			},
			wantErr: true,
			errMsg:  "plaid client ID",
		},
		{
			name: "missing secret",
			config: Config{
				ClientID:    "test-client-id",
				Environment: "sandbox",
			},
			wantErr: true,
			errMsg:  "plaid secret",
		},
		{
			name: "missing environment",
			config: Config{
				ClientID: "test-client-id",
				Secret:   "test-secret",
			},
			wantErr: true,
			errMsg:  "plaid environment",
		},
		{
			name: "invalid environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "development",
			},
			wantErr: true,
			errMsg:  "sandbox or production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{
		ClientID:    "test-client-id",
		Secret:      "test-secret",
		Environment: "sandbox",
	})
	require.NoError(t, err)
	assert.NotNil(t, client.client)
	assert.NotNil(t, client.logger)
	assert.NotNil(t, client.retryOpts)

	_, err = NewClient(Config{ClientID: "test-client-id"})
	require.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestCategoryFromPlaid(t *testing.T) {
	tests := []struct {
		name     string
		primary  string
		detailed string
		expected model.Category
	}{
		{
			name:     "detailed match wins",
			primary:  "FOOD_AND_DRINK",
			detailed: "FOOD_AND_DRINK_GROCERIES",
			expected: model.CategoryGroceries,
		},
		{
			name:     "falls back to primary",
			primary:  "FOOD_AND_DRINK",
			detailed: "FOOD_AND_DRINK_RESTAURANT",
			expected: model.CategoryDining,
		},
		{
			name:     "income wages",
			primary:  "INCOME",
			detailed: "INCOME_WAGES",
			expected: model.CategorySalary,
		},
		{
			name:     "savings transfer",
			primary:  "TRANSFER_OUT",
			detailed: "TRANSFER_OUT_SAVINGS",
			expected: model.CategoryEmergencyFund,
		},
		{
			name:     "unmapped stays uncategorized",
			primary:  "MEDICAL",
			detailed: "MEDICAL_DENTAL_CARE",
			expected: "",
		},
		{
			name:     "no category at all",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tx plaid.Transaction
			if tt.primary != "" || tt.detailed != "" {
				tx.SetPersonalFinanceCategory(*plaid.NewPersonalFinanceCategory(tt.primary, tt.detailed))
			}
			assert.Equal(t, tt.expected, categoryFromPlaid(tx))
		})
	}
}

func TestMapAccountType(t *testing.T) {
	tests := []struct {
		input    plaid.AccountType
		expected model.AccountType
	}{
		{plaid.ACCOUNTTYPE_DEPOSITORY, model.AccountChecking},
		{plaid.ACCOUNTTYPE_CREDIT, model.AccountCredit},
		{plaid.ACCOUNTTYPE_INVESTMENT, model.AccountInvestment},
		{plaid.ACCOUNTTYPE_LOAN, model.AccountLoan},
		{plaid.ACCOUNTTYPE_OTHER, model.AccountOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, mapAccountType(tt.input))
		})
	}
}

func TestMockClient(t *testing.T) {
	ctx := context.Background()

	t.Run("default sync echoes cursor", func(t *testing.T) {
		mock := &MockClient{}
		result, err := mock.SyncTransactions(ctx, "token", "cursor-7")
		require.NoError(t, err)
		assert.Equal(t, "cursor-7", result.NextCursor)
		assert.Empty(t, result.Added)
		assert.Equal(t, 1, mock.SyncCalls)
		assert.Equal(t, "cursor-7", mock.LastCursor)
	})

	t.Run("configured errors propagate", func(t *testing.T) {
		mock := &MockClient{
			SyncErr:     errors.New("sync boom"),
			AccountsErr: errors.New("accounts boom"),
		}
		_, err := mock.SyncTransactions(ctx, "token", "")
		assert.EqualError(t, err, "sync boom")
		_, err = mock.GetAccounts(ctx, "token")
		assert.EqualError(t, err, "accounts boom")
	})

	t.Run("configured accounts returned", func(t *testing.T) {
		mock := &MockClient{
			Accounts: []model.Account{{AccountID: "acc1", AccountType: model.AccountSavings}},
		}
		accounts, err := mock.GetAccounts(ctx, "token")
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "acc1", accounts[0].AccountID)
		assert.Equal(t, 1, mock.AccountCalls)
	})
}
