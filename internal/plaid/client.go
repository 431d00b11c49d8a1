// Package plaid provides a client for the Plaid account-aggregation API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret", common.ErrMissingConfig)
	}
	if c.Environment == "" {
		return fmt.Errorf("%w: plaid environment", common.ErrMissingConfig)
	}

	validEnvs := map[string]bool{
		"sandbox":    true,
		"production": true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("%w: plaid environment must be sandbox or production", common.ErrInvalidConfig)
	}

	return nil
}

// SyncResult is the outcome of one cursor-based transactions sync.
type SyncResult struct {
	NextCursor string
	Added      []model.Transaction
	Modified   []model.Transaction
	RemovedIDs []string
}

// Client wraps the Plaid API for linking, syncing, and balance refresh.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   *service.RetryOptions
	environment string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		environment: cfg.Environment,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: &service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// CreateLinkToken creates a Link token for Plaid Link initialization.
func (c *Client) CreateLinkToken(ctx context.Context) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: "csp-user-" + time.Now().Format("20060102150405"),
	}

	request := plaid.NewLinkTokenCreateRequest(
		"Conscious Spending Plan",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	// OAuth banks require a registered redirect URI in production.
	if c.environment == "production" {
		request.SetRedirectUri("https://localhost:8080/")
	}

	resp, _, err := c.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", wrapPlaidError(err, "failed to create link token")
	}

	return resp.GetLinkToken(), nil
}

// ExchangePublicToken exchanges a public token from Link for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := c.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", wrapPlaidError(err, "failed to exchange public token")
	}

	return resp.GetAccessToken(), resp.GetItemId(), nil
}

// GetItemInstitution resolves the institution ID and display name behind an
// access token.
func (c *Client) GetItemInstitution(ctx context.Context, accessToken string) (string, string, error) {
	itemReq := plaid.NewItemGetRequest(accessToken)
	itemResp, _, err := c.client.PlaidApi.ItemGet(ctx).ItemGetRequest(*itemReq).Execute()
	if err != nil {
		return "", "", wrapPlaidError(err, "failed to get item")
	}

	item := itemResp.GetItem()
	institutionID := item.GetInstitutionId()
	if institutionID == "" {
		return "", "", nil
	}

	instReq := plaid.NewInstitutionsGetByIdRequest(institutionID, []plaid.CountryCode{plaid.COUNTRYCODE_US})
	instResp, _, err := c.client.PlaidApi.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*instReq).Execute()
	if err != nil {
		return institutionID, "", wrapPlaidError(err, "failed to get institution")
	}

	institution := instResp.GetInstitution()
	return institutionID, institution.GetName(), nil
}

// GetAccounts fetches the accounts and their authoritative balances for an
// access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]model.Account, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	var plaidAccounts []plaid.AccountBase
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return retryableOrWrapped(err, "failed to fetch accounts", c.logger)
		}
		plaidAccounts = resp.GetAccounts()
		return nil
	}, *c.retryOpts)
	if retryErr != nil {
		return nil, retryErr
	}

	accounts := make([]model.Account, 0, len(plaidAccounts))
	for _, pa := range plaidAccounts {
		accounts = append(accounts, mapPlaidAccount(pa))
	}

	c.logger.Info("Fetched accounts", "count", len(accounts))
	return accounts, nil
}

// SyncTransactions pulls added, modified, and removed transactions using
// the cursor API, paging until the provider reports no more data.
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	result := &SyncResult{NextCursor: cursor}

	for {
		var resp plaid.TransactionsSyncResponse
		retryErr := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsSyncRequest(accessToken)
			if result.NextCursor != "" {
				request.SetCursor(result.NextCursor)
			}

			r, _, err := c.client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
			if err != nil {
				return retryableOrWrapped(err, "failed to sync transactions", c.logger)
			}
			resp = r
			return nil
		}, *c.retryOpts)
		if retryErr != nil {
			return nil, retryErr
		}

		for _, pt := range resp.GetAdded() {
			result.Added = append(result.Added, c.mapPlaidTransaction(pt))
		}
		for _, pt := range resp.GetModified() {
			result.Modified = append(result.Modified, c.mapPlaidTransaction(pt))
		}
		for _, rt := range resp.GetRemoved() {
			if id := rt.GetTransactionId(); id != "" {
				result.RemovedIDs = append(result.RemovedIDs, id)
			}
		}

		result.NextCursor = resp.GetNextCursor()

		c.logger.Debug("Synced transaction batch",
			"added", len(resp.GetAdded()),
			"modified", len(resp.GetModified()),
			"removed", len(resp.GetRemoved()),
			"has_more", resp.GetHasMore())

		if !resp.GetHasMore() {
			break
		}
	}

	c.logger.Info("Transactions sync complete",
		"added", len(result.Added),
		"modified", len(result.Modified),
		"removed", len(result.RemovedIDs))

	return result, nil
}

// mapPlaidTransaction converts a Plaid transaction to our internal model.
// Plaid's sign convention (positive = outflow) matches ours.
func (c *Client) mapPlaidTransaction(pt plaid.Transaction) model.Transaction {
	date, err := time.Parse("2006-01-02", pt.GetDate())
	if err != nil {
		c.logger.Error("Failed to parse transaction date", "date", pt.GetDate(), "error", err)
		date = time.Now()
	}

	merchantName := pt.GetMerchantName()
	if merchantName == "" {
		merchantName = pt.GetName()
	}

	tx := model.Transaction{
		Date:         date,
		ID:           pt.GetTransactionId(),
		Name:         pt.GetName(),
		MerchantName: merchantName,
		AccountID:    pt.GetAccountId(),
		Amount:       decimal.NewFromFloat(pt.GetAmount()),
		Category:     categoryFromPlaid(pt),
	}
	tx.Hash = tx.GenerateHash()

	return tx
}

func mapPlaidAccount(pa plaid.AccountBase) model.Account {
	account := model.Account{
		AccountID:   pa.GetAccountId(),
		AccountName: pa.GetName(),
		AccountType: mapAccountType(pa.GetType()),
	}

	balances := pa.GetBalances()
	if current, ok := balances.GetCurrentOk(); ok && current != nil {
		account.Balance = decimal.NewFromFloat(*current)
	}

	return account
}

func mapAccountType(t plaid.AccountType) model.AccountType {
	switch t {
	case plaid.ACCOUNTTYPE_DEPOSITORY:
		return model.AccountChecking
	case plaid.ACCOUNTTYPE_CREDIT:
		return model.AccountCredit
	case plaid.ACCOUNTTYPE_INVESTMENT:
		return model.AccountInvestment
	case plaid.ACCOUNTTYPE_LOAN:
		return model.AccountLoan
	default:
		return model.AccountOther
	}
}

// retryableOrWrapped classifies a Plaid API failure for the retry loop.
func retryableOrWrapped(err error, msg string, logger *slog.Logger) error {
	if plaidError := extractPlaidError(err); plaidError != nil {
		if plaidError.ErrorCode == "RATE_LIMIT_EXCEEDED" {
			logger.Warn("Rate limit hit, will retry", "error", plaidError.ErrorMessage)
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func wrapPlaidError(err error, msg string) error {
	if plaidError := extractPlaidError(err); plaidError != nil {
		return fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// extractPlaidError attempts to extract a Plaid error from a generic error.
func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}

// Ensure Client implements AccountSource.
var _ AccountSource = (*Client)(nil)
