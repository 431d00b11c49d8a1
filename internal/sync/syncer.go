// Package sync orchestrates pulling transactions and balances from the
// aggregation provider into local storage.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/plaid"
	"github.com/easy-csp/csp/internal/service"
)

// Syncer refreshes one or more linked institutions.
type Syncer struct {
	store  service.Storage
	source plaid.AccountSource
	logger *slog.Logger
}

// NewSyncer creates a syncer over the given storage and provider client.
func NewSyncer(store service.Storage, source plaid.AccountSource) *Syncer {
	return &Syncer{
		store:  store,
		source: source,
		logger: slog.Default().With("component", "sync"),
	}
}

// SyncInstitution pulls transaction deltas and account balances for one
// institution. On failure the institution is marked syncFailed and the
// cursor is left untouched so the next run resumes from the same point.
func (s *Syncer) SyncInstitution(ctx context.Context, inst model.FinancialInstitution) (service.SyncStats, error) {
	var stats service.SyncStats

	result, err := s.source.SyncTransactions(ctx, inst.AccessToken, inst.Cursor)
	if err != nil {
		s.markFailed(ctx, inst.ID, inst.Cursor)
		return stats, fmt.Errorf("failed to sync transactions for %s: %w", inst.InstitutionName, err)
	}

	if len(result.Added) > 0 {
		if err := s.store.SaveTransactions(ctx, result.Added); err != nil {
			s.markFailed(ctx, inst.ID, inst.Cursor)
			return stats, fmt.Errorf("failed to store synced transactions: %w", err)
		}
	}
	// Modified transactions re-save under the same provider ID; the hash
	// conflict path keeps already-seen rows stable.
	if len(result.Modified) > 0 {
		if err := s.store.SaveTransactions(ctx, result.Modified); err != nil {
			s.markFailed(ctx, inst.ID, inst.Cursor)
			return stats, fmt.Errorf("failed to store modified transactions: %w", err)
		}
	}
	if len(result.RemovedIDs) > 0 {
		if err := s.store.DeleteTransactionsByID(ctx, result.RemovedIDs); err != nil {
			s.markFailed(ctx, inst.ID, inst.Cursor)
			return stats, fmt.Errorf("failed to delete removed transactions: %w", err)
		}
	}

	accounts, err := s.source.GetAccounts(ctx, inst.AccessToken)
	if err != nil {
		s.markFailed(ctx, inst.ID, inst.Cursor)
		return stats, fmt.Errorf("failed to refresh balances for %s: %w", inst.InstitutionName, err)
	}
	if err := s.store.UpdateInstitutionAccounts(ctx, inst.ID, accounts); err != nil {
		s.markFailed(ctx, inst.ID, inst.Cursor)
		return stats, fmt.Errorf("failed to store account balances: %w", err)
	}

	if err := s.store.UpdateInstitutionSync(ctx, inst.ID, result.NextCursor, model.InstitutionActive, time.Now()); err != nil {
		return stats, fmt.Errorf("failed to record sync state: %w", err)
	}

	stats = service.SyncStats{
		Added:    len(result.Added),
		Modified: len(result.Modified),
		Removed:  len(result.RemovedIDs),
		Accounts: len(accounts),
	}

	s.logger.Info("institution synced",
		"institution", inst.InstitutionName,
		"added", stats.Added,
		"modified", stats.Modified,
		"removed", stats.Removed,
		"accounts", stats.Accounts)

	return stats, nil
}

func (s *Syncer) markFailed(ctx context.Context, id, cursor string) {
	if err := s.store.UpdateInstitutionSync(ctx, id, cursor, model.InstitutionSyncFailed, time.Now()); err != nil {
		s.logger.Error("failed to mark institution as failed", "institution_id", id, "error", err)
	}
}
