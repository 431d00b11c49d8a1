package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GetBudgetPlan loads the full declared allocation, entries ordered within
// each bucket by their stored position.
func (s *SQLiteStorage) GetBudgetPlan(ctx context.Context) (model.Plan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bucket, category, target
		FROM budget_entries
		ORDER BY bucket, position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget entries: %w", err)
	}
	defer rows.Close()

	plan := make(model.Plan)
	for rows.Next() {
		var entry model.BudgetEntry
		var bucket, category, target string
		if err := rows.Scan(&entry.ID, &bucket, &category, &target); err != nil {
			return nil, fmt.Errorf("failed to scan budget entry: %w", err)
		}
		entry.Category = model.Category(category)
		entry.Target, err = decimal.NewFromString(target)
		if err != nil {
			return nil, fmt.Errorf("budget entry %s has invalid target %q", entry.ID, target)
		}
		b := model.Bucket(bucket)
		plan[b] = append(plan[b], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget entries: %w", err)
	}

	return plan, nil
}

// UpsertBudgetEntry replaces the target for (bucket, category) or creates
// a new entry at the end of the bucket. Mutations are whole-entry
// replacements, never partial patches.
func (s *SQLiteStorage) UpsertBudgetEntry(ctx context.Context, bucket model.Bucket, entry model.BudgetEntry) (*model.BudgetEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateBudgetEntry(bucket, entry); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM budget_entries WHERE bucket = ? AND category = ?`,
		string(bucket), string(entry.Category)).Scan(&existingID)

	switch {
	case err == nil:
		entry.ID = existingID
		if _, err := tx.ExecContext(ctx,
			`UPDATE budget_entries SET target = ?, updated_at = ? WHERE id = ?`,
			entry.Target.String(), time.Now(), existingID); err != nil {
			return nil, fmt.Errorf("failed to update budget entry: %w", err)
		}
	case err == sql.ErrNoRows:
		entry.ID = uuid.NewString()
		var position int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM budget_entries WHERE bucket = ?`,
			string(bucket)).Scan(&position); err != nil {
			return nil, fmt.Errorf("failed to compute entry position: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budget_entries (id, bucket, category, target, position) VALUES (?, ?, ?, ?, ?)`,
			entry.ID, string(bucket), string(entry.Category), entry.Target.String(), position); err != nil {
			return nil, fmt.Errorf("failed to insert budget entry: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to check existing budget entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit budget entry: %w", err)
	}

	return &entry, nil
}

// DeleteBudgetEntry removes a single entry by ID.
func (s *SQLiteStorage) DeleteBudgetEntry(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM budget_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget entry %s: %w", id, common.ErrNotFound)
	}
	return nil
}
