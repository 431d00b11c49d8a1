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

// CreateSavingTarget stores a new saving target and returns it with its
// generated ID.
func (s *SQLiteStorage) CreateSavingTarget(ctx context.Context, target model.SavingTarget) (*model.SavingTarget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(target.Name, "name"); err != nil {
		return nil, err
	}

	target.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saving_targets (id, name, target_amount, institution_id, account_id)
		VALUES (?, ?, ?, ?, ?)`,
		target.ID, target.Name, target.TargetAmount.String(), target.InstitutionID, target.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert saving target: %w", err)
	}

	return &target, nil
}

// GetSavingTargets returns all saving targets ordered by creation time.
func (s *SQLiteStorage) GetSavingTargets(ctx context.Context) ([]model.SavingTarget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, target_amount, institution_id, account_id
		FROM saving_targets
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query saving targets: %w", err)
	}
	defer rows.Close()

	var targets []model.SavingTarget
	for rows.Next() {
		t, err := scanSavingTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saving targets: %w", err)
	}

	return targets, nil
}

// GetSavingTargetByID returns a single saving target.
func (s *SQLiteStorage) GetSavingTargetByID(ctx context.Context, id string) (*model.SavingTarget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, target_amount, institution_id, account_id
		FROM saving_targets WHERE id = ?`, id)

	t, err := scanSavingTarget(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("saving target %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateSavingTarget replaces the stored record with the given one.
func (s *SQLiteStorage) UpdateSavingTarget(ctx context.Context, target model.SavingTarget) (*model.SavingTarget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(target.ID, "id"); err != nil {
		return nil, err
	}
	if err := validateString(target.Name, "name"); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE saving_targets
		SET name = ?, target_amount = ?, institution_id = ?, account_id = ?, updated_at = ?
		WHERE id = ?`,
		target.Name, target.TargetAmount.String(), target.InstitutionID, target.AccountID,
		time.Now(), target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update saving target %s: %w", target.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("saving target %s: %w", target.ID, common.ErrNotFound)
	}

	return &target, nil
}

// DeleteSavingTarget removes a saving target.
func (s *SQLiteStorage) DeleteSavingTarget(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM saving_targets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saving target %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("saving target %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func scanSavingTarget(row rowScanner) (*model.SavingTarget, error) {
	var t model.SavingTarget
	var amount string
	if err := row.Scan(&t.ID, &t.Name, &amount, &t.InstitutionID, &t.AccountID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan saving target: %w", err)
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("saving target %s has invalid amount %q", t.ID, amount)
	}
	t.TargetAmount = amt

	return &t, nil
}
