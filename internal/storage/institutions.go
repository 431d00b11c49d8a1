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

// SaveInstitution stores a newly linked institution with its accounts. If
// the provider institution is already linked, the existing record is
// replaced (re-linking refreshes the access token).
func (s *SQLiteStorage) SaveInstitution(ctx context.Context, institution model.FinancialInstitution) (*model.FinancialInstitution, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(institution.InstitutionID, "institutionID"); err != nil {
		return nil, err
	}
	if err := validateString(institution.AccessToken, "accessToken"); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM institutions WHERE institution_id = ?`,
		institution.InstitutionID).Scan(&existingID)
	switch {
	case err == nil:
		institution.ID = existingID
	case err == sql.ErrNoRows:
		institution.ID = uuid.NewString()
	default:
		return nil, fmt.Errorf("failed to check existing institution: %w", err)
	}

	if institution.Status == "" {
		institution.Status = model.InstitutionAwaitSync
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO institutions (id, institution_id, institution_name, access_token, cursor, status, last_sync_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(institution_id) DO UPDATE SET
			institution_name = excluded.institution_name,
			access_token = excluded.access_token,
			status = excluded.status`,
		institution.ID, institution.InstitutionID, institution.InstitutionName,
		institution.AccessToken, institution.Cursor, string(institution.Status),
		nullableTime(institution.LastSyncAt)); err != nil {
		return nil, fmt.Errorf("failed to save institution: %w", err)
	}

	if err := replaceAccounts(ctx, tx, institution.ID, institution.Accounts); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit institution: %w", err)
	}

	return &institution, nil
}

// GetInstitutions returns every linked institution with its accounts.
func (s *SQLiteStorage) GetInstitutions(ctx context.Context) ([]model.FinancialInstitution, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, institution_id, institution_name, access_token, cursor, status, last_sync_at
		FROM institutions
		ORDER BY institution_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query institutions: %w", err)
	}
	defer rows.Close()

	var institutions []model.FinancialInstitution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, err
		}
		institutions = append(institutions, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating institutions: %w", err)
	}

	for i := range institutions {
		accounts, err := s.loadAccounts(ctx, institutions[i].ID)
		if err != nil {
			return nil, err
		}
		institutions[i].Accounts = accounts
	}

	return institutions, nil
}

// GetInstitutionByID returns a single institution with its accounts.
func (s *SQLiteStorage) GetInstitutionByID(ctx context.Context, id string) (*model.FinancialInstitution, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, institution_id, institution_name, access_token, cursor, status, last_sync_at
		FROM institutions WHERE id = ?`, id)

	inst, err := scanInstitution(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("institution %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	accounts, err := s.loadAccounts(ctx, inst.ID)
	if err != nil {
		return nil, err
	}
	inst.Accounts = accounts

	return inst, nil
}

// UpdateInstitutionSync records the outcome of a sync run: new cursor,
// status, and timestamp.
func (s *SQLiteStorage) UpdateInstitutionSync(ctx context.Context, id, cursor string, status model.InstitutionStatus, syncedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE institutions SET cursor = ?, status = ?, last_sync_at = ? WHERE id = ?`,
		cursor, string(status), syncedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update institution sync state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("institution %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// UpdateInstitutionAccounts replaces the stored accounts (and their
// authoritative balances) for an institution.
func (s *SQLiteStorage) UpdateInstitutionAccounts(ctx context.Context, id string, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceAccounts(ctx, tx, id, accounts); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteInstitution unlinks an institution. Its accounts cascade; stored
// transactions are kept so history survives unlinking.
func (s *SQLiteStorage) DeleteInstitution(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM institutions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete institution %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("institution %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) loadAccounts(ctx context.Context, institutionRowID string) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, account_name, account_type, balance
		FROM accounts WHERE institution_row_id = ?
		ORDER BY account_name`, institutionRowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var accountType, balance string
		if err := rows.Scan(&a.AccountID, &a.AccountName, &accountType, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.AccountType = model.AccountType(accountType)
		a.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("account %s has invalid balance %q", a.AccountID, balance)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

func replaceAccounts(ctx context.Context, tx *sql.Tx, institutionRowID string, accounts []model.Account) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE institution_row_id = ?`, institutionRowID); err != nil {
		return fmt.Errorf("failed to clear accounts: %w", err)
	}
	for _, a := range accounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (institution_row_id, account_id, account_name, account_type, balance)
			VALUES (?, ?, ?, ?, ?)`,
			institutionRowID, a.AccountID, a.AccountName, string(a.AccountType), a.Balance.String()); err != nil {
			return fmt.Errorf("failed to insert account %s: %w", a.AccountID, err)
		}
	}
	return nil
}

func scanInstitution(row rowScanner) (*model.FinancialInstitution, error) {
	var inst model.FinancialInstitution
	var status string
	var lastSync sql.NullTime
	if err := row.Scan(&inst.ID, &inst.InstitutionID, &inst.InstitutionName,
		&inst.AccessToken, &inst.Cursor, &status, &lastSync); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan institution: %w", err)
	}
	inst.Status = model.InstitutionStatus(status)
	if lastSync.Valid {
		inst.LastSyncAt = lastSync.Time
	}
	return &inst, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
