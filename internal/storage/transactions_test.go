package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/service"
)

func setupStore(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func sampleTransaction(id string, day int, amount float64) model.Transaction {
	return model.Transaction{
		ID:           id,
		Date:         time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Name:         "COFFEE SHOP " + id,
		MerchantName: "Coffee Shop",
		Category:     model.CategoryDining,
		Amount:       decimal.NewFromFloat(amount),
		AccountID:    "acc1",
	}
}

func TestSaveAndGetTransactions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	txns := []model.Transaction{
		sampleTransaction("t1", 5, 4.50),
		sampleTransaction("t2", 10, 12.00),
	}

	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}

	got, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("GetTransactions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}

	// Newest first
	if got[0].ID != "t2" || got[1].ID != "t1" {
		t.Errorf("order = [%s, %s], want [t2, t1]", got[0].ID, got[1].ID)
	}
	if !got[1].Amount.Equal(decimal.NewFromFloat(4.50)) {
		t.Errorf("amount round-trip = %s, want 4.5", got[1].Amount)
	}
	if got[1].Category != model.CategoryDining {
		t.Errorf("category = %q", got[1].Category)
	}
}

func TestSaveTransactions_DuplicateHashSkipped(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := sampleTransaction("t1", 5, 4.50)
	duplicate := sampleTransaction("t2", 5, 4.50) // same date, amount, merchant, account

	if err := store.SaveTransactions(ctx, []model.Transaction{first}); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}
	if err := store.SaveTransactions(ctx, []model.Transaction{duplicate}); err != nil {
		t.Fatalf("SaveTransactions() duplicate error = %v", err)
	}

	got, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("GetTransactions() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d transactions after duplicate save, want 1", len(got))
	}
}

func TestGetTransactions_Filters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	other := sampleTransaction("t3", 20, 80)
	other.Category = model.CategoryGroceries
	other.AccountID = "acc2"
	other.MerchantName = "Grocer"

	txns := []model.Transaction{
		sampleTransaction("t1", 5, 4.50),
		sampleTransaction("t2", 10, 12.00),
		other,
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}

	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	got, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start})
	if err != nil {
		t.Fatalf("GetTransactions(start) error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("date filter returned %d, want 2", len(got))
	}

	groceries := model.CategoryGroceries
	got, err = store.GetTransactions(ctx, service.TransactionFilter{Category: &groceries})
	if err != nil {
		t.Fatalf("GetTransactions(category) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "t3" {
		t.Errorf("category filter = %v, want just t3", got)
	}

	got, err = store.GetTransactions(ctx, service.TransactionFilter{AccountID: "acc1"})
	if err != nil {
		t.Fatalf("GetTransactions(account) error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("account filter returned %d, want 2", len(got))
	}

	got, err = store.GetTransactions(ctx, service.TransactionFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("GetTransactions(limit) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "t2" {
		t.Errorf("limit/offset = %v, want just t2", got)
	}
}

func TestSetTransactionHidden(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.SaveTransactions(ctx, []model.Transaction{sampleTransaction("t1", 5, 4.50)}); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}

	if err := store.SetTransactionHidden(ctx, "t1", true); err != nil {
		t.Fatalf("SetTransactionHidden() error = %v", err)
	}

	got, err := store.GetTransactionByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTransactionByID() error = %v", err)
	}
	if !got.Hidden {
		t.Error("transaction should be hidden")
	}

	if err := store.SetTransactionHidden(ctx, "t1", false); err != nil {
		t.Fatalf("SetTransactionHidden(false) error = %v", err)
	}
	got, _ = store.GetTransactionByID(ctx, "t1")
	if got.Hidden {
		t.Error("transaction should be visible again")
	}

	err = store.SetTransactionHidden(ctx, "missing", true)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("SetTransactionHidden(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSetTransactionCategory(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.SaveTransactions(ctx, []model.Transaction{sampleTransaction("t1", 5, 4.50)}); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}

	if err := store.SetTransactionCategory(ctx, "t1", model.CategoryGroceries); err != nil {
		t.Fatalf("SetTransactionCategory() error = %v", err)
	}

	got, err := store.GetTransactionByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTransactionByID() error = %v", err)
	}
	if got.Category != model.CategoryGroceries {
		t.Errorf("category = %q, want Groceries", got.Category)
	}

	err = store.SetTransactionCategory(ctx, "t1", model.Category("Made Up"))
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("SetTransactionCategory(unknown) error = %v, want ErrUnknownCategory", err)
	}
}

func TestDeleteTransactions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	other := sampleTransaction("t3", 12, 30)
	other.AccountID = "acc2"
	other.MerchantName = "Other"

	txns := []model.Transaction{
		sampleTransaction("t1", 5, 4.50),
		sampleTransaction("t2", 10, 12.00),
		other,
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}

	if err := store.DeleteTransactionsByID(ctx, []string{"t1"}); err != nil {
		t.Fatalf("DeleteTransactionsByID() error = %v", err)
	}
	if err := store.DeleteTransactionsByAccount(ctx, "acc2"); err != nil {
		t.Fatalf("DeleteTransactionsByAccount() error = %v", err)
	}

	got, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("GetTransactions() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "t2" {
		t.Errorf("remaining = %v, want just t2", got)
	}
}

func TestSaveTransactions_Validation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	missingID := sampleTransaction("", 5, 4.50)
	if err := store.SaveTransactions(ctx, []model.Transaction{missingID}); err == nil {
		t.Error("expected error for transaction without ID")
	}

	noDate := sampleTransaction("t1", 5, 4.50)
	noDate.Date = time.Time{}
	if err := store.SaveTransactions(ctx, []model.Transaction{noDate}); err == nil {
		t.Error("expected error for transaction without date")
	}

	if err := store.SaveTransactions(ctx, nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("SaveTransactions(nil) error = %v, want ErrNilParameter", err)
	}
}
