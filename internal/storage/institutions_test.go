package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
)

func sampleInstitution() model.FinancialInstitution {
	return model.FinancialInstitution{
		InstitutionID:   "ins_chase",
		InstitutionName: "Chase",
		AccessToken:     "access-token-1",
		Status:          model.InstitutionAwaitSync,
		Accounts: []model.Account{
			{AccountID: "acc_checking", AccountName: "Total Checking", AccountType: model.AccountChecking, Balance: decimal.NewFromInt(1200)},
			{AccountID: "acc_savings", AccountName: "Premier Savings", AccountType: model.AccountSavings, Balance: decimal.NewFromFloat(4500.75)},
		},
	}
}

func TestSaveAndGetInstitutions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	saved, err := store.SaveInstitution(ctx, sampleInstitution())
	if err != nil {
		t.Fatalf("SaveInstitution() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("expected a generated ID")
	}

	got, err := store.GetInstitutions(ctx)
	if err != nil {
		t.Fatalf("GetInstitutions() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d institutions, want 1", len(got))
	}

	inst := got[0]
	if inst.InstitutionName != "Chase" {
		t.Errorf("name = %q", inst.InstitutionName)
	}
	if len(inst.Accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(inst.Accounts))
	}

	savings := inst.FindAccount("acc_savings")
	if savings == nil {
		t.Fatal("FindAccount(acc_savings) returned nil")
	}
	if !savings.Balance.Equal(decimal.NewFromFloat(4500.75)) {
		t.Errorf("balance round-trip = %s, want 4500.75", savings.Balance)
	}
}

func TestSaveInstitution_RelinkRefreshesToken(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first, err := store.SaveInstitution(ctx, sampleInstitution())
	if err != nil {
		t.Fatalf("SaveInstitution() error = %v", err)
	}

	relinked := sampleInstitution()
	relinked.AccessToken = "access-token-2"
	relinked.Accounts = relinked.Accounts[:1]

	second, err := store.SaveInstitution(ctx, relinked)
	if err != nil {
		t.Fatalf("SaveInstitution() relink error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("relink created new row %s, want %s", second.ID, first.ID)
	}

	got, err := store.GetInstitutionByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetInstitutionByID() error = %v", err)
	}
	if got.AccessToken != "access-token-2" {
		t.Errorf("access token = %q, want refreshed token", got.AccessToken)
	}
	if len(got.Accounts) != 1 {
		t.Errorf("got %d accounts after relink, want 1", len(got.Accounts))
	}
}

func TestUpdateInstitutionSync(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	saved, err := store.SaveInstitution(ctx, sampleInstitution())
	if err != nil {
		t.Fatalf("SaveInstitution() error = %v", err)
	}

	syncedAt := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)
	if err := store.UpdateInstitutionSync(ctx, saved.ID, "cursor-abc", model.InstitutionActive, syncedAt); err != nil {
		t.Fatalf("UpdateInstitutionSync() error = %v", err)
	}

	got, err := store.GetInstitutionByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetInstitutionByID() error = %v", err)
	}
	if got.Cursor != "cursor-abc" {
		t.Errorf("cursor = %q", got.Cursor)
	}
	if got.Status != model.InstitutionActive {
		t.Errorf("status = %q", got.Status)
	}
	if !got.LastSyncAt.Equal(syncedAt) {
		t.Errorf("last sync = %v, want %v", got.LastSyncAt, syncedAt)
	}
}

func TestUpdateInstitutionAccounts(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	saved, err := store.SaveInstitution(ctx, sampleInstitution())
	if err != nil {
		t.Fatalf("SaveInstitution() error = %v", err)
	}

	fresh := []model.Account{
		{AccountID: "acc_checking", AccountName: "Total Checking", AccountType: model.AccountChecking, Balance: decimal.NewFromInt(900)},
	}
	if err := store.UpdateInstitutionAccounts(ctx, saved.ID, fresh); err != nil {
		t.Fatalf("UpdateInstitutionAccounts() error = %v", err)
	}

	got, err := store.GetInstitutionByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetInstitutionByID() error = %v", err)
	}
	if len(got.Accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(got.Accounts))
	}
	if !got.Accounts[0].Balance.Equal(decimal.NewFromInt(900)) {
		t.Errorf("balance = %s, want 900", got.Accounts[0].Balance)
	}
}

func TestDeleteInstitution(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	saved, err := store.SaveInstitution(ctx, sampleInstitution())
	if err != nil {
		t.Fatalf("SaveInstitution() error = %v", err)
	}

	if err := store.DeleteInstitution(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteInstitution() error = %v", err)
	}

	if _, err := store.GetInstitutionByID(ctx, saved.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetInstitutionByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := store.DeleteInstitution(ctx, saved.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}
