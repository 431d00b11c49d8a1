package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
)

func TestCreateAndGetSavingTargets(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.CreateSavingTarget(ctx, model.SavingTarget{
		Name:          "Emergency Fund",
		InstitutionID: "ins_chase",
		AccountID:     "acc_savings",
		TargetAmount:  decimal.NewFromFloat(10000.50),
	})
	if err != nil {
		t.Fatalf("CreateSavingTarget() error = %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated ID")
	}

	got, err := store.GetSavingTargetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSavingTargetByID() error = %v", err)
	}
	if got.Name != "Emergency Fund" {
		t.Errorf("name = %q", got.Name)
	}
	if !got.TargetAmount.Equal(decimal.NewFromFloat(10000.50)) {
		t.Errorf("amount round-trip = %s, want 10000.5", got.TargetAmount)
	}

	all, err := store.GetSavingTargets(ctx)
	if err != nil {
		t.Fatalf("GetSavingTargets() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d targets, want 1", len(all))
	}
}

func TestUpdateSavingTarget(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.CreateSavingTarget(ctx, model.SavingTarget{
		Name:          "Vacation",
		InstitutionID: "ins_1",
		AccountID:     "acc_1",
		TargetAmount:  decimal.NewFromInt(3000),
	})
	if err != nil {
		t.Fatalf("CreateSavingTarget() error = %v", err)
	}

	created.Name = "Japan Trip"
	created.TargetAmount = decimal.NewFromInt(5000)
	if _, err := store.UpdateSavingTarget(ctx, *created); err != nil {
		t.Fatalf("UpdateSavingTarget() error = %v", err)
	}

	got, err := store.GetSavingTargetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSavingTargetByID() error = %v", err)
	}
	if got.Name != "Japan Trip" || !got.TargetAmount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("update not persisted: %+v", got)
	}

	missing := *created
	missing.ID = "no-such-target"
	if _, err := store.UpdateSavingTarget(ctx, missing); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("UpdateSavingTarget(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSavingTarget(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.CreateSavingTarget(ctx, model.SavingTarget{
		Name:          "Vacation",
		InstitutionID: "ins_1",
		AccountID:     "acc_1",
		TargetAmount:  decimal.NewFromInt(3000),
	})
	if err != nil {
		t.Fatalf("CreateSavingTarget() error = %v", err)
	}

	if err := store.DeleteSavingTarget(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSavingTarget() error = %v", err)
	}
	if err := store.DeleteSavingTarget(ctx, created.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}
