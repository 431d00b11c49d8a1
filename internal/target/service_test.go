package target

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/testutil"
)

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		target model.SavingTarget
	}{
		{
			name: "empty name",
			target: model.SavingTarget{
				Name:          "   ",
				InstitutionID: "ins_1",
				AccountID:     "acc_1",
				TargetAmount:  decimal.NewFromInt(100),
			},
		},
		{
			name: "zero amount",
			target: model.SavingTarget{
				Name:          "Vacation",
				InstitutionID: "ins_1",
				AccountID:     "acc_1",
				TargetAmount:  decimal.Zero,
			},
		},
		{
			name: "negative amount",
			target: model.SavingTarget{
				Name:          "Vacation",
				InstitutionID: "ins_1",
				AccountID:     "acc_1",
				TargetAmount:  decimal.NewFromInt(-50),
			},
		},
		{
			name: "no bound account",
			target: model.SavingTarget{
				Name:         "Vacation",
				TargetAmount: decimal.NewFromInt(100),
			},
		},
	}

	svc := NewService(testutil.SetupTestDB(t))
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.target)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestService_CreateAndList(t *testing.T) {
	store := testutil.SetupTestDB(t)
	svc := NewService(store)
	ctx := context.Background()

	_, err := store.SaveInstitution(ctx, model.FinancialInstitution{
		InstitutionID:   "ins_chase",
		InstitutionName: "Chase",
		AccessToken:     "access-token",
		Status:          model.InstitutionActive,
		Accounts: []model.Account{
			{AccountID: "acc_savings", AccountName: "Premier Savings", AccountType: model.AccountSavings, Balance: decimal.NewFromInt(4500)},
		},
	})
	require.NoError(t, err)

	created, err := svc.Create(ctx, model.SavingTarget{
		Name:          "Emergency Fund",
		InstitutionID: "ins_chase",
		AccountID:     "acc_savings",
		TargetAmount:  decimal.NewFromInt(10000),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	resolutions, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, resolutions, 1)

	res := resolutions[0]
	assert.Equal(t, "Emergency Fund", res.Target.Name)
	assert.True(t, res.CurrentAmount.Equal(decimal.NewFromInt(4500)))
	require.NotNil(t, res.AccountInfo)
	assert.Equal(t, "Chase", res.AccountInfo.InstitutionName)
}

func TestService_ListWithUnlinkedAccount(t *testing.T) {
	store := testutil.SetupTestDB(t)
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.SavingTarget{
		Name:          "House Fund",
		InstitutionID: "ins_never_linked",
		AccountID:     "acc_never_linked",
		TargetAmount:  decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	resolutions, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, resolutions, 1)

	assert.True(t, resolutions[0].CurrentAmount.IsZero())
	assert.Nil(t, resolutions[0].AccountInfo)
}

func TestService_UpdateRequiresID(t *testing.T) {
	svc := NewService(testutil.SetupTestDB(t))

	_, err := svc.Update(context.Background(), model.SavingTarget{
		Name:          "Vacation",
		InstitutionID: "ins_1",
		AccountID:     "acc_1",
		TargetAmount:  decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestService_Delete(t *testing.T) {
	store := testutil.SetupTestDB(t)
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.SavingTarget{
		Name:          "Vacation",
		InstitutionID: "ins_1",
		AccountID:     "acc_1",
		TargetAmount:  decimal.NewFromInt(3000),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = store.GetSavingTargetByID(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, ""), common.ErrValidation)
}
