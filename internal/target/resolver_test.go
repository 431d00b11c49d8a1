package target

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easy-csp/csp/internal/model"
)

func institutions() []model.FinancialInstitution {
	return []model.FinancialInstitution{
		{
			ID:              "row-1",
			InstitutionID:   "ins_chase",
			InstitutionName: "Chase",
			Status:          model.InstitutionActive,
			LastSyncAt:      time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
			Accounts: []model.Account{
				{AccountID: "acc_checking", AccountName: "Total Checking", AccountType: model.AccountChecking, Balance: decimal.NewFromInt(1200)},
				{AccountID: "acc_savings", AccountName: "Premier Savings", AccountType: model.AccountSavings, Balance: decimal.NewFromInt(4500)},
			},
		},
		{
			ID:              "row-2",
			InstitutionID:   "ins_ally",
			InstitutionName: "Ally",
			Status:          model.InstitutionActive,
			Accounts: []model.Account{
				{AccountID: "acc_ally", AccountName: "Online Savings", AccountType: model.AccountSavings, Balance: decimal.NewFromInt(800)},
			},
		},
	}
}

func TestResolve_LinkedAccount(t *testing.T) {
	target := model.SavingTarget{
		ID:            "st1",
		Name:          "Emergency Fund",
		InstitutionID: "ins_chase",
		AccountID:     "acc_savings",
		TargetAmount:  decimal.NewFromInt(10000),
	}

	res := Resolve(target, institutions())

	assert.True(t, res.CurrentAmount.Equal(decimal.NewFromInt(4500)))
	require.NotNil(t, res.AccountInfo)
	assert.Equal(t, "Chase", res.AccountInfo.InstitutionName)
	assert.Equal(t, "Premier Savings", res.AccountInfo.AccountName)
	assert.InDelta(t, 45.0, res.PercentComplete(), 0.001)
}

func TestResolve_MissingAccount(t *testing.T) {
	tests := []struct {
		name   string
		target model.SavingTarget
	}{
		{
			name: "institution gone",
			target: model.SavingTarget{
				InstitutionID: "ins_deleted",
				AccountID:     "acc_savings",
				TargetAmount:  decimal.NewFromInt(1000),
			},
		},
		{
			name: "account gone",
			target: model.SavingTarget{
				InstitutionID: "ins_chase",
				AccountID:     "acc_closed",
				TargetAmount:  decimal.NewFromInt(1000),
			},
		},
		{
			name: "account id belongs to a different institution",
			target: model.SavingTarget{
				InstitutionID: "ins_chase",
				AccountID:     "acc_ally",
				TargetAmount:  decimal.NewFromInt(1000),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.target, institutions())

			assert.True(t, res.CurrentAmount.IsZero())
			assert.Nil(t, res.AccountInfo, "unlinked targets must carry nil account info")
			assert.Zero(t, res.PercentComplete())
		})
	}
}

func TestResolve_NoInstitutions(t *testing.T) {
	target := model.SavingTarget{
		InstitutionID: "ins_chase",
		AccountID:     "acc_savings",
		TargetAmount:  decimal.NewFromInt(1000),
	}

	res := Resolve(target, nil)

	assert.True(t, res.CurrentAmount.IsZero())
	assert.Nil(t, res.AccountInfo)
}

func TestPercentComplete_ZeroTarget(t *testing.T) {
	res := Resolution{
		Target:        model.SavingTarget{TargetAmount: decimal.Zero},
		CurrentAmount: decimal.NewFromInt(500),
	}
	assert.Zero(t, res.PercentComplete())
}

func TestPercentComplete_Overfunded(t *testing.T) {
	res := Resolution{
		Target:        model.SavingTarget{TargetAmount: decimal.NewFromInt(1000)},
		CurrentAmount: decimal.NewFromInt(1500),
	}
	assert.InDelta(t, 150.0, res.PercentComplete(), 0.001)
}

func TestResolveAll_PreservesOrder(t *testing.T) {
	targets := []model.SavingTarget{
		{ID: "st1", InstitutionID: "ins_chase", AccountID: "acc_savings", TargetAmount: decimal.NewFromInt(100)},
		{ID: "st2", InstitutionID: "ins_ally", AccountID: "acc_ally", TargetAmount: decimal.NewFromInt(100)},
		{ID: "st3", InstitutionID: "ins_gone", AccountID: "acc_gone", TargetAmount: decimal.NewFromInt(100)},
	}

	resolutions := ResolveAll(targets, institutions())

	require.Len(t, resolutions, 3)
	assert.Equal(t, "st1", resolutions[0].Target.ID)
	assert.NotNil(t, resolutions[0].AccountInfo)
	assert.Equal(t, "st2", resolutions[1].Target.ID)
	assert.NotNil(t, resolutions[1].AccountInfo)
	assert.Equal(t, "st3", resolutions[2].Target.ID)
	assert.Nil(t, resolutions[2].AccountInfo)
}
