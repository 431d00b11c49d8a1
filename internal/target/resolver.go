// Package target implements saving targets: named goals whose progress is
// derived from a linked account's live balance rather than manual entry.
package target

import (
	"github.com/easy-csp/csp/internal/model"
	"github.com/shopspring/decimal"
)

// Resolution is the read-time state of a saving target. A nil AccountInfo
// means the bound account is unlinked, deleted, or not yet synced; the
// caller must present that as "unlinked" rather than zero progress.
type Resolution struct {
	Target        model.SavingTarget
	CurrentAmount decimal.Decimal
	AccountInfo   *model.AccountInfo
}

// PercentComplete returns progress toward the target, or 0 when the target
// amount is not positive.
func (r Resolution) PercentComplete() float64 {
	if !r.Target.TargetAmount.IsPositive() {
		return 0
	}
	ratio, _ := r.CurrentAmount.Div(r.Target.TargetAmount).Float64()
	return ratio * 100
}

// Resolve looks up a target's bound account in the supplied institutions
// and derives its current amount from the account balance. A missing
// institution or account degrades to a zero amount with nil AccountInfo;
// it never fails.
func Resolve(t model.SavingTarget, institutions []model.FinancialInstitution) Resolution {
	res := Resolution{Target: t, CurrentAmount: decimal.Zero}

	for i := range institutions {
		inst := &institutions[i]
		if inst.InstitutionID != t.InstitutionID {
			continue
		}
		account := inst.FindAccount(t.AccountID)
		if account == nil {
			continue
		}
		res.CurrentAmount = account.Balance
		res.AccountInfo = &model.AccountInfo{
			InstitutionName: inst.InstitutionName,
			AccountName:     account.AccountName,
		}
		return res
	}

	return res
}

// ResolveAll resolves every target against the same institution snapshot.
func ResolveAll(targets []model.SavingTarget, institutions []model.FinancialInstitution) []Resolution {
	out := make([]Resolution, 0, len(targets))
	for _, t := range targets {
		out = append(out, Resolve(t, institutions))
	}
	return out
}
