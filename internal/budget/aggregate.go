// Package budget implements the conscious-spending-plan aggregation engine:
// reconciling declared targets against observed transactions per category
// and per bucket.
package budget

import (
	"log/slog"

	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/service"
	"github.com/shopspring/decimal"
)

// CategoryTotals holds budgeted-vs-spent figures for one category.
type CategoryTotals struct {
	Category model.Category
	Budgeted decimal.Decimal
	Spent    decimal.Decimal
}

// Remaining is the budgeted amount minus spending; negative means
// over budget.
func (c CategoryTotals) Remaining() decimal.Decimal {
	return c.Budgeted.Sub(c.Spent)
}

// BucketTotals holds the roll-up for one bucket.
type BucketTotals struct {
	Bucket     model.Bucket
	Budgeted   decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage float64 // Spent as a share of budgeted; 0 when nothing is budgeted
	Categories []CategoryTotals
}

// Result is the full aggregation output, one entry per bucket plus grand
// totals across the spending buckets (income and ignored excluded).
type Result struct {
	Buckets       map[model.Bucket]BucketTotals
	TotalBudgeted decimal.Decimal
	TotalSpent    decimal.Decimal
}

// Bucket returns the totals for a bucket. Buckets absent from the plan and
// transactions still yield a well-formed all-zero entry.
func (r Result) Bucket(b model.Bucket) BucketTotals {
	if t, ok := r.Buckets[b]; ok {
		return t
	}
	return BucketTotals{Bucket: b, Percentage: 0}
}

// Aggregate reconciles a budget plan against a transaction set. It is a
// pure function: no side effects, deterministic output, and no error
// conditions; empty inputs degrade to all-zero results.
//
// Hidden transactions are excluded. Spending uses transaction magnitudes,
// so refunds and credits count as spend in their category; callers needing
// net cash flow must reconcile sign themselves. When dateRange is nil the
// whole transaction set is aggregated (the caller is expected to have
// fetched the right window already).
func Aggregate(plan model.Plan, transactions []model.Transaction, dateRange *service.DateRange) Result {
	spentByCategory := make(map[model.Category]decimal.Decimal)

	for _, txn := range transactions {
		if txn.Hidden {
			continue
		}
		if dateRange != nil && !dateRange.Contains(txn.Date) {
			continue
		}
		if _, known := model.BucketFor(txn.Category); !known {
			slog.Debug("transaction category not in taxonomy, excluded from spend",
				"transaction_id", txn.ID,
				"category", txn.Category)
			continue
		}
		spentByCategory[txn.Category] = spentByCategory[txn.Category].Add(txn.Amount.Abs())
	}

	result := Result{Buckets: make(map[model.Bucket]BucketTotals, len(model.Buckets))}

	for _, bucket := range model.Buckets {
		totals := aggregateBucket(bucket, plan.Entries(bucket), spentByCategory)
		result.Buckets[bucket] = totals

		if bucket == model.BucketIncome || bucket == model.BucketIgnored {
			continue
		}
		result.TotalBudgeted = result.TotalBudgeted.Add(totals.Budgeted)
		result.TotalSpent = result.TotalSpent.Add(totals.Spent)
	}

	return result
}

func aggregateBucket(bucket model.Bucket, entries []model.BudgetEntry, spentByCategory map[model.Category]decimal.Decimal) BucketTotals {
	totals := BucketTotals{Bucket: bucket}

	// Plan entries first, in their declared order. Duplicate categories sum
	// into a single per-category line.
	index := make(map[model.Category]int)
	for _, entry := range entries {
		if i, ok := index[entry.Category]; ok {
			totals.Categories[i].Budgeted = totals.Categories[i].Budgeted.Add(entry.Target)
			continue
		}
		index[entry.Category] = len(totals.Categories)
		totals.Categories = append(totals.Categories, CategoryTotals{
			Category: entry.Category,
			Budgeted: entry.Target,
			Spent:    spentByCategory[entry.Category],
		})
	}

	// Categories with observed spending but no plan entry still belong to
	// the bucket's roll-up, shown with a zero budget.
	for _, category := range model.CategoriesIn(bucket) {
		if _, planned := index[category]; planned {
			continue
		}
		spent, ok := spentByCategory[category]
		if !ok || spent.IsZero() {
			continue
		}
		totals.Categories = append(totals.Categories, CategoryTotals{
			Category: category,
			Spent:    spent,
		})
	}

	for _, c := range totals.Categories {
		totals.Budgeted = totals.Budgeted.Add(c.Budgeted)
		totals.Spent = totals.Spent.Add(c.Spent)
	}
	totals.Remaining = totals.Budgeted.Sub(totals.Spent)
	if totals.Budgeted.IsPositive() {
		ratio, _ := totals.Spent.Div(totals.Budgeted).Float64()
		totals.Percentage = ratio * 100
	}

	return totals
}
