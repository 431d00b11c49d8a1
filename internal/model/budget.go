package model

import "github.com/shopspring/decimal"

// BudgetEntry is a declared target for one category within a bucket.
type BudgetEntry struct {
	ID       string
	Category Category
	Target   decimal.Decimal
}

// Plan is the user's declared allocation: an ordered list of entries per
// bucket. Duplicate categories within a bucket are not rejected; their
// targets sum during aggregation.
type Plan map[Bucket][]BudgetEntry

// Entries returns the entries for a bucket, which may be nil.
func (p Plan) Entries(b Bucket) []BudgetEntry {
	return p[b]
}

// TotalTarget sums the targets of every entry in a bucket.
func (p Plan) TotalTarget(b Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, e := range p[b] {
		total = total.Add(e.Target)
	}
	return total
}
