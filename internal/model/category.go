// Package model defines the core domain models used throughout the application.
package model

import "fmt"

// Bucket is a top-level grouping of the conscious spending plan.
type Bucket string

// Plan buckets. Ignored collects inter-account noise that must never count
// as spending.
const (
	BucketIncome     Bucket = "income"
	BucketFixedCost  Bucket = "fixedCost"
	BucketInvestment Bucket = "investment"
	BucketSavings    Bucket = "savings"
	BucketGuiltFree  Bucket = "guiltFreeSpending"
	BucketIgnored    Bucket = "ignored"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{
	BucketIncome,
	BucketFixedCost,
	BucketInvestment,
	BucketSavings,
	BucketGuiltFree,
	BucketIgnored,
}

// DisplayName returns a human-readable bucket label.
func (b Bucket) DisplayName() string {
	switch b {
	case BucketIncome:
		return "Income"
	case BucketFixedCost:
		return "Fixed Costs"
	case BucketInvestment:
		return "Investments"
	case BucketSavings:
		return "Savings"
	case BucketGuiltFree:
		return "Guilt-Free Spending"
	case BucketIgnored:
		return "Ignored"
	default:
		return string(b)
	}
}

// Category is a single budget/transaction line within a bucket.
type Category string

// The category set is closed: every constant belongs to exactly one bucket
// and the assignment is not user-editable.
const (
	CategorySalary   Category = "Salary"
	CategoryInterest Category = "Interest"

	CategoryRent           Category = "Rent/Mortgage"
	CategoryUtilities      Category = "Utilities"
	CategoryGroceries      Category = "Groceries"
	CategoryTransportation Category = "Transportation"
	CategoryInsurance      Category = "Insurance"

	CategoryRetirement Category = "Retirement Accounts"
	CategoryStocks     Category = "Stocks/ETFs"
	CategoryEducation  Category = "Education/Skills"

	CategoryEmergencyFund Category = "Emergency Fund"
	CategoryVacation      Category = "Vacation"
	CategoryDownPayment   Category = "House Down Payment"

	CategoryDining        Category = "Dining Out"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategorySubscriptions Category = "Subscriptions"

	CategoryTransfer          Category = "Transfer"
	CategoryCreditCardPayment Category = "Credit Card Payment"
)

var bucketByCategory = map[Category]Bucket{
	CategorySalary:   BucketIncome,
	CategoryInterest: BucketIncome,

	CategoryRent:           BucketFixedCost,
	CategoryUtilities:      BucketFixedCost,
	CategoryGroceries:      BucketFixedCost,
	CategoryTransportation: BucketFixedCost,
	CategoryInsurance:      BucketFixedCost,

	CategoryRetirement: BucketInvestment,
	CategoryStocks:     BucketInvestment,
	CategoryEducation:  BucketInvestment,

	CategoryEmergencyFund: BucketSavings,
	CategoryVacation:      BucketSavings,
	CategoryDownPayment:   BucketSavings,

	CategoryDining:        BucketGuiltFree,
	CategoryEntertainment: BucketGuiltFree,
	CategoryShopping:      BucketGuiltFree,
	CategorySubscriptions: BucketGuiltFree,

	CategoryTransfer:          BucketIgnored,
	CategoryCreditCardPayment: BucketIgnored,
}

// Categories lists every known category in a stable order.
var Categories = []Category{
	CategorySalary,
	CategoryInterest,
	CategoryRent,
	CategoryUtilities,
	CategoryGroceries,
	CategoryTransportation,
	CategoryInsurance,
	CategoryRetirement,
	CategoryStocks,
	CategoryEducation,
	CategoryEmergencyFund,
	CategoryVacation,
	CategoryDownPayment,
	CategoryDining,
	CategoryEntertainment,
	CategoryShopping,
	CategorySubscriptions,
	CategoryTransfer,
	CategoryCreditCardPayment,
}

func init() {
	// The taxonomy is static, so an unmapped category is a programming
	// error caught at startup rather than a silent fallback at lookup time.
	for _, c := range Categories {
		if _, ok := bucketByCategory[c]; !ok {
			panic(fmt.Sprintf("category %q has no bucket assignment", c))
		}
	}
	if len(bucketByCategory) != len(Categories) {
		panic("bucket assignments exist for categories missing from the category list")
	}
}

// BucketFor returns the bucket a category belongs to. Unknown categories
// (dirty strings from external data) resolve to BucketIgnored with ok=false
// so they never inflate spend totals.
func BucketFor(c Category) (Bucket, bool) {
	b, ok := bucketByCategory[c]
	if !ok {
		return BucketIgnored, false
	}
	return b, true
}

// KnownCategory reports whether c is part of the closed category set.
func KnownCategory(c Category) bool {
	_, ok := bucketByCategory[c]
	return ok
}

// CategoriesIn returns the categories statically assigned to a bucket, in
// taxonomy order.
func CategoriesIn(b Bucket) []Category {
	var out []Category
	for _, c := range Categories {
		if bucketByCategory[c] == b {
			out = append(out, c)
		}
	}
	return out
}
