// Package storage provides the data persistence layer for the csp application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/easy-csp/csp/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrUnknownCategory  = errors.New("category is not part of the taxonomy")
	ErrBucketMismatch   = errors.New("category does not belong to bucket")
	ErrInvalidBucket    = errors.New("invalid bucket")
	ErrNegativeTarget   = errors.New("budget target cannot be negative")
	ErrInvalidTxnAmount = errors.New("transaction amount is invalid")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateBucket ensures the bucket is one of the known constants.
func validateBucket(b model.Bucket) error {
	for _, known := range model.Buckets {
		if b == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidBucket, b)
}

// validateBudgetEntry ensures a budget entry is structurally valid and that
// its category statically belongs to the bucket it is being placed in, so
// aggregation never double-counts a category across buckets.
func validateBudgetEntry(bucket model.Bucket, entry model.BudgetEntry) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}
	if !model.KnownCategory(entry.Category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, entry.Category)
	}
	if b, _ := model.BucketFor(entry.Category); b != bucket {
		return fmt.Errorf("%w: %q belongs to %q, not %q", ErrBucketMismatch, entry.Category, b, bucket)
	}
	if entry.Target.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeTarget, entry.Target)
	}
	return nil
}

// validateTransaction validates a single transaction prior to persistence.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateString(txn.ID, "transaction ID"); err != nil {
		return err
	}
	if err := validateString(txn.Name, "transaction name"); err != nil {
		return err
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("transaction %s has no date", txn.ID)
	}
	return nil
}
