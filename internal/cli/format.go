package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount as "$1,234.56", with a leading minus
// for negative values.
func FormatCurrency(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	whole := groupThousands(parts[0])

	out := "$" + whole + "." + parts[1]
	if negative {
		out = "-" + out
	}
	return out
}

// FormatCurrencyCompact drops the cents when the amount is whole.
func FormatCurrencyCompact(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		out := FormatCurrency(amount)
		return strings.TrimSuffix(out, ".00")
	}
	return FormatCurrency(amount)
}

// FormatPercentage renders a percentage with one decimal place.
func FormatPercentage(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
