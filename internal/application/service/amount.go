package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-supplied amount. A comma is accepted as the decimal separator.
func ParseAmount(input string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	if normalized == "" {
		return 0, fmt.Errorf("%w: empty", entity.ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", entity.ErrInvalidAmount, input)
	}

	amount := d.InexactFloat64()
	if math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %q is out of range", entity.ErrInvalidAmount, input)
	}

	return amount, nil
}

// FormatAmount renders a value with two decimal places for display.
// Non-finite values are rendered as-is.
func FormatAmount(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return fmt.Sprint(value)
	}
	return decimal.NewFromFloat(value).StringFixed(2)
}
