package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// ToCents converts a price to the smallest currency unit, rounding half away from zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// PercentOf returns pct percent of amount rounded to cents.
func PercentOf(amount float64, pct int) float64 {
	return float64(ToCents(amount*float64(pct)/100)) / 100
}

func FormatMoney(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
}

// NewBookingCode returns an 8 character upper-case code for customers to quote.
func NewBookingCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
