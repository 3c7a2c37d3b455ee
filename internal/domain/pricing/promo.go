package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPromo = errors.New("promo code not found")

// Promo is an active promo code and the fraction of the subtotal it takes off
type Promo struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// promoCodes is keyed by the upper-cased code
var promoCodes = map[string]decimal.Decimal{
	"ECO10":   decimal.RequireFromString("0.1"),
	"ЗЕЛЕНЫЙ": decimal.RequireFromString("0.1"),
}

// MaxDiscount is the largest fraction any recognized code grants
func MaxDiscount() decimal.Decimal {
	largest := decimal.Zero
	for _, d := range promoCodes {
		largest = decimal.Max(largest, d)
	}
	return largest
}

// NormalizeCode trims and upper-cases a code. Accents are kept, so "Ё" and
// "Е" stay different codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func LookupPromo(code string) (Promo, error) {
	normalized := NormalizeCode(code)
	discount, ok := promoCodes[normalized]
	if !ok {
		return Promo{}, ErrInvalidPromo
	}
	return Promo{Code: normalized, Discount: discount}, nil
}
