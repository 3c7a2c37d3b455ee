package pricing

import (
	"github.com/example/ecolife-shop/internal/domain/delivery"
	"github.com/shopspring/decimal"
)

// FreeDeliveryThreshold is the subtotal from which the storefront advertises
// free bike delivery. It does not change any price.
var FreeDeliveryThreshold = decimal.NewFromInt(200)

// Line is a priced quantity of one product
type Line struct {
	Price    int
	Quantity int
}

// Summary holds every money figure of a cart
type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	// FreeDeliveryRemaining is set only while Subtotal is below the threshold
	FreeDeliveryRemaining *decimal.Decimal `json:"free_delivery_remaining,omitempty"`
}

// Subtotal is summed in decimal so large quantities cannot wrap around.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromInt(int64(l.Price)).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Discount returns zero when no promo is active.
func Discount(subtotal decimal.Decimal, promo *Promo) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}
	return subtotal.Mul(promo.Discount)
}

func DeliveryFee(m delivery.Method) decimal.Decimal {
	return decimal.NewFromInt(int64(m.Price()))
}

// Total is subtotal − discount + delivery fee.
func Total(lines []Line, promo *Promo, m delivery.Method) decimal.Decimal {
	return Summarize(lines, promo, m).Total
}

// FreeDeliveryRemaining reports how much more the customer has to order to
// reach the free delivery threshold.
func FreeDeliveryRemaining(subtotal decimal.Decimal) (decimal.Decimal, bool) {
	if subtotal.LessThan(FreeDeliveryThreshold) {
		return FreeDeliveryThreshold.Sub(subtotal), true
	}
	return decimal.Zero, false
}

func Summarize(lines []Line, promo *Promo, m delivery.Method) Summary {
	subtotal := Subtotal(lines)
	discount := Discount(subtotal, promo)
	fee := DeliveryFee(m)

	s := Summary{
		Subtotal:    subtotal,
		Discount:    discount,
		DeliveryFee: fee,
		Total:       subtotal.Sub(discount).Add(fee),
	}
	if remaining, ok := FreeDeliveryRemaining(subtotal); ok {
		s.FreeDeliveryRemaining = &remaining
	}
	return s
}
