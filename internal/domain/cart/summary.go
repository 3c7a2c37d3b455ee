package cart

import (
	"github.com/example/ecolife-shop/internal/domain/carbon"
	"github.com/example/ecolife-shop/internal/domain/delivery"
	"github.com/example/ecolife-shop/internal/domain/pricing"
)

// Snapshot is an immutable copy of the cart state
type Snapshot struct {
	Items  []Item
	Promo  *pricing.Promo
	Method delivery.Method
}

func (s Snapshot) Empty() bool { return len(s.Items) == 0 }

func (s Snapshot) ItemCount() int {
	n := 0
	for _, i := range s.Items {
		n += i.Quantity
	}
	return n
}

// Summary is every derived figure of a cart, recomputed from a snapshot
type Summary struct {
	Items          []Item          `json:"items"`
	ItemCount      int             `json:"item_count"`
	Promo          *pricing.Promo  `json:"promo,omitempty"`
	DeliveryMethod delivery.Method `json:"delivery_method"`
	pricing.Summary
	Carbon         float64 `json:"carbon"`
	Baseline       float64 `json:"baseline"`
	CarbonSaved    float64 `json:"carbon_saved"`
	SavingsPercent int     `json:"savings_percent"`
}

func Summarize(s Snapshot) Summary {
	lines := CarbonLines(s.Items)
	actual := carbon.CartCarbon(lines, s.Method)
	baseline := carbon.Baseline(actual, s.Method)

	items := make([]Item, len(s.Items))
	copy(items, s.Items)

	return Summary{
		Items:          items,
		ItemCount:      s.ItemCount(),
		Promo:          s.Promo,
		DeliveryMethod: s.Method,
		Summary:        pricing.Summarize(PricingLines(s.Items), s.Promo, s.Method),
		Carbon:         actual,
		Baseline:       baseline,
		CarbonSaved:    baseline - actual,
		SavingsPercent: carbon.SavingsPercent(actual, baseline),
	}
}
