package carbon

import (
	"math"

	"github.com/example/ecolife-shop/internal/domain/delivery"
)

// Breakdown splits a cart footprint into production, transport and packaging
type Breakdown struct {
	Production float64 `json:"production"`
	Transport  float64 `json:"transport"`
	Packaging  float64 `json:"packaging"`
	Total      float64 `json:"total"`
}

// Shares holds the rounded percentage of each bucket in the total
type Shares struct {
	Production int `json:"production"`
	Transport  int `json:"transport"`
	Packaging  int `json:"packaging"`
}

// NewBreakdown scales every bucket by the delivery coefficient, so the buckets
// add up to CartCarbon for the same lines and method.
func NewBreakdown(lines []Line, m delivery.Method) Breakdown {
	var b Breakdown
	for _, l := range lines {
		qty := float64(l.Quantity)
		b.Production += l.UnitProduction() * qty
		b.Transport += l.UnitTransport() * qty
		b.Packaging += l.UnitPackaging() * qty
	}

	coef := m.CarbonCoef()
	b.Production *= coef
	b.Transport *= coef
	b.Packaging *= coef
	b.Total = b.Production + b.Transport + b.Packaging
	return b
}

func (b Breakdown) Shares() Shares {
	if b.Total <= 0 {
		return Shares{}
	}
	pct := func(v float64) int { return int(math.Round(v / b.Total * 100)) }
	return Shares{
		Production: pct(b.Production),
		Transport:  pct(b.Transport),
		Packaging:  pct(b.Packaging),
	}
}

// ByCategory sums unit footprint × quantity per product category, before
// the delivery coefficient is applied.
func ByCategory(lines []Line) map[string]float64 {
	out := make(map[string]float64)
	for _, l := range lines {
		out[l.Category] += ProductCarbon(l.Attributes) * float64(l.Quantity)
	}
	return out
}
