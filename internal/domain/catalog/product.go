package catalog

import (
	"strings"

	"github.com/example/ecolife-shop/internal/domain/carbon"
)

// Product is a catalog entry. Weight and ProductionCoef are optional in
// catalog files; nil means the carbon default applies.
type Product struct {
	ID               int      `json:"id" validate:"required,gt=0"`
	Name             string   `json:"name" validate:"required"`
	Price            int      `json:"price" validate:"gte=0"`
	Category         string   `json:"category" validate:"required"`
	Weight           *float64 `json:"weight,omitempty" validate:"omitempty,gte=0"`
	ProductionCoef   *float64 `json:"productionCoef,omitempty" validate:"omitempty,gte=0"`
	DeliveryDistance string   `json:"deliveryDistance"`
	Packaging        string   `json:"packaging"`
	Description      string   `json:"description,omitempty"`
	Image            string   `json:"image,omitempty"`
	EcoMarkers       []string `json:"ecoMarkers,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	Reviews          int      `json:"reviews,omitempty"`
}

// CarbonAttributes resolves the product's carbon inputs, substituting
// defaults for missing weight and production coefficient.
func (p Product) CarbonAttributes() carbon.Attributes {
	a := carbon.Attributes{
		Weight:           carbon.DefaultWeight,
		ProductionCoef:   carbon.DefaultProductionCoef,
		DeliveryDistance: p.DeliveryDistance,
		Packaging:        p.Packaging,
	}
	if p.Weight != nil {
		a.Weight = *p.Weight
	}
	if p.ProductionCoef != nil {
		a.ProductionCoef = *p.ProductionCoef
	}
	return a
}

// Carbon is the per-unit footprint shown on the product card.
func (p Product) Carbon() float64 {
	return carbon.ProductCarbon(p.CarbonAttributes())
}

// Matches reports whether the product name contains the query, case-insensitively.
func (p Product) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q)
}
