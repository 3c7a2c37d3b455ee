package cart

import (
	"encoding/json"

	"github.com/example/ecolife-shop/internal/domain/carbon"
	"github.com/example/ecolife-shop/internal/domain/catalog"
	"github.com/example/ecolife-shop/internal/domain/pricing"
)

// Item is a cart line. Carbon attributes are copied from the catalog at
// add time, already resolved to their defaults.
type Item struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Price            int     `json:"price"`
	Quantity         int     `json:"quantity"`
	Weight           float64 `json:"weight"`
	ProductionCoef   float64 `json:"productionCoef"`
	DeliveryDistance string  `json:"deliveryDistance"`
	Packaging        string  `json:"packaging"`
	Category         string  `json:"category,omitempty"`
}

func newItem(p catalog.Product) Item {
	a := p.CarbonAttributes()
	return Item{
		ID:               p.ID,
		Name:             p.Name,
		Price:            p.Price,
		Quantity:         1,
		Weight:           a.Weight,
		ProductionCoef:   a.ProductionCoef,
		DeliveryDistance: a.DeliveryDistance,
		Packaging:        a.Packaging,
		Category:         p.Category,
	}
}

func (i Item) Attributes() carbon.Attributes {
	return carbon.Attributes{
		Weight:           i.Weight,
		ProductionCoef:   i.ProductionCoef,
		DeliveryDistance: i.DeliveryDistance,
		Packaging:        i.Packaging,
	}
}

// UnitCarbon is the footprint of a single unit before the delivery coefficient
func (i Item) UnitCarbon() float64 {
	return carbon.ProductCarbon(i.Attributes())
}

// storedItem is the persisted shape. Weight and productionCoef may be
// missing in carts written by older clients.
type storedItem struct {
	Item
	Weight         *float64 `json:"weight"`
	ProductionCoef *float64 `json:"productionCoef"`
}

func (s storedItem) resolve() Item {
	item := s.Item
	item.Weight = carbon.DefaultWeight
	item.ProductionCoef = carbon.DefaultProductionCoef
	if s.Weight != nil {
		item.Weight = *s.Weight
	}
	if s.ProductionCoef != nil {
		item.ProductionCoef = *s.ProductionCoef
	}
	return item
}

// decodeItems parses a persisted cart, dropping lines whose quantity is
// not in 1..MaxLineQuantity.
func decodeItems(raw string) ([]Item, int, error) {
	var stored []storedItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, 0, err
	}

	items := make([]Item, 0, len(stored))
	dropped := 0
	for _, s := range stored {
		if s.Quantity <= 0 || s.Quantity > MaxLineQuantity {
			dropped++
			continue
		}
		items = append(items, s.resolve())
	}
	return items, dropped, nil
}

func CarbonLines(items []Item) []carbon.Line {
	lines := make([]carbon.Line, 0, len(items))
	for _, i := range items {
		lines = append(lines, carbon.Line{Attributes: i.Attributes(), Category: i.Category, Quantity: i.Quantity})
	}
	return lines
}

func PricingLines(items []Item) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, i := range items {
		lines = append(lines, pricing.Line{Price: i.Price, Quantity: i.Quantity})
	}
	return lines
}
