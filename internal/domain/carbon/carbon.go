// Package carbon estimates the CO₂-equivalent footprint of products and carts.
//
// All functions are pure and total: unknown distance zones and packaging
// kinds fall back to fixed default factors instead of failing.
package carbon

import (
	"math"

	"github.com/example/ecolife-shop/internal/domain/delivery"
)

// Transport emission factor, kg CO₂e per km.
const TransportFactor = 0.00021

// BaselineMultiplier scales an optimized cart into the "regular cart" it is
// compared against. The figure carries over from the storefront as is; it
// has no documented derivation.
const BaselineMultiplier = 1.4

const (
	DefaultWeight         = 0.1
	DefaultProductionCoef = 1.0
	DefaultDistance       = 250.0
	DefaultPackaging      = 0.2
)

const (
	ZoneLocal    = "local"
	ZoneRegional = "regional"
	ZoneFar      = "far"
)

const (
	PackagingNone          = "none"
	PackagingBiodegradable = "biodegradable"
	PackagingPaper         = "paper"
	PackagingGlass         = "glass"
	PackagingPlastic       = "plastic"
)

var distances = map[string]float64{
	ZoneLocal:    50,
	ZoneRegional: 250,
	ZoneFar:      1000,
}

var packagings = map[string]float64{
	PackagingNone:          0,
	PackagingBiodegradable: 0.1,
	PackagingPaper:         0.2,
	PackagingGlass:         0.3,
	PackagingPlastic:       0.5,
}

// Attributes are the carbon-relevant fields of a catalog product. Weight and
// ProductionCoef are used as given; catalogs substitute DefaultWeight and
// DefaultProductionCoef for missing values before building Attributes.
type Attributes struct {
	Weight           float64 `json:"weight"`
	ProductionCoef   float64 `json:"productionCoef"`
	DeliveryDistance string  `json:"deliveryDistance"`
	Packaging        string  `json:"packaging"`
}

// Line is a product with a quantity, as held in a cart
type Line struct {
	Attributes
	Category string
	Quantity int
}

// Distance returns the km factor for a delivery zone
func Distance(zone string) float64 {
	if d, ok := distances[zone]; ok {
		return d
	}
	return DefaultDistance
}

// PackagingCarbon returns the kg CO₂e attributed to one unit of packaging
func PackagingCarbon(kind string) float64 {
	if c, ok := packagings[kind]; ok {
		return c
	}
	return DefaultPackaging
}

// KnownZone reports whether zone has its own distance factor
func KnownZone(zone string) bool {
	_, ok := distances[zone]
	return ok
}

// KnownPackaging reports whether kind has its own packaging factor
func KnownPackaging(kind string) bool {
	_, ok := packagings[kind]
	return ok
}

// UnitProduction is the weight×productionCoef component of one unit.
func (a Attributes) UnitProduction() float64 { return a.Weight * a.ProductionCoef }

// UnitTransport is the distance component of one unit.
func (a Attributes) UnitTransport() float64 { return Distance(a.DeliveryDistance) * TransportFactor }

// UnitPackaging is the packaging component of one unit.
func (a Attributes) UnitPackaging() float64 { return PackagingCarbon(a.Packaging) }

// ProductCarbon returns kg CO₂e for one unit of a product.
func ProductCarbon(a Attributes) float64 {
	return a.UnitProduction() + a.UnitTransport() + a.UnitPackaging()
}

// CartCarbon returns kg CO₂e for all lines delivered with method m.
func CartCarbon(lines []Line, m delivery.Method) float64 {
	var sum float64
	for _, l := range lines {
		sum += ProductCarbon(l.Attributes) * float64(l.Quantity)
	}
	return sum * m.CarbonCoef()
}

// Baseline returns the footprint of the equivalent regular cart.
func Baseline(actual float64, m delivery.Method) float64 {
	if actual == 0 {
		return 0
	}
	return actual / m.CarbonCoef() * BaselineMultiplier
}

// Saved is the amount banked into the global counter for an order.
func Saved(actual float64, m delivery.Method) float64 {
	return Baseline(actual, m) - actual
}

// SavingsPercent returns how much smaller actual is than baseline, in whole
// percent. A non-positive baseline yields 0.
func SavingsPercent(actual, baseline float64) int {
	if baseline <= 0 {
		return 0
	}
	return int(math.Round((1 - actual/baseline) * 100))
}
