package checkout

import (
	"time"

	"github.com/example/ecolife-shop/internal/domain/cart"
	"github.com/example/ecolife-shop/internal/domain/delivery"
	"github.com/shopspring/decimal"
)

const (
	AggregateType       = "Order"
	EventOrderSubmitted = "OrderSubmitted"
)

// OrderSubmitted is published once per accepted order
type OrderSubmitted struct {
	OrderID        string          `json:"order_id"`
	Contact        Contact         `json:"contact"`
	Items          []cart.Item     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	DeliveryMethod delivery.Method `json:"delivery_method"`
	PromoCode      string          `json:"promo_code,omitempty"`
	Carbon         float64         `json:"carbon"`
	CarbonSaved    float64         `json:"carbon_saved"`
	SavingsPercent int             `json:"savings_percent"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}
