package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/example/ecolife-shop/internal/domain/carbon"
	"github.com/example/ecolife-shop/internal/domain/cart"
	"github.com/example/ecolife-shop/internal/domain/counter"
	"github.com/example/ecolife-shop/internal/domain/delivery"
	"github.com/example/ecolife-shop/internal/event"
	"github.com/example/ecolife-shop/internal/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

// Contact is the shopper's delivery contact, validated by the caller
type Contact struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// Receipt is the confirmation of a submitted order
type Receipt struct {
	OrderID        string          `json:"order_id"`
	Items          []cart.Item     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	DeliveryMethod delivery.Method `json:"delivery_method"`
	PromoCode      string          `json:"promo_code,omitempty"`
	Carbon         float64         `json:"carbon"`
	Baseline       float64         `json:"baseline"`
	CarbonSaved    float64         `json:"carbon_saved"`
	SavingsPercent int             `json:"savings_percent"`
	// Counter is set when the order's savings were added to the global counter
	Counter     *counter.Change `json:"counter,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// CarbonReport is the detailed carbon view of a cart
type CarbonReport struct {
	Breakdown      carbon.Breakdown   `json:"breakdown"`
	Shares         carbon.Shares      `json:"shares"`
	ByCategory     map[string]float64 `json:"by_category"`
	Tips           []carbon.Tip       `json:"tips"`
	Baseline       float64            `json:"baseline"`
	CarbonSaved    float64            `json:"carbon_saved"`
	SavingsPercent int                `json:"savings_percent"`
	DeliveryMethod delivery.Method    `json:"delivery_method"`
}

// CounterAdder is the part of the global counter checkout needs
type CounterAdder interface {
	Add(ctx context.Context, amount float64, orderID string) (counter.Change, error)
}

type Service struct {
	counter   CounterAdder
	publisher event.Publisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
	orderID   func() string
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p event.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithOrderIDs replaces the order number generator
func WithOrderIDs(gen func() string) Option {
	return func(s *Service) { s.orderID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(c CounterAdder, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		counter: c,
		logger:  logger.Named("checkout"),
		orderID: NewOrderID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewOrderID returns an order number of the form ECO-NNNNN
func NewOrderID() string {
	return fmt.Sprintf("ECO-%d", 10000+rand.IntN(90000))
}

// Quote returns the checkout summary of a non-empty cart
func (s *Service) Quote(c *cart.Store) (cart.Summary, error) {
	summary := c.Summary()
	if len(summary.Items) == 0 {
		return cart.Summary{}, ErrEmptyCart
	}
	return summary, nil
}

func (s *Service) CarbonReport(c *cart.Store) (CarbonReport, error) {
	snap := c.Snapshot()
	if snap.Empty() {
		return CarbonReport{}, ErrEmptyCart
	}

	lines := cart.CarbonLines(snap.Items)
	breakdown := carbon.NewBreakdown(lines, snap.Method)
	baseline := carbon.Baseline(breakdown.Total, snap.Method)

	return CarbonReport{
		Breakdown:      breakdown,
		Shares:         breakdown.Shares(),
		ByCategory:     carbon.ByCategory(lines),
		Tips:           carbon.Tips(lines, snap.Method),
		Baseline:       baseline,
		CarbonSaved:    baseline - breakdown.Total,
		SavingsPercent: carbon.SavingsPercent(breakdown.Total, baseline),
		DeliveryMethod: snap.Method,
	}, nil
}

// Submit places the order held in c. The counter increment and the receipt
// happen before the cart is cleared.
func (s *Service) Submit(ctx context.Context, c *cart.Store, contact Contact) (Receipt, error) {
	snap, err := c.BeginCheckout()
	if err != nil {
		return Receipt{}, err
	}
	if snap.Empty() {
		c.AbortCheckout()
		return Receipt{}, ErrEmptyCart
	}

	summary := cart.Summarize(snap)
	orderID := s.orderID()

	var change *counter.Change
	if summary.CarbonSaved > 0 {
		ch, err := s.counter.Add(ctx, summary.CarbonSaved, orderID)
		if err != nil {
			s.logger.Error("failed to add savings to counter", zap.String("order_id", orderID), zap.Error(err))
		} else {
			change = &ch
		}
	}

	receipt := Receipt{
		OrderID:        orderID,
		Items:          summary.Items,
		Subtotal:       summary.Subtotal,
		Discount:       summary.Discount,
		DeliveryFee:    summary.DeliveryFee,
		Total:          summary.Total,
		DeliveryMethod: snap.Method,
		Carbon:         summary.Carbon,
		Baseline:       summary.Baseline,
		CarbonSaved:    summary.CarbonSaved,
		SavingsPercent: summary.SavingsPercent,
		Counter:        change,
		SubmittedAt:    s.now(),
	}
	if snap.Promo != nil {
		receipt.PromoCode = snap.Promo.Code
	}

	if err := c.CompleteCheckout(ctx); err != nil {
		s.logger.Error("failed to clear cart after submission", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publish(ctx, receipt, contact)
	if s.metrics != nil {
		s.metrics.OrdersSubmitted.Inc()
		if receipt.CarbonSaved > 0 {
			s.metrics.CarbonSaved.Add(receipt.CarbonSaved)
		}
	}

	s.logger.Info("order submitted",
		zap.String("order_id", orderID),
		zap.String("total", receipt.Total.String()),
		zap.Float64("carbon_saved", receipt.CarbonSaved),
	)
	return receipt, nil
}

func (s *Service) publish(ctx context.Context, r Receipt, contact Contact) {
	if s.publisher == nil {
		return
	}

	e, err := event.New(r.OrderID, AggregateType, EventOrderSubmitted, OrderSubmitted{
		OrderID:        r.OrderID,
		Contact:        contact,
		Items:          r.Items,
		Subtotal:       r.Subtotal,
		Discount:       r.Discount,
		DeliveryFee:    r.DeliveryFee,
		Total:          r.Total,
		DeliveryMethod: r.DeliveryMethod,
		PromoCode:      r.PromoCode,
		Carbon:         r.Carbon,
		CarbonSaved:    r.CarbonSaved,
		SavingsPercent: r.SavingsPercent,
		SubmittedAt:    r.SubmittedAt,
	})
	if err != nil {
		s.logger.Error("failed to build order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish order event", zap.String("order_id", r.OrderID), zap.Error(err))
	}
}
