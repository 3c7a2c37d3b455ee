package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/ecolife-shop/internal/domain/checkout"
	"github.com/example/ecolife-shop/internal/email"
	"github.com/example/ecolife-shop/internal/event"
	"go.uber.org/zap"
)

// Handler sends order confirmation emails for OrderSubmitted events
type Handler struct {
	sender email.Sender
	logger *zap.Logger
}

func NewHandler(sender email.Sender, logger *zap.Logger) *Handler {
	return &Handler{
		sender: sender,
		logger: logger.Named("notification"),
	}
}

// HandleEvent processes one message from the order topic
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var e event.Event
	if err := json.Unmarshal(value, &e); err != nil {
		h.logger.Error("failed to unmarshal event", zap.ByteString("key", key), zap.Error(err))
		return err
	}

	if e.EventType != checkout.EventOrderSubmitted {
		return nil
	}
	return h.handleOrderSubmitted(e)
}

func (h *Handler) handleOrderSubmitted(e event.Event) error {
	var o checkout.OrderSubmitted
	if err := e.Decode(&o); err != nil {
		h.logger.Error("failed to decode OrderSubmitted", zap.String("event_id", e.ID), zap.Error(err))
		return err
	}

	if o.Contact.Email == "" {
		h.logger.Info("order has no contact email, skipping", zap.String("order_id", o.OrderID))
		return nil
	}

	items := make([]email.OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = email.OrderItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	receipt := email.OrderReceipt{
		OrderID:        o.OrderID,
		CustomerName:   o.Contact.Name,
		Items:          items,
		Subtotal:       o.Subtotal,
		Discount:       o.Discount,
		DeliveryFee:    o.DeliveryFee,
		Total:          o.Total,
		DeliveryName:   o.DeliveryMethod.Option().Name,
		Carbon:         o.Carbon,
		CarbonSaved:    o.CarbonSaved,
		SavingsPercent: o.SavingsPercent,
	}

	if err := h.sender.SendOrderConfirmation(o.Contact.Email, receipt); err != nil {
		h.logger.Error("failed to send confirmation", zap.String("order_id", o.OrderID), zap.Error(err))
		return fmt.Errorf("send confirmation for %s: %w", o.OrderID, err)
	}

	h.logger.Info("order confirmation sent", zap.String("order_id", o.OrderID), zap.String("to", o.Contact.Email))
	return nil
}
