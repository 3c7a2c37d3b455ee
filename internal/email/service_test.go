package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() OrderReceipt {
	return OrderReceipt{
		OrderID:      "ECO-12345",
		CustomerName: "Анна",
		Items: []OrderItem{
			{Name: "Зубная щётка", Quantity: 2, Price: 750},
			{Name: "<script>", Quantity: 1, Price: 99},
		},
		Subtotal:       decimal.NewFromInt(1599),
		Discount:       decimal.RequireFromString("159.9"),
		DeliveryFee:    decimal.Zero,
		Total:          decimal.RequireFromString("1439.1"),
		DeliveryName:   "Велокурьер",
		Carbon:         0.429875,
		CarbonSaved:    0.203625,
		SavingsPercent: 32,
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	body, err := BuildOrderConfirmationBody(sampleReceipt())
	require.NoError(t, err)

	assert.Contains(t, body, "ECO-12345")
	assert.Contains(t, body, "Анна")
	assert.Contains(t, body, "1 500 руб.")
	assert.Contains(t, body, "1 599 руб.")
	assert.Contains(t, body, "-159.9 руб.")
	assert.Contains(t, body, "1 439.1 руб.")
	assert.Contains(t, body, "Бесплатно")
	assert.Contains(t, body, "0.43 кг CO₂")
	assert.Contains(t, body, "32%")
	assert.NotContains(t, body, "<script>")
}

func TestBuildOrderConfirmationBody_NoDiscountRow(t *testing.T) {
	r := sampleReceipt()
	r.Discount = decimal.Zero
	r.DeliveryFee = decimal.NewFromInt(10)

	body, err := BuildOrderConfirmationBody(r)
	require.NoError(t, err)

	assert.NotContains(t, body, "Скидка")
	assert.Contains(t, body, "10 руб.")
}

func TestService_SendOrderConfirmation(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	svc := NewService("smtp.local", "1025", "shop@ecolife.example")
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, svc.SendOrderConfirmation("anna@example.com", sampleReceipt()))

	assert.Equal(t, "smtp.local:1025", gotAddr)
	assert.Equal(t, "shop@ecolife.example", gotFrom)
	assert.Equal(t, []string{"anna@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(string(gotMsg), "From: shop@ecolife.example\r\nTo: anna@example.com\r\n"))
	assert.Contains(t, string(gotMsg), "Subject: Заказ ECO-12345 оформлен")
}

func TestService_SendFailure(t *testing.T) {
	svc := NewService("smtp.local", "1025", "shop@ecolife.example")
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	assert.Error(t, svc.SendOrderConfirmation("anna@example.com", sampleReceipt()))
}
