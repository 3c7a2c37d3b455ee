package email

import (
	"bytes"
	"html/template"

	"github.com/example/ecolife-shop/internal/format"
	"github.com/shopspring/decimal"
)

// OrderItem is an order line as shown in the confirmation email
type OrderItem struct {
	Name     string
	Quantity int
	Price    int
}

// OrderReceipt carries everything the confirmation email shows
type OrderReceipt struct {
	OrderID        string
	CustomerName   string
	Items          []OrderItem
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	DeliveryFee    decimal.Decimal
	Total          decimal.Decimal
	DeliveryName   string
	Carbon         float64
	CarbonSaved    float64
	SavingsPercent int
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": format.Money,
	"kg":    format.Kilograms,
	"line": func(i OrderItem) string {
		return format.Money(decimal.NewFromInt(int64(i.Price) * int64(i.Quantity)))
	},
	"price": func(p int) string { return format.Money(decimal.NewFromInt(int64(p))) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #2e7d32 0%, #66bb6a 100%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Спасибо за заказ{{if .CustomerName}}, {{.CustomerName}}{{end}}!</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 0 0 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Номер заказа</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">{{.OrderID}}</p>
		</div>

		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Товар</th>
					<th style="padding: 12px; text-align: center;">Кол-во</th>
					<th style="padding: 12px; text-align: right;">Цена</th>
					<th style="padding: 12px; text-align: right;">Сумма</th>
				</tr>
			</thead>
			<tbody>
			{{- range .Items}}
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee;">{{.Name}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{price .Price}} руб.</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{line .}} руб.</td>
				</tr>
			{{- end}}
			</tbody>
		</table>

		<table style="width: 100%; margin: 20px 0;">
			<tr><td>Подытог</td><td style="text-align: right;">{{money .Subtotal}} руб.</td></tr>
			{{- if .Discount.IsPositive}}
			<tr><td>Скидка</td><td style="text-align: right;">-{{money .Discount}} руб.</td></tr>
			{{- end}}
			<tr><td>Доставка ({{.DeliveryName}})</td><td style="text-align: right;">{{if .DeliveryFee.IsZero}}Бесплатно{{else}}{{money .DeliveryFee}} руб.{{end}}</td></tr>
			<tr><td style="font-weight: bold;">Итого</td><td style="text-align: right; font-size: 20px; font-weight: bold; color: #2e7d32;">{{money .Total}} руб.</td></tr>
		</table>

		<div style="background: #e8f5e9; padding: 15px; border-radius: 5px;">
			<p style="margin: 0;">Углеродный след заказа: <strong>{{kg .Carbon}} кг CO₂</strong></p>
			<p style="margin: 5px 0 0 0;">Вы сэкономили <strong>{{kg .CarbonSaved}} кг CO₂</strong> ({{.SavingsPercent}}% меньше обычной корзины)</p>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Это письмо отправлено автоматически. Если у вас есть вопросы, свяжитесь со службой поддержки.
		</p>
	</div>
</body>
</html>`))

// BuildOrderConfirmationBody renders the HTML body of the confirmation email
func BuildOrderConfirmationBody(r OrderReceipt) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
