package co2api

import "encoding/json"

// Envelope wraps every response of the counter service
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type TotalData struct {
	TotalCO2Saved float64 `json:"totalCO2Saved"`
}

// AddRequest carries a null orderId when the increment has no order
type AddRequest struct {
	Amount  float64 `json:"amount"`
	OrderID *string `json:"orderId"`
}

func NewAddRequest(amount float64, orderID string) AddRequest {
	req := AddRequest{Amount: amount}
	if orderID != "" {
		req.OrderID = &orderID
	}
	return req
}

type AddData struct {
	NewTotal float64 `json:"newTotal"`
}

// Order returns the order id, or "" when it is null
func (r AddRequest) Order() string {
	if r.OrderID == nil {
		return ""
	}
	return *r.OrderID
}
