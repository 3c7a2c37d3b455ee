package api

import (
	"net/http"
	"strconv"

	"github.com/example/ecolife-shop/internal/api/middleware"
	"github.com/example/ecolife-shop/internal/domain/cart"
	"github.com/example/ecolife-shop/internal/domain/catalog"
	"github.com/example/ecolife-shop/internal/domain/checkout"
	"github.com/example/ecolife-shop/internal/domain/delivery"
	"github.com/gorilla/mux"
)

type AddItemRequest struct {
	ProductID int `json:"product_id"`
}

type AdjustItemRequest struct {
	Delta int `json:"delta"`
}

type PromoRequest struct {
	Code string `json:"code"`
}

type DeliveryRequest struct {
	Method string `json:"method"`
}

type CheckoutRequest struct {
	Contact checkout.Contact `json:"contact"`
}

// cart returns the cart of the request's session
func (h *Handlers) cart(r *http.Request) (*cart.Store, error) {
	return h.sessions.Get(r.Context(), middleware.SessionID(r.Context()))
}

func productIDVar(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, catalog.ErrProductNotFound
	}
	return id, nil
}

// withCart resolves the session cart, runs fn and replies with the cart summary
func (h *Handlers) withCart(w http.ResponseWriter, r *http.Request, fn func(c *cart.Store) error) {
	c, err := h.cart(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := fn(c); err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c.Summary())
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(*cart.Store) error { return nil })
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	if _, ok := h.catalog.Product(req.ProductID); !ok {
		h.respondErr(w, r, catalog.ErrProductNotFound)
		return
	}

	h.withCart(w, r, func(c *cart.Store) error {
		return c.Add(r.Context(), req.ProductID)
	})
}

func (h *Handlers) AdjustCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := productIDVar(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	var req AdjustItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.withCart(w, r, func(c *cart.Store) error {
		return c.AdjustQuantity(r.Context(), id, req.Delta)
	})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := productIDVar(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.withCart(w, r, func(c *cart.Store) error {
		return c.Remove(r.Context(), id)
	})
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(c *cart.Store) error {
		return c.Clear(r.Context())
	})
}

func (h *Handlers) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req PromoRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.withCart(w, r, func(c *cart.Store) error {
		_, err := c.ApplyPromo(req.Code)
		return err
	})
}

func (h *Handlers) SetDelivery(w http.ResponseWriter, r *http.Request) {
	var req DeliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	method, err := delivery.Parse(req.Method)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.withCart(w, r, func(c *cart.Store) error {
		return c.SetDeliveryMethod(method)
	})
}

func (h *Handlers) GetCarbonReport(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	report, err := h.checkout.CarbonReport(c)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Checkout Handlers

func (h *Handlers) GetCheckout(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	summary, err := h.checkout.Quote(c)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.validate.Struct(req.Contact); err != nil {
		h.respondErr(w, r, err)
		return
	}

	c, err := h.cart(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	receipt, err := h.checkout.Submit(r.Context(), c, req.Contact)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}
