package api

import (
	"net/http"

	"github.com/example/ecolife-shop/internal/api/middleware"
	"github.com/example/ecolife-shop/internal/ledger"
	"github.com/example/ecolife-shop/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions carries the optional surfaces of the API
type RouterOptions struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Ledger, when set, serves the shared counter under /api/co2
	Ledger *ledger.Server
	WebDir string
	// AdminToken guards the counter reset routes. Empty disables them.
	AdminToken string
}

func NewRouter(h *Handlers, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	if opts.Metrics != nil {
		r.Use(middleware.Observe(opts.Metrics, h.logger))
	}

	admin := middleware.RequireAdmin(opts.AdminToken)
	if opts.Ledger != nil {
		opts.Ledger.Register(r, "/api/co2", admin)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/session", h.CreateSession).Methods(http.MethodPost)

	api.HandleFunc("/products", h.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/delivery-options", h.GetDeliveryOptions).Methods(http.MethodGet)

	api.HandleFunc("/counter", h.GetCounter).Methods(http.MethodGet)
	api.Handle("/counter/reset", admin(http.HandlerFunc(h.ResetCounter))).Methods(http.MethodPost)

	shopper := api.NewRoute().Subrouter()
	shopper.Use(middleware.RequireSession(h.tokens))

	shopper.HandleFunc("/session/refresh", h.RefreshSession).Methods(http.MethodPost)

	shopper.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	shopper.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	shopper.HandleFunc("/cart/items", h.AddToCart).Methods(http.MethodPost)
	shopper.HandleFunc("/cart/items/{id:[0-9]+}", h.AdjustCartItem).Methods(http.MethodPatch)
	shopper.HandleFunc("/cart/items/{id:[0-9]+}", h.RemoveFromCart).Methods(http.MethodDelete)
	shopper.HandleFunc("/cart/promo", h.ApplyPromo).Methods(http.MethodPost)
	shopper.HandleFunc("/cart/delivery", h.SetDelivery).Methods(http.MethodPut)
	shopper.HandleFunc("/cart/carbon", h.GetCarbonReport).Methods(http.MethodGet)

	shopper.HandleFunc("/checkout", h.GetCheckout).Methods(http.MethodGet)
	shopper.HandleFunc("/checkout", h.PlaceOrder).Methods(http.MethodPost)

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	if opts.WebDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.WebDir)))
	}

	return r
}
