package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/example/ecolife-shop/internal/api/middleware"
	"github.com/example/ecolife-shop/internal/auth"
	"github.com/example/ecolife-shop/internal/domain/cart"
	"github.com/example/ecolife-shop/internal/domain/catalog"
	"github.com/example/ecolife-shop/internal/domain/checkout"
	"github.com/example/ecolife-shop/internal/domain/counter"
	"github.com/example/ecolife-shop/internal/domain/delivery"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Catalog is the product source the API serves
type Catalog interface {
	catalog.Catalog
	Categories() []string
}

type Handlers struct {
	catalog  Catalog
	sessions *cart.Sessions
	checkout *checkout.Service
	counter  *counter.Counter
	tokens   *auth.SessionTokens
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandlers(cat Catalog, sessions *cart.Sessions, co *checkout.Service, c *counter.Counter, tokens *auth.SessionTokens, logger *zap.Logger) *Handlers {
	return &Handlers{
		catalog:  cat,
		sessions: sessions,
		checkout: co,
		counter:  c,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger.Named("api"),
	}
}

// Session Handlers

type SessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession starts an anonymous shopper session and sets its cookie
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	token, sessionID, expiresAt, err := h.tokens.Issue()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	setSessionCookie(w, token, expiresAt)
	respondJSON(w, http.StatusCreated, SessionResponse{Token: token, SessionID: sessionID, ExpiresAt: expiresAt})
}

// RefreshSession reissues the caller's token with a new expiry. The cart
// stays with the session id.
func (h *Handlers) RefreshSession(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r.Context())
	token, expiresAt, err := h.tokens.Refresh(sessionID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	setSessionCookie(w, token, expiresAt)
	respondJSON(w, http.StatusOK, SessionResponse{Token: token, SessionID: sessionID, ExpiresAt: expiresAt})
}

func setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Catalog Handlers

// ProductResponse is a catalog product with its per-unit footprint
type ProductResponse struct {
	catalog.Product
	Carbon float64 `json:"carbon"`
}

func newProductResponse(p catalog.Product) ProductResponse {
	return ProductResponse{Product: p, Carbon: p.Carbon()}
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products := h.catalog.List(catalog.Filter{Category: q.Get("category"), Query: q.Get("q")})

	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, newProductResponse(p))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.respondErr(w, r, catalog.ErrProductNotFound)
		return
	}

	product, ok := h.catalog.Product(id)
	if !ok {
		h.respondErr(w, r, catalog.ErrProductNotFound)
		return
	}
	respondJSON(w, http.StatusOK, newProductResponse(product))
}

func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Categories())
}

func (h *Handlers) GetDeliveryOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, delivery.Options())
}

// Counter Handlers

type CounterResponse struct {
	TotalCO2Saved float64 `json:"total_co2_saved"`
}

func (h *Handlers) GetCounter(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CounterResponse{TotalCO2Saved: h.counter.Load(r.Context())})
}

func (h *Handlers) ResetCounter(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CounterResponse{TotalCO2Saved: h.counter.Reset(r.Context())})
}
