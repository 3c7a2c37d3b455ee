package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/ecolife-shop/internal/auth"
	"github.com/example/ecolife-shop/internal/domain/carbon"
	"github.com/example/ecolife-shop/internal/domain/cart"
	"github.com/example/ecolife-shop/internal/domain/catalog"
	"github.com/example/ecolife-shop/internal/domain/checkout"
	"github.com/example/ecolife-shop/internal/domain/counter"
	"github.com/example/ecolife-shop/internal/event"
	"github.com/example/ecolife-shop/internal/infrastructure/co2api"
	"github.com/example/ecolife-shop/internal/infrastructure/store"
	"github.com/example/ecolife-shop/internal/ledger"
	"github.com/example/ecolife-shop/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr(v float64) *float64 { return &v }

const testAdminToken = "admin-token"

type testAPI struct {
	server    *httptest.Server
	publisher *event.MemoryPublisher
	counter   *counter.Counter
	kv        *store.MemoryStore
}

func setupAPI(t *testing.T, withLedger bool) *testAPI {
	t.Helper()

	cat := catalog.NewMemoryCatalog()
	_, err := cat.Add(catalog.Product{
		ID: 1, Name: "Бамбуковая зубная щётка", Price: 150, Category: "bath",
		Weight: ptr(0.2), ProductionCoef: ptr(1.0),
		DeliveryDistance: carbon.ZoneRegional, Packaging: carbon.PackagingPaper,
	})
	require.NoError(t, err)
	_, err = cat.Add(catalog.Product{
		ID: 2, Name: "Стеклянная бутылка", Price: 420, Category: "kitchen",
		DeliveryDistance: carbon.ZoneFar, Packaging: carbon.PackagingGlass,
	})
	require.NoError(t, err)

	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	kv := store.NewMemoryStore()
	publisher := event.NewMemoryPublisher()
	c := counter.New(nil, kv, logger, counter.WithMetrics(m))
	co := checkout.NewService(c, logger,
		checkout.WithPublisher(publisher),
		checkout.WithMetrics(m),
		checkout.WithOrderIDs(func() string { return "ECO-12345" }),
	)
	tokens := auth.NewSessionTokens("test-secret", time.Hour)
	h := NewHandlers(cat, cart.NewSessions(kv, cat, logger), co, c, tokens, logger)

	opts := RouterOptions{Metrics: m, Gatherer: reg, AdminToken: testAdminToken}
	if withLedger {
		opts.Ledger = ledger.NewServer(ledger.New(kv, counter.Seed, logger), logger)
	}

	srv := httptest.NewServer(NewRouter(h, opts))
	t.Cleanup(srv.Close)
	return &testAPI{server: srv, publisher: publisher, counter: c, kv: kv}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (a *testAPI) session(t *testing.T) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/session", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[SessionResponse](t, resp).Token
}

// ============================================
// Catalog Tests
// ============================================

func TestAPI_Products(t *testing.T) {
	a := setupAPI(t, false)

	resp := a.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products := decode[[]ProductResponse](t, resp)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[0].ID)
	assert.InDelta(t, 0.4525, products[0].Carbon, 1e-9)

	resp = a.do(t, http.MethodGet, "/api/products?category=kitchen", "", nil)
	products = decode[[]ProductResponse](t, resp)
	require.Len(t, products, 1)
	assert.Equal(t, 2, products[0].ID)
}

func TestAPI_Product(t *testing.T) {
	a := setupAPI(t, false)

	resp := a.do(t, http.MethodGet, "/api/products/2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Стеклянная бутылка", decode[ProductResponse](t, resp).Name)

	resp = a.do(t, http.MethodGet, "/api/products/99", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CategoriesAndDeliveryOptions(t *testing.T) {
	a := setupAPI(t, false)

	resp := a.do(t, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, []string{"bath", "kitchen"}, decode[[]string](t, resp))

	resp = a.do(t, http.MethodGet, "/api/delivery-options", "", nil)
	options := decode[[]map[string]any](t, resp)
	assert.Len(t, options, 3)
}

// ============================================
// Cart Tests
// ============================================

func TestAPI_CartRequiresSession(t *testing.T) {
	a := setupAPI(t, false)

	resp := a.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/cart", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CartFlow(t *testing.T) {
	a := setupAPI(t, false)
	token := a.session(t)

	resp := a.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[cart.Summary](t, resp)
	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, "150", summary.Total.String())
	assert.InDelta(t, 0.429875, summary.Carbon, 1e-9)

	resp = a.do(t, http.MethodPost, "/api/cart/promo", token, PromoRequest{Code: "eco10"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "135", decode[cart.Summary](t, resp).Total.String())

	resp = a.do(t, http.MethodPost, "/api/cart/promo", token, PromoRequest{Code: "FREE"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, http.MethodPut, "/api/cart/delivery", token, DeliveryRequest{Method: "standard"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "145", decode[cart.Summary](t, resp).Total.String())

	resp = a.do(t, http.MethodPut, "/api/cart/delivery", token, DeliveryRequest{Method: "rocket"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, http.MethodPatch, "/api/cart/items/1", token, AdjustItemRequest{Delta: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[cart.Summary](t, resp).ItemCount)

	resp = a.do(t, http.MethodDelete, "/api/cart/items/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[cart.Summary](t, resp).Items)
}

func TestAPI_AddUnknownProduct(t *testing.T) {
	a := setupAPI(t, false)
	token := a.session(t)

	resp := a.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: 42})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/cart/items", token, "not an object")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_SessionsAreIsolated(t *testing.T) {
	a := setupAPI(t, false)
	alice, bob := a.session(t), a.session(t)

	a.do(t, http.MethodPost, "/api/cart/items", alice, AddItemRequest{ProductID: 2})

	resp := a.do(t, http.MethodGet, "/api/cart", bob, nil)
	assert.Empty(t, decode[cart.Summary](t, resp).Items)

	resp = a.do(t, http.MethodGet, "/api/cart", alice, nil)
	assert.Len(t, decode[cart.Summary](t, resp).Items, 1)
}

func TestAPI_RefreshSessionKeepsCart(t *testing.T) {
	a := setupAPI(t, false)
	token := a.session(t)
	a.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: 1})

	resp := a.do(t, http.MethodPost, "/api/session/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/session/refresh", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refreshed := decode[SessionResponse](t, resp)
	require.NotEmpty(t, refreshed.Token)

	resp = a.do(t, http.MethodGet, "/api/cart", refreshed.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[cart.Summary](t, resp).ItemCount)
}

func TestAPI_AdjustBeyondLimit(t *testing.T) {
	a := setupAPI(t, false)
	token := a.session(t)
	a.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: 1})

	for _, delta := range []int{cart.MaxLineQuantity, 1 << 62, math.MaxInt} {
		resp := a.do(t, http.MethodPatch, "/api/cart/items/1", token, AdjustItemRequest{Delta: delta})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	resp := a.do(t, http.MethodGet, "/api/cart", token, nil)
	summary := decode[cart.Summary](t, resp)
	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, "150", summary.Total.String())
}

func TestAPI_CarbonReport(t *testing.T) {
	a := setupAPI(t, false)
	token := a.session(t)

	resp := a.do(t, http.MethodGet, "/api/cart/carbon", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	a.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: 2})
	resp = a.do(t, http.MethodGet, "/api/cart/carbon", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[checkout.CarbonReport](t, resp)
	assert.Greater(t, report.Breakdown.Total, 0.0)
	assert.Contains(t, report.ByCategory, "kitchen")
	assert.NotEmpty(t, report.Tips)
}

// ============================================
// Checkout Tests
// ============================================

func TestAPI_CheckoutEmptyCart(t *testing.T) {
	a := setupAPI(t, false)
	token := a.session(t)

	resp := a.do(t, http.MethodGet, "/api/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/checkout", token, CheckoutRequest{Contact: checkout.Contact{
		Name: "Анна", Email: "anna@example.com", Phone: "+37377700000", Address: "Тирасполь",
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, a.publisher.Events())
}

func TestAPI_CheckoutInvalidContact(t *testing.T) {
	a := setupAPI(t, false)
	token := a.session(t)
	a.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: 1})

	resp := a.do(t, http.MethodPost, "/api/checkout", token, CheckoutRequest{Contact: checkout.Contact{
		Name: "Анна", Email: "not-an-email",
	}})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.ElementsMatch(t, []any{"email", "phone", "address"}, body["fields"])

	resp = a.do(t, http.MethodGet, "/api/cart", token, nil)
	assert.Len(t, decode[cart.Summary](t, resp).Items, 1)
}

func TestAPI_PlaceOrder(t *testing.T) {
	a := setupAPI(t, false)
	token := a.session(t)
	a.do(t, http.MethodPost, "/api/cart/items", token, AddItemRequest{ProductID: 1})
	a.do(t, http.MethodPost, "/api/cart/promo", token, PromoRequest{Code: "ECO10"})

	resp := a.do(t, http.MethodGet, "/api/checkout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "135", decode[cart.Summary](t, resp).Total.String())

	resp = a.do(t, http.MethodPost, "/api/checkout", token, CheckoutRequest{Contact: checkout.Contact{
		Name: "Анна", Email: "anna@example.com", Phone: "+37377700000", Address: "Тирасполь",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	receipt := decode[checkout.Receipt](t, resp)
	assert.Equal(t, "ECO-12345", receipt.OrderID)
	assert.Equal(t, "135", receipt.Total.String())
	require.NotNil(t, receipt.Counter)
	assert.InDelta(t, counter.Seed+receipt.CarbonSaved, receipt.Counter.Total, 1e-9)

	resp = a.do(t, http.MethodGet, "/api/cart", token, nil)
	summary := decode[cart.Summary](t, resp)
	assert.Empty(t, summary.Items)
	assert.Nil(t, summary.Promo)

	require.Len(t, a.publisher.Events(), 1)
	assert.Equal(t, checkout.EventOrderSubmitted, a.publisher.Events()[0].EventType)

	resp = a.do(t, http.MethodGet, "/api/counter", "", nil)
	assert.InDelta(t, receipt.Counter.Total, decode[CounterResponse](t, resp).TotalCO2Saved, 1e-9)
}

// ============================================
// Counter / Ledger / Metrics Tests
// ============================================

func TestAPI_CounterReset(t *testing.T) {
	a := setupAPI(t, false)
	_, err := a.counter.Add(context.Background(), 10, "ECO-10000")
	require.NoError(t, err)

	resp := a.do(t, http.MethodPost, "/api/counter/reset", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = a.do(t, http.MethodPost, "/api/counter/reset", a.session(t), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, counter.Seed+10, a.counter.Value())

	resp = a.do(t, http.MethodPost, "/api/counter/reset", testAdminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, counter.Seed, decode[CounterResponse](t, resp).TotalCO2Saved)
}

func TestAPI_LedgerRoutes(t *testing.T) {
	a := setupAPI(t, true)
	client := co2api.NewClient(a.server.URL+"/api/co2", a.server.Client())

	total, err := client.Add(context.Background(), 1.5, "ECO-55555")
	require.NoError(t, err)
	assert.InDelta(t, counter.Seed+1.5, total, 1e-9)

	resp := a.do(t, http.MethodGet, "/api/co2", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/co2/reset", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = a.do(t, http.MethodPost, "/api/co2/reset", testAdminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_LedgerDisabled(t *testing.T) {
	a := setupAPI(t, false)

	resp := a.do(t, http.MethodGet, "/api/co2", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Metrics(t *testing.T) {
	a := setupAPI(t, false)
	a.do(t, http.MethodGet, "/api/products", "", nil)

	resp := a.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `http_requests_total{method="GET",path="/api/products",status="200"} 1`))
}
