package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the storefront collectors. Construct one per registry.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CounterFallbacks    *prometheus.CounterVec
	CounterValue        prometheus.Gauge
	OrdersSubmitted     prometheus.Counter
	CarbonSaved         prometheus.Counter
	OpenCarts           prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		CounterFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "co2_counter_remote_fallbacks_total",
				Help: "Counter operations that fell back to local state",
			},
			[]string{"op"},
		),
		CounterValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "co2_counter_value_kg",
			Help: "Current global CO2 saved value",
		}),
		OrdersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_submitted_total",
			Help: "Orders submitted through checkout",
		}),
		CarbonSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_carbon_saved_kg_total",
			Help: "CO2 saved by submitted orders",
		}),
		OpenCarts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cart_sessions_open",
			Help: "Session carts held in memory",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CounterFallbacks,
		m.CounterValue,
		m.OrdersSubmitted,
		m.CarbonSaved,
		m.OpenCarts,
	)
	return m
}

// Nop returns collectors registered on a private registry
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
