package counter

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/example/ecolife-shop/internal/infrastructure/store"
	"github.com/example/ecolife-shop/internal/metrics"
	"go.uber.org/zap"
)

const (
	// StorageKey is the local cache key for the counter value
	StorageKey = "globalCO2Saved"
	// Seed is the value shown before any order has been recorded
	Seed           = 2543.0
	DefaultTimeout = 3 * time.Second
)

var ErrNegativeAmount = errors.New("amount must not be negative")

// Remote is the shared counter service. A nil Remote disables remote sync.
type Remote interface {
	Total(ctx context.Context) (float64, error)
	Add(ctx context.Context, amount float64, orderID string) (float64, error)
	Reset(ctx context.Context) error
}

// Change reports an increment. Previous is the value before the increment,
// so displays can animate from it to Total.
type Change struct {
	Previous float64 `json:"previous"`
	Total    float64 `json:"total"`
	Source   Source  `json:"source"`
}

// Counter is the process-wide "CO2 saved" accumulator. It prefers the
// remote service and falls back to a local cache in kv.
type Counter struct {
	mu      sync.Mutex
	remote  Remote
	kv      store.KeyValueStore
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
	value   float64
}

type Option func(*Counter)

func WithTimeout(d time.Duration) Option {
	return func(c *Counter) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Counter) { c.metrics = m }
}

func New(remote Remote, kv store.KeyValueStore, logger *zap.Logger, opts ...Option) *Counter {
	c := &Counter{
		remote:  remote,
		kv:      kv,
		timeout: DefaultTimeout,
		logger:  logger.Named("counter"),
		value:   Seed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Value returns the in-memory value without touching any backend
func (c *Counter) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Load refreshes the value from the remote service, the local cache or the
// seed, in that order.
func (c *Counter) Load(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	remote := c.remoteTotal(ctx)
	local := Missing
	if !remote.OK {
		local = c.localValue(ctx)
	}

	value, source := ResolveLoad(remote, local)
	if source == SourceRemote {
		c.writeLocal(ctx, value)
	}
	c.set(value)

	c.logger.Debug("counter loaded", zap.Float64("value", value), zap.String("source", string(source)))
	return value
}

// LoadLocal adopts the local cache, or the seed when the cache is empty,
// without contacting the remote service.
func (c *Counter) LoadLocal(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, source := ResolveLoad(Missing, c.localValue(ctx))
	c.set(value)

	c.logger.Debug("counter loaded", zap.Float64("value", value), zap.String("source", string(source)))
	return value
}

// Add increments the counter by amount for orderID.
func (c *Counter) Add(ctx context.Context, amount float64, orderID string) (Change, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Change{}, ErrNegativeAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.value
	total, source := ResolveAdd(c.remoteAdd(ctx, amount, orderID), previous, amount)

	c.set(total)
	c.writeLocal(ctx, total)

	c.logger.Info("counter incremented",
		zap.String("order_id", orderID),
		zap.Float64("amount", amount),
		zap.Float64("total", total),
		zap.String("source", string(source)),
	)
	return Change{Previous: previous, Total: total, Source: source}, nil
}

// Reset asks the remote service to reset, ignoring failures, and forces
// the local value back to the seed.
func (c *Counter) Reset(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.remote.Reset(rctx); err != nil {
			c.logger.Warn("remote reset failed", zap.Error(err))
			c.fallback("reset")
		}
	}

	c.set(Seed)
	c.writeLocal(ctx, Seed)
	return Seed
}

func (c *Counter) remoteTotal(ctx context.Context) Result {
	if c.remote == nil {
		return Missing
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	total, err := c.remote.Total(rctx)
	if err != nil || !valid(total) {
		c.logger.Warn("remote total unavailable, using local cache", zap.Error(err), zap.Float64("total", total))
		c.fallback("load")
		return Missing
	}
	return Found(total)
}

func (c *Counter) remoteAdd(ctx context.Context, amount float64, orderID string) Result {
	if c.remote == nil {
		return Missing
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	total, err := c.remote.Add(rctx, amount, orderID)
	if err != nil || !valid(total) {
		c.logger.Warn("remote add failed, incrementing locally", zap.String("order_id", orderID), zap.Error(err))
		c.fallback("add")
		return Missing
	}
	return Found(total)
}

func (c *Counter) localValue(ctx context.Context) Result {
	raw, ok, err := c.kv.Get(ctx, StorageKey)
	if err != nil {
		c.logger.Warn("failed to read local counter", zap.Error(err))
		return Missing
	}
	if !ok {
		return Missing
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !valid(v) {
		c.logger.Warn("ignoring unparsable local counter", zap.String("raw", raw))
		return Missing
	}
	return Found(v)
}

func (c *Counter) writeLocal(ctx context.Context, v float64) {
	if err := c.kv.Set(ctx, StorageKey, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		c.logger.Warn("failed to write local counter", zap.Error(err))
	}
}

func (c *Counter) set(v float64) {
	c.value = v
	if c.metrics != nil {
		c.metrics.CounterValue.Set(v)
	}
}

func (c *Counter) fallback(op string) {
	if c.metrics != nil {
		c.metrics.CounterFallbacks.WithLabelValues(op).Inc()
	}
}

func valid(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
