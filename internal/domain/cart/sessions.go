package cart

import (
	"context"
	"sync"
	"time"

	"github.com/example/ecolife-shop/internal/domain/catalog"
	"github.com/example/ecolife-shop/internal/infrastructure/store"
	"go.uber.org/zap"
)

const (
	DefaultIdleTTL = 30 * time.Minute
	DefaultMaxOpen = 10000
)

type openCart struct {
	store    *Store
	lastUsed time.Time
}

// Sessions hands out one Store per shopper session. Each session's cart
// lives under its own key namespace in the shared backend. Carts unused for
// longer than the idle TTL are dropped from memory and restored from the
// backend on the next Get. A cart in checkout is never dropped.
type Sessions struct {
	mu      sync.Mutex
	kv      store.KeyValueStore
	catalog catalog.Catalog
	logger  *zap.Logger
	carts   map[string]*openCart
	idleTTL time.Duration
	maxOpen int
	now     func() time.Time
}

type SessionsOption func(*Sessions)

func WithIdleTTL(d time.Duration) SessionsOption {
	return func(s *Sessions) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithMaxOpen bounds the number of carts held in memory
func WithMaxOpen(n int) SessionsOption {
	return func(s *Sessions) {
		if n > 0 {
			s.maxOpen = n
		}
	}
}

func WithSessionsClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

func NewSessions(kv store.KeyValueStore, cat catalog.Catalog, logger *zap.Logger, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		kv:      kv,
		catalog: cat,
		logger:  logger,
		carts:   make(map[string]*openCart),
		idleTTL: DefaultIdleTTL,
		maxOpen: DefaultMaxOpen,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session's cart, restoring it from the backend on first use.
func (s *Sessions) Get(ctx context.Context, sessionID string) (*Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if c, ok := s.carts[sessionID]; ok {
		c.lastUsed = now
		return c.store, nil
	}

	if len(s.carts) >= s.maxOpen {
		s.evictIdleLocked(now)
	}
	if len(s.carts) >= s.maxOpen {
		s.evictOldestLocked()
	}

	c, err := Open(ctx, store.NewNamespace(s.kv, "session:"+sessionID), s.catalog, s.logger.With(zap.String("session_id", sessionID)))
	if err != nil {
		return nil, err
	}
	s.carts[sessionID] = &openCart{store: c, lastUsed: now}
	return c, nil
}

// Sweep drops carts idle for longer than the idle TTL and returns how many
// were dropped.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictIdleLocked(s.now())
}

func (s *Sessions) evictIdleLocked(now time.Time) int {
	evicted := 0
	for id, c := range s.carts {
		if now.Sub(c.lastUsed) > s.idleTTL && !c.store.InCheckout() {
			delete(s.carts, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("idle carts evicted", zap.Int("evicted", evicted), zap.Int("open", len(s.carts)))
	}
	return evicted
}

// evictOldestLocked drops the least recently used cart that is not in
// checkout.
func (s *Sessions) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, c := range s.carts {
		if c.store.InCheckout() {
			continue
		}
		if oldestID == "" || c.lastUsed.Before(oldest) {
			oldestID, oldest = id, c.lastUsed
		}
	}
	if oldestID != "" {
		delete(s.carts, oldestID)
	}
}

// Len is the number of carts currently held in memory
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}
