package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/example/ecolife-shop/internal/domain/catalog"
	"github.com/example/ecolife-shop/internal/domain/delivery"
	"github.com/example/ecolife-shop/internal/domain/pricing"
	"github.com/example/ecolife-shop/internal/infrastructure/store"
	"go.uber.org/zap"
)

// StorageKey is the key the item list is persisted under
const StorageKey = "ecolife-cart"

// MaxLineQuantity caps the quantity of a single cart line
const MaxLineQuantity = 999

var (
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrQuantityLimit      = fmt.Errorf("line quantity is limited to %d", MaxLineQuantity)
)

// Store owns one shopper's cart. Items are persisted after every change;
// the promo and delivery method live only in memory.
type Store struct {
	mu          sync.Mutex
	kv          store.KeyValueStore
	catalog     catalog.Catalog
	logger      *zap.Logger
	items       []Item
	promo       *pricing.Promo
	method      delivery.Method
	checkingOut bool
}

// Open restores the cart from kv. A malformed persisted value yields an
// empty cart; only a failing backend is an error.
func Open(ctx context.Context, kv store.KeyValueStore, cat catalog.Catalog, logger *zap.Logger) (*Store, error) {
	s := &Store{
		kv:      kv,
		catalog: cat,
		logger:  logger.Named("cart"),
		method:  delivery.Default,
	}

	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !ok {
		return s, nil
	}

	items, dropped, err := decodeItems(raw)
	if err != nil {
		s.logger.Warn("discarding malformed persisted cart", zap.Error(err))
		return s, nil
	}
	if dropped > 0 {
		s.logger.Warn("dropped persisted lines with out of range quantity", zap.Int("dropped", dropped))
	}
	s.items = items
	return s, nil
}

// persist writes next and, only on success, makes it the current state.
// Callers hold s.mu.
func (s *Store) persist(ctx context.Context, next []Item) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	s.items = next
	return nil
}

func (s *Store) indexOf(productID int) int {
	for i, item := range s.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) cloneItems() []Item {
	next := make([]Item, len(s.items))
	copy(next, s.items)
	return next
}

// Add puts one unit of a catalog product in the cart. Unknown products are ignored.
func (s *Store) Add(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return ErrCheckoutInProgress
	}

	next := s.cloneItems()
	if idx := s.indexOf(productID); idx >= 0 {
		if next[idx].Quantity >= MaxLineQuantity {
			return ErrQuantityLimit
		}
		next[idx].Quantity++
	} else {
		product, ok := s.catalog.Product(productID)
		if !ok {
			s.logger.Debug("add ignored, unknown product", zap.Int("product_id", productID))
			return nil
		}
		next = append(next, newItem(product))
	}

	return s.persist(ctx, next)
}

// Remove drops the line for productID. Absent lines are ignored.
func (s *Store) Remove(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return ErrCheckoutInProgress
	}
	return s.removeLocked(ctx, productID)
}

func (s *Store) removeLocked(ctx context.Context, productID int) error {
	idx := s.indexOf(productID)
	if idx < 0 {
		s.logger.Debug("remove ignored, line absent", zap.Int("product_id", productID))
		return nil
	}

	next := make([]Item, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	return s.persist(ctx, next)
}

// AdjustQuantity adds delta to a line; a result of zero or less removes it.
// A result above MaxLineQuantity fails with ErrQuantityLimit.
func (s *Store) AdjustQuantity(ctx context.Context, productID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return ErrCheckoutInProgress
	}

	idx := s.indexOf(productID)
	if idx < 0 {
		s.logger.Debug("adjust ignored, line absent", zap.Int("product_id", productID))
		return nil
	}

	qty := s.items[idx].Quantity
	if delta > MaxLineQuantity-qty {
		return ErrQuantityLimit
	}
	// qty is positive, so qty+delta cannot underflow
	if qty+delta <= 0 {
		return s.removeLocked(ctx, productID)
	}

	next := s.cloneItems()
	next[idx].Quantity += delta
	return s.persist(ctx, next)
}

// ApplyPromo activates a recognized code. An unrecognized code leaves the
// current promo in place.
func (s *Store) ApplyPromo(code string) (pricing.Promo, error) {
	promo, err := pricing.LookupPromo(code)
	if err != nil {
		return pricing.Promo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.promo = &promo
	return promo, nil
}

func (s *Store) SetDeliveryMethod(m delivery.Method) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", delivery.ErrUnknownMethod, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.method = m
	return nil
}

// Clear empties the cart and resets promo and delivery method.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return ErrCheckoutInProgress
	}
	return s.clearLocked(ctx)
}

func (s *Store) clearLocked(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.items = nil
	s.promo = nil
	s.method = delivery.Default
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	var promo *pricing.Promo
	if s.promo != nil {
		p := *s.promo
		promo = &p
	}
	return Snapshot{Items: s.cloneItems(), Promo: promo, Method: s.method}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Summary recomputes every derived figure from the current state
func (s *Store) Summary() Summary {
	return Summarize(s.Snapshot())
}

// BeginCheckout freezes the cart for a submission and returns its state.
// Item mutations fail with ErrCheckoutInProgress until the checkout is
// completed or aborted.
func (s *Store) BeginCheckout() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return Snapshot{}, ErrCheckoutInProgress
	}
	s.checkingOut = true
	return s.snapshotLocked(), nil
}

// CompleteCheckout clears the cart and releases the checkout lock. When the
// key cannot be deleted an empty list is written instead. The in-memory cart
// is emptied even if both writes fail, so a submitted cart is never
// submitted again from this Store.
func (s *Store) CompleteCheckout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkingOut = false
	err := s.kv.Delete(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("failed to delete submitted cart, writing empty list", zap.Error(err))
		if setErr := s.kv.Set(ctx, StorageKey, "[]"); setErr == nil {
			err = nil
		}
	}

	s.items = nil
	s.promo = nil
	s.method = delivery.Default
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// InCheckout reports whether a submission holds the checkout lock
func (s *Store) InCheckout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkingOut
}

// AbortCheckout releases the checkout lock and keeps the cart as it was
func (s *Store) AbortCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkingOut = false
}
