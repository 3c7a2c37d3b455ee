package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/example/ecolife-shop/internal/infrastructure/store"
	"go.uber.org/zap"
)

const (
	totalKey       = "ledger:totalCO2Saved"
	orderKeyPrefix = "ledger:order:"
)

var ErrInvalidAmount = errors.New("amount must be a non-negative number")

// Ledger is the authoritative shared CO2 total. Increments carrying an
// order id are applied at most once per id.
type Ledger struct {
	mu     sync.Mutex
	kv     store.KeyValueStore
	seed   float64
	logger *zap.Logger
}

func New(kv store.KeyValueStore, seed float64, logger *zap.Logger) *Ledger {
	return &Ledger{kv: kv, seed: seed, logger: logger.Named("ledger")}
}

func (l *Ledger) Total(ctx context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total(ctx)
}

func (l *Ledger) total(ctx context.Context) (float64, error) {
	raw, ok, err := l.kv.Get(ctx, totalKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read total: %w", err)
	}
	if !ok {
		return l.seed, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.logger.Warn("stored total is unparsable, using seed", zap.String("raw", raw))
		return l.seed, nil
	}
	return v, nil
}

// Add applies amount and returns the new total. A repeated orderID returns
// the current total with applied=false.
func (l *Ledger) Add(ctx context.Context, amount float64, orderID string) (total float64, applied bool, err error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.total(ctx)
	if err != nil {
		return 0, false, err
	}

	if orderID != "" {
		_, seen, err := l.kv.Get(ctx, orderKeyPrefix+orderID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to check order: %w", err)
		}
		if seen {
			l.logger.Info("duplicate increment ignored", zap.String("order_id", orderID))
			return current, false, nil
		}
	}

	next := current + amount
	if err := l.kv.Set(ctx, totalKey, strconv.FormatFloat(next, 'f', -1, 64)); err != nil {
		return 0, false, fmt.Errorf("failed to write total: %w", err)
	}
	if orderID != "" {
		if err := l.kv.Set(ctx, orderKeyPrefix+orderID, strconv.FormatFloat(amount, 'f', -1, 64)); err != nil {
			l.logger.Error("failed to record order", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	l.logger.Info("increment applied", zap.String("order_id", orderID), zap.Float64("amount", amount), zap.Float64("total", next))
	return next, true, nil
}

// Reset sets the total back to the seed. Recorded order ids are kept, so a
// replayed order still does not count twice.
func (l *Ledger) Reset(ctx context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.kv.Set(ctx, totalKey, strconv.FormatFloat(l.seed, 'f', -1, 64)); err != nil {
		return 0, fmt.Errorf("failed to reset total: %w", err)
	}
	l.logger.Info("total reset", zap.Float64("total", l.seed))
	return l.seed, nil
}
