package cart

import (
	"errors"
	"time"

	"github.com/example/ecolife-shop/internal/metrics"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

var ErrInvalidSweepInterval = errors.New("sweep interval must be positive")

// Sweeper periodically drops idle carts from Sessions and reports how many
// remain open.
type Sweeper struct {
	scheduler *gocron.Scheduler
	sessions  *Sessions
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewSweeper(sessions *Sessions, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) (*Sweeper, error) {
	if interval <= 0 {
		return nil, ErrInvalidSweepInterval
	}

	sw := &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		metrics:   m,
		logger:    logger.Named("cart_sweep"),
	}
	sw.scheduler.SingletonModeAll()

	if _, err := sw.scheduler.Every(interval).WaitForSchedule().Do(sw.sweep); err != nil {
		return nil, err
	}
	return sw, nil
}

func (sw *Sweeper) sweep() {
	evicted := sw.sessions.Sweep()
	open := sw.sessions.Len()
	if sw.metrics != nil {
		sw.metrics.OpenCarts.Set(float64(open))
	}
	if evicted > 0 {
		sw.logger.Info("idle carts evicted", zap.Int("evicted", evicted), zap.Int("open", open))
	}
}

func (sw *Sweeper) Start() {
	sw.scheduler.StartAsync()
}

func (sw *Sweeper) Stop() {
	sw.scheduler.Stop()
}
