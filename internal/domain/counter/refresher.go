package counter

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

var ErrInvalidInterval = errors.New("refresh interval must be positive")

// Refresher reloads the counter on a fixed interval so the value served
// follows increments made by other instances.
type Refresher struct {
	scheduler *gocron.Scheduler
	counter   *Counter
	logger    *zap.Logger
}

func NewRefresher(c *Counter, interval time.Duration, logger *zap.Logger) (*Refresher, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	r := &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		counter:   c,
		logger:    logger.Named("counter_refresh"),
	}
	r.scheduler.SingletonModeAll()

	if _, err := r.scheduler.Every(interval).WaitForSchedule().Do(r.refresh); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.counter.timeout*2)
	defer cancel()

	value := r.counter.Load(ctx)
	r.logger.Debug("counter refreshed", zap.Float64("value", value))
}

func (r *Refresher) Start() {
	r.scheduler.StartAsync()
}

func (r *Refresher) Stop() {
	r.scheduler.Stop()
}
