// Package scheduler runs background maintenance next to the HTTP server.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/store"
)

// Janitor periodically compacts the store: empty habit-log days and expired
// token bookkeeping are removed.
type Janitor struct {
	store         store.Compactor
	logger        logger.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	doneCh        chan struct{}
	manualTrigger chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
}

// NewJanitor creates a janitor. An interval <= 0 disables the periodic run;
// Collect and Trigger still work.
func NewJanitor(s store.Compactor, log logger.Logger, interval time.Duration) *Janitor {
	return &Janitor{
		store:         s,
		logger:        log,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		manualTrigger: make(chan struct{}, 1),
	}
}

// Start runs one collection and then the periodic loop in a goroutine.
func (j *Janitor) Start(ctx context.Context) error {
	if _, err := j.Collect(ctx); err != nil {
		j.logger.Warn("initial compaction failed", logger.Error(err))
	}

	j.started.Store(true)

	var tick <-chan time.Time
	var ticker *time.Ticker
	if j.interval > 0 {
		ticker = time.NewTicker(j.interval)
		tick = ticker.C
	}

	go func() {
		defer close(j.doneCh)
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				j.run(ctx)
			case <-j.manualTrigger:
				j.logger.Info("manual compaction triggered")
				j.run(ctx)
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Trigger asks the running loop for a compaction. Extra triggers while one
// is pending are dropped.
func (j *Janitor) Trigger() {
	select {
	case j.manualTrigger <- struct{}{}:
	default:
	}
}

// Stop ends the loop and waits for it. Calling Stop without Start, or more
// than once, is fine.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
	if j.started.Load() {
		<-j.doneCh
	}
}

func (j *Janitor) run(ctx context.Context) {
	if _, err := j.Collect(ctx); err != nil {
		j.logger.Error("compaction failed", logger.Error(err))
	}
}

// Collect compacts once and returns how many records were removed.
func (j *Janitor) Collect(ctx context.Context) (int, error) {
	start := j.now()
	removed, err := j.store.Compact(ctx, start)
	if err != nil {
		return removed, err
	}

	if removed > 0 {
		j.logger.Info("compaction completed",
			logger.Int("removed", removed),
			logger.Duration("took", j.now().Sub(start)))
	} else {
		j.logger.Debug("nothing to compact")
	}
	return removed, nil
}
