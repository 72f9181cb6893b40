package ads

import (
	"context"
	"sync"
	"time"

	"github.com/hatbajar/marketplace/internal/pkg/ctxlog"
	"github.com/hatbajar/marketplace/internal/pkg/metrics"
)

// Expirer sweeps approved advertisements past their expiry on an interval.
type Expirer struct {
	repo     Repository
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewExpirer creates an expiry worker.
func NewExpirer(repo Repository, interval time.Duration) *Expirer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Expirer{
		repo:     repo,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. One sweep runs immediately.
func (e *Expirer) Start(ctx context.Context) {
	go func() {
		defer close(e.done)

		e.sweep(ctx)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.sweep(ctx)
			case <-e.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (e *Expirer) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
	<-e.done
}

func (e *Expirer) sweep(ctx context.Context) {
	swept, err := e.repo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		ctxlog.FromContext(ctx).Error("ad expiry sweep failed", "error", err)
		return
	}
	if swept > 0 {
		metrics.AdsExpired.Add(float64(swept))
		ctxlog.FromContext(ctx).Info("expired advertisements", "count", swept)
	}
}
