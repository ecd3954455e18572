package expiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Sweeper expires every IOU that is overdue at now and replays settlements
// still pending on terminal IOUs. Both report how many IOUs they moved.
type Sweeper interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
	SettlePending(ctx context.Context, now time.Time) (int, error)
}

// Worker periodically expires overdue IOUs and retries failed settlements.
// Sweeps are idempotent, so any number of replicas may run one.
type Worker struct {
	sweeper  Sweeper
	interval time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

type Option func(*Worker)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.clock = clock
		}
	}
}

func New(sweeper Sweeper, opts ...Option) (*Worker, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper is required")
	}
	w := &Worker{
		sweeper:  sweeper,
		interval: time.Minute,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start sweeps once immediately, so settlements left pending by a previous
// process are retried on boot, then on every tick until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.ErrorContext(ctx, "iou expiry sweep failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "iou expiry sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep at the worker's current time and returns
// the number of IOUs expired. Pending settlements are retried even when the
// expiry pass fails.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.clock().UTC()
	expired, expireErr := w.sweeper.ExpireDue(ctx, now)
	if expired > 0 {
		w.logger.InfoContext(ctx, "expired overdue ious",
			"count", expired,
			"swept_at", now,
		)
	}
	if expireErr != nil {
		expireErr = fmt.Errorf("expire due ious: %w", expireErr)
	}

	settled, settleErr := w.sweeper.SettlePending(ctx, now)
	if settled > 0 {
		w.logger.InfoContext(ctx, "settled pending ious",
			"count", settled,
			"swept_at", now,
		)
	}
	if settleErr != nil {
		settleErr = fmt.Errorf("settle pending ious: %w", settleErr)
	}
	return expired, errors.Join(expireErr, settleErr)
}
