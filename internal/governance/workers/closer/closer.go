package closer

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Closer decides every active proposal whose voting window has ended.
type Closer interface {
	CloseDue(ctx context.Context, now time.Time) (int, error)
}

// Worker closes ended proposals on a fixed interval.
type Worker struct {
	closer   Closer
	interval time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

type Option func(*Worker)

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

func New(closer Closer, opts ...Option) (*Worker, error) {
	if closer == nil {
		return nil, fmt.Errorf("closer is required")
	}
	w := &Worker{
		closer:   closer,
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

// Start runs an immediate pass, then one per tick until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.ErrorContext(ctx, "proposal close pass failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "proposal close pass failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.clock().UTC()
	closed, err := w.closer.CloseDue(ctx, now)
	if closed > 0 {
		w.logger.InfoContext(ctx, "closed ended proposals", "count", closed)
	}
	if err != nil {
		return closed, fmt.Errorf("close due proposals: %w", err)
	}
	return closed, nil
}
