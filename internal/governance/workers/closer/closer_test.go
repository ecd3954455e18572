package closer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ria/internal/governance/models"
	"ria/internal/governance/service"
	"ria/internal/governance/store"
	id "ria/pkg/domain"
	"ria/pkg/requestcontext"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWorkerRunOnce_Integration(t *testing.T) {
	submittedAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), submittedAt)

	svc, err := service.New(store.New(), service.WithLogger(discard))
	require.NoError(t, err)

	p, err := svc.SubmitProposal(ctx, id.NewParticipantID(), models.Draft{
		Title:   "Repaint the mural",
		EndDate: submittedAt.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	for range 3 {
		_, err = svc.SubmitVote(ctx, p.ID, id.NewParticipantID(), models.DirectionFor)
		require.NoError(t, err)
	}

	now := submittedAt.Add(time.Hour)
	w, err := New(svc, WithLogger(discard), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "voting still open")

	now = p.EndDate
	n, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPassed, got.Status)

	n, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type stubCloser struct {
	calls atomic.Int32
	err   error
}

func (s *stubCloser) CloseDue(context.Context, time.Time) (int, error) {
	s.calls.Add(1)
	return 0, s.err
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	c := &stubCloser{err: errors.New("database unavailable")}
	w, err := New(c, WithInterval(5*time.Millisecond), WithLogger(discard))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestNewRequiresCloser(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
