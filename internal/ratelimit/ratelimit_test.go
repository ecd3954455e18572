package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ria/pkg/domain"
	"ria/pkg/requestcontext"
	"ria/pkg/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestInMemoryStoreSlidingWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewInMemoryStore()
	store.clock = func() time.Time { return now }
	limit := Limit{Requests: 3, Window: time.Minute}
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		res, err := store.Allow(ctx, "k", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, want, res.Remaining)
		now = now.Add(10 * time.Second)
	}

	res, err := store.Allow(ctx, "k", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30, res.RetryAfter, "oldest hit leaves the window 60s after it was recorded")

	other, err := store.Allow(ctx, "other", limit)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")

	now = now.Add(31 * time.Second)
	res, err = store.Allow(ctx, "k", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "oldest hit evicted")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, store.Sweep(time.Minute))
}

func TestInMemoryStoreConcurrentHits(t *testing.T) {
	store := NewInMemoryStore()
	limit := Limit{Requests: 10, Window: time.Hour}

	result := testutil.RunConcurrent(40, func(int) error {
		res, err := store.Allow(context.Background(), "shared", limit)
		if err != nil {
			return err
		}
		if !res.Allowed {
			return errors.New("limited")
		}
		return nil
	})
	assert.Equal(t, int32(10), result.Successes)
	assert.Equal(t, int32(30), result.Errors)
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, Limit) (*Result, error) {
	return nil, errors.New("redis down")
}

func serve(h http.Handler, ctx context.Context) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ious", nil).WithContext(ctx)
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	limits := map[Class]Limit{ClassWrite: {Requests: 1, Window: time.Minute}}

	t.Run("participant quota", func(t *testing.T) {
		mw := New(NewInMemoryStore(), limits, discard)
		h := mw.ByParticipant(ClassWrite)(ok)
		alice := requestcontext.WithParticipantID(context.Background(), id.NewParticipantID())
		bob := requestcontext.WithParticipantID(context.Background(), id.NewParticipantID())

		rec := serve(h, alice)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = serve(h, alice)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")

		assert.Equal(t, http.StatusNoContent, serve(h, bob).Code)
	})

	t.Run("client ip quota", func(t *testing.T) {
		mw := New(NewInMemoryStore(), map[Class]Limit{ClassRead: {Requests: 1, Window: time.Minute}}, discard)
		h := mw.ByClientIP(ClassRead)(ok)
		ctx := requestcontext.WithClientIP(context.Background(), "203.0.113.7")

		assert.Equal(t, http.StatusNoContent, serve(h, ctx).Code)
		assert.Equal(t, http.StatusTooManyRequests, serve(h, ctx).Code)
	})

	t.Run("unconfigured class passes through", func(t *testing.T) {
		h := New(NewInMemoryStore(), limits, discard).ByClientIP(ClassRead)(ok)
		for range 5 {
			assert.Equal(t, http.StatusNoContent, serve(h, context.Background()).Code)
		}
	})

	t.Run("store failure fails open", func(t *testing.T) {
		h := New(failingStore{}, limits, discard).ByParticipant(ClassWrite)(ok)
		assert.Equal(t, http.StatusNoContent, serve(h, context.Background()).Code)
	})
}
