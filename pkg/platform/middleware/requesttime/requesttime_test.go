package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ria/pkg/requestcontext"
)

func TestNewPinsOneInstantPerRequest(t *testing.T) {
	ticks := []time.Time{
		time.Date(2026, 5, 1, 9, 0, 0, 123456789, time.FixedZone("CEST", 2*60*60)),
		time.Date(2026, 5, 1, 9, 0, 5, 0, time.UTC),
	}
	calls := 0
	clock := func() time.Time {
		t := ticks[calls]
		calls++
		return t
	}

	var reads []time.Time
	handler := New(clock)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		reads = append(reads, requestcontext.Now(r.Context()), requestcontext.Now(r.Context()))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ious", nil))

	assert.Equal(t, 1, calls, "clock read once per request")
	assert.Equal(t, reads[0], reads[1])
	assert.Equal(t, time.UTC, reads[0].Location())
	assert.Equal(t, time.Date(2026, 5, 1, 7, 0, 0, 123456000, time.UTC), reads[0], "UTC, microsecond precision")
}

func TestMiddlewareUsesWallClock(t *testing.T) {
	var pinned time.Time
	Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		pinned = requestcontext.Now(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/proposals", nil))

	assert.WithinDuration(t, time.Now(), pinned, time.Second)
}
