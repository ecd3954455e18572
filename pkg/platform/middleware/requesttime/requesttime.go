// Package requesttime pins a single "now" per HTTP request so every domain
// timestamp written while serving it agrees.
package requesttime

import (
	"net/http"
	"time"

	"ria/pkg/requestcontext"
)

// Middleware pins the wall clock. Handlers and services read it back with
// requestcontext.Now.
var Middleware = New(time.Now)

// New pins clock() in UTC, truncated to the microsecond precision of
// Postgres timestamptz so memory and Postgres stores return equal values.
func New(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := clock().UTC().Truncate(time.Microsecond)
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), now)))
		})
	}
}
