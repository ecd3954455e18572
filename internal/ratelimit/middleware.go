package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"ria/internal/platform/privacy"
	"ria/pkg/platform/httputil"
	"ria/pkg/requestcontext"
)

// Store records a request against key and reports whether it is allowed.
type Store interface {
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

type exceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"`
}

type Middleware struct {
	store  Store
	limits map[Class]Limit
	logger *slog.Logger
}

// New returns middleware enforcing limits. A class without a positive limit
// is not limited.
func New(store Store, limits map[Class]Limit, logger *slog.Logger) *Middleware {
	return &Middleware{store: store, limits: limits, logger: logger}
}

// ByClientIP limits requests per client IP.
func (m *Middleware) ByClientIP(class Class) func(http.Handler) http.Handler {
	return m.limit(class, func(r *http.Request) string {
		return "ip:" + requestcontext.ClientIP(r.Context())
	})
}

// ByParticipant limits requests per authenticated participant, falling back
// to the client IP when no participant is present.
func (m *Middleware) ByParticipant(class Class) func(http.Handler) http.Handler {
	return m.limit(class, func(r *http.Request) string {
		if participantID, ok := requestcontext.ParticipantID(r.Context()); ok {
			return "participant:" + participantID.String()
		}
		return "ip:" + requestcontext.ClientIP(r.Context())
	})
}

func (m *Middleware) limit(class Class, keyOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limit, ok := m.limits[class]
		if !ok || limit.Requests <= 0 || limit.Window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			result, err := m.store.Allow(ctx, string(class)+":"+keyOf(r), limit)
			if err != nil {
				// Fail open.
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"class", string(class),
					"ip_prefix", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", string(class),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
					Error:            "rate_limit_exceeded",
					ErrorDescription: "Too many requests. Please try again later.",
					RetryAfter:       result.RetryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
