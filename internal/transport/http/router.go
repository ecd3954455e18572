// Package httptransport assembles the HTTP surface. Handlers delegate to
// domain services and stay free of business logic.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"ria/internal/audit"
	govHandler "ria/internal/governance/handler"
	iouHandler "ria/internal/iou/handler"
	"ria/internal/platform/health"
	"ria/internal/ratelimit"
	repHandler "ria/internal/reputation/handler"
	"ria/pkg/platform/middleware/auth"
	"ria/pkg/platform/middleware/metadata"
	"ria/pkg/platform/middleware/request"
	"ria/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// Deps are the collaborators the router mounts. Metrics, MetricsHandler and
// RateLimit are optional.
type Deps struct {
	Logger         *slog.Logger
	Authenticator  auth.Authenticator
	TrustedProxies []netip.Prefix
	Metrics        *request.Metrics
	MetricsHandler http.Handler
	Health         *health.Handler
	Reputation     *repHandler.Handler
	IOUs           *iouHandler.Handler
	Governance     *govHandler.Handler
	Activity       *audit.Handler
	RateLimit      *ratelimit.Middleware
}

// NewRouter wires every endpoint behind the shared middleware stack. Reads
// are public; anything acting on behalf of a participant sits behind bearer
// authentication, and the caller's participant record is created on first
// contact.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: d.TrustedProxies}).Handler)
	r.Use(request.Logger(d.Logger))
	r.Use(request.LatencyMiddleware(d.Metrics))
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.BodyLimit(maxBodyBytes))
	r.Use(request.ContentTypeJSON)
	r.Use(requesttime.Middleware)

	d.Health.Register(r)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if d.RateLimit != nil {
			r.Use(d.RateLimit.ByClientIP(ratelimit.ClassRead))
		}
		d.Reputation.RegisterPublic(r)
		d.IOUs.RegisterPublic(r)
		d.Governance.RegisterPublic(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(d.Authenticator, d.Logger))
		if d.RateLimit != nil {
			r.Use(d.RateLimit.ByParticipant(ratelimit.ClassWrite))
		}
		r.Use(d.Reputation.EnsureParticipant)

		d.Reputation.Register(r)
		d.IOUs.Register(r)
		d.Governance.Register(r)
		d.Activity.Register(r)
	})

	return r
}
