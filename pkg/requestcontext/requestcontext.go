// Package requestcontext carries request-scoped values such as the request
// ID, caller identity and pinned clock through context.Context.
package requestcontext

import (
	"context"
	"time"

	id "ria/pkg/domain"
)

type (
	requestIDKey     struct{}
	participantIDKey struct{}
	clientIPKey      struct{}
	clientKey        struct{}
	nowKey           struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithParticipantID stores the authenticated participant.
func WithParticipantID(ctx context.Context, participantID id.ParticipantID) context.Context {
	return context.WithValue(ctx, participantIDKey{}, participantID)
}

// ParticipantID returns the authenticated participant, or ok=false when the
// request is unauthenticated.
func ParticipantID(ctx context.Context) (id.ParticipantID, bool) {
	v, ok := ctx.Value(participantIDKey{}).(id.ParticipantID)
	if !ok || v.IsNil() {
		return id.ParticipantID{}, false
	}
	return v, true
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

// WithClient stores a display label for the caller's user agent.
func WithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

func Client(ctx context.Context) string {
	v, _ := ctx.Value(clientKey{}).(string)
	return v
}

// WithTime pins the request clock. Services read time through Now so a whole
// operation observes a single timestamp and tests stay deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, nowKey{}, t)
}

// Now returns the pinned request time, or time.Now when none is set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(nowKey{}).(time.Time); ok && !t.IsZero() {
		return t
	}
	return time.Now()
}
