// Package auth guards participant-scoped routes with a bearer token.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/httputil"
	"ria/pkg/requestcontext"
)

// Authenticator resolves a raw bearer token to the participant it was issued
// for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (id.ParticipantID, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (id.ParticipantID, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (id.ParticipantID, error) {
	return f(ctx, token)
}

// RequireAuth rejects requests without a valid bearer token with an opaque
// 401 and stores the authenticated participant in the request context.
func RequireAuth(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r)
			if !ok {
				reject(ctx, w, logger, "missing bearer token", nil)
				return
			}
			participantID, err := authn.Authenticate(ctx, token)
			if err == nil && participantID.IsNil() {
				err = dErrors.Unauthenticated()
			}
			if err != nil {
				reject(ctx, w, logger, "token rejected", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithParticipantID(ctx, participantID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, reason string, err error) {
	attrs := []any{"request_id", requestcontext.RequestID(ctx), "reason", reason}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	logger.WarnContext(ctx, "unauthenticated request", attrs...)
	httputil.WriteError(w, dErrors.Unauthenticated())
}
