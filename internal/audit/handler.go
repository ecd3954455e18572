package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/httputil"
	"ria/pkg/requestcontext"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// Handler exposes the caller's own event history.
type Handler struct {
	publisher *Publisher
	logger    *slog.Logger
}

func NewHandler(p *Publisher, logger *slog.Logger) *Handler {
	return &Handler{publisher: p, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/me/activity", h.HandleActivity)
}

func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participantID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxActivityLimit {
			httputil.WriteError(w, dErrors.Validation("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	events, err := h.publisher.List(ctx, participantID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list activity",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activity"))
		return
	}
	if events == nil {
		events = []Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
