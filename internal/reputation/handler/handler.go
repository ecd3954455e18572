package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ria/internal/reputation/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/httputil"
	"ria/pkg/requestcontext"
)

// Service defines the reputation operations exposed over HTTP.
type Service interface {
	EnsureParticipant(ctx context.Context, participantID id.ParticipantID, displayName string) (*models.Participant, error)
	Profile(ctx context.Context, participantID id.ParticipantID) (*models.Profile, error)
	GetReputation(ctx context.Context, participantID id.ParticipantID) (models.Reputation, error)
	AddCredential(ctx context.Context, participantID id.ParticipantID, req *models.AddCredentialRequest) (*models.Profile, error)
	Insight(ctx context.Context, participantID id.ParticipantID) (*models.Insight, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// RegisterPublic mounts routes that do not need an authenticated caller.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/participants/{id}/reputation", h.HandleGetReputation)
}

// Register mounts routes for the authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.HandleMe)
	r.Post("/me/credentials", h.HandleAddCredential)
	r.Get("/me/insight", h.HandleInsight)
}

// EnsureParticipant creates the authenticated caller's participant record on
// first contact so every later operation can assume it exists.
func (h *Handler) EnsureParticipant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		participantID, ok := requestcontext.ParticipantID(ctx)
		if ok {
			if _, err := h.service.EnsureParticipant(ctx, participantID, ""); err != nil {
				h.logger.ErrorContext(ctx, "failed to ensure participant",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) HandleGetReputation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	participantID, err := id.ParseParticipantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rep, err := h.service.GetReputation(ctx, participantID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get reputation",
			"request_id", requestID,
			"participant_id", participantID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rep)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participantID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	profile, err := h.service.Profile(ctx, participantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load profile",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleAddCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	participantID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.AddCredentialRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.AddCredential(ctx, participantID, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to add credential",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, profile)
}

func (h *Handler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participantID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	insight, err := h.service.Insight(ctx, participantID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to produce insight",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, insight)
}
