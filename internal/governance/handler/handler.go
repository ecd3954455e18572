package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ria/internal/governance/models"
	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/httputil"
	"ria/pkg/requestcontext"
)

// Service defines the governance operations exposed over HTTP.
type Service interface {
	SubmitProposal(ctx context.Context, proposerID id.ParticipantID, draft models.Draft) (*models.Proposal, error)
	SubmitVote(ctx context.Context, proposalID id.ProposalID, voterID id.ParticipantID, direction models.Direction) (*models.Proposal, error)
	Get(ctx context.Context, proposalID id.ProposalID) (*models.Proposal, error)
	List(ctx context.Context, status *models.Status) ([]*models.Proposal, error)
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

func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/proposals", h.HandleList)
	r.Get("/proposals/{id}", h.HandleGet)
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals", h.HandleSubmit)
	r.Post("/proposals/{id}/votes", h.HandleVote)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	proposerID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.SubmitProposalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.SubmitProposal(ctx, proposerID, req.Draft())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to submit proposal",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.ToResponse(p))
}

// HandleVote records or replaces the caller's vote and returns the updated tally.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	voterID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.VoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.SubmitVote(ctx, proposalID, voterID, req.Direction)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record vote",
			"request_id", requestID,
			"proposal_id", proposalID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(p))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Get(ctx, proposalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(p))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var status *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := models.ParseStatus(raw)
		if !ok {
			httputil.WriteError(w, dErrors.Validation("unknown status: "+raw))
			return
		}
		status = &parsed
	}

	proposals, err := h.service.List(ctx, status)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list proposals",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToListResponse(proposals))
}
