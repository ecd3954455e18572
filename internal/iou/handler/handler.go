package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ria/internal/iou/models"
	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/httputil"
	"ria/pkg/requestcontext"
)

const maxAvailableLimit = 500

// Service defines the IOU operations exposed over HTTP.
type Service interface {
	Issue(ctx context.Context, issuerID id.ParticipantID, draft models.Draft, riskScore *int) (*models.IOU, error)
	IssueAssessed(ctx context.Context, issuerID id.ParticipantID, draft models.Draft) (*models.IOU, error)
	AssessRisk(ctx context.Context, issuerID id.ParticipantID, draft models.Draft) (int, error)
	EnhanceDescription(ctx context.Context, callerID id.ParticipantID, description string) (string, error)
	Accept(ctx context.Context, iouID id.IOUID, accepterID id.ParticipantID) (*models.IOU, error)
	AssessTrust(ctx context.Context, iouID id.IOUID, assessorID id.ParticipantID) (*models.IOU, error)
	Fulfill(ctx context.Context, iouID id.IOUID, callerID id.ParticipantID) (*models.IOU, error)
	Get(ctx context.Context, iouID id.IOUID) (*models.IOU, error)
	List(ctx context.Context, filter models.Filter) ([]*models.IOU, error)
	ListAvailable(ctx context.Context, query string, limit int) ([]*models.IOU, error)
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

// RegisterPublic mounts read-only routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/ious", h.HandleList)
	r.Get("/ious/available", h.HandleListAvailable)
	r.Get("/ious/{id}", h.HandleGet)
}

// Register mounts routes that act on behalf of the authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ious", h.HandleIssue)
	r.Post("/ious/assess", h.HandleAssess)
	r.Post("/ious/enhance", h.HandleEnhance)
	r.Post("/ious/{id}/accept", h.HandleAccept)
	r.Post("/ious/{id}/trust", h.HandleAssessTrust)
	r.Post("/ious/{id}/fulfill", h.HandleFulfill)
}

// HandleIssue issues an IOU. When the body carries no risk_score the score
// is obtained from the scoring gateway first.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	issuerID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var iou *models.IOU
	if req.RiskScore != nil {
		iou, err = h.service.Issue(ctx, issuerID, req.Draft(), req.RiskScore)
	} else {
		iou, err = h.service.IssueAssessed(ctx, issuerID, req.Draft())
	}
	if err != nil {
		h.logger.WarnContext(ctx, "failed to issue iou",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.ToResponse(iou))
}

func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	issuerID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.AssessRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	score, err := h.service.AssessRisk(ctx, issuerID, req.Draft())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to assess iou draft",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.AssessResponse{RiskScore: score})
}

func (h *Handler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	callerID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.EnhanceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	enhanced, err := h.service.EnhanceDescription(ctx, callerID, req.Description)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to enhance description",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.EnhanceResponse{Description: enhanced})
}

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accept", h.service.Accept)
}

func (h *Handler) HandleAssessTrust(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "assess trust", h.service.AssessTrust)
}

func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "fulfill", h.service.Fulfill)
}

// transition runs a caller-scoped operation on the IOU named in the path.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, operation string,
	fn func(context.Context, id.IOUID, id.ParticipantID) (*models.IOU, error),
) {
	ctx := r.Context()
	callerID, err := httputil.RequireParticipantID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	iouID, err := id.ParseIOUID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	iou, err := fn(ctx, iouID, callerID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to "+operation+" iou",
			"request_id", requestcontext.RequestID(ctx),
			"iou_id", iouID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(iou))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	iouID, err := id.ParseIOUID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	iou, err := h.service.Get(ctx, iouID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(iou))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ious, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list ious",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListResponse{IOUs: models.ToResponses(ious)})
}

func (h *Handler) HandleListAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxAvailableLimit {
			httputil.WriteError(w, dErrors.Validation("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	ious, err := h.service.ListAvailable(ctx, r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list available ious",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListResponse{IOUs: models.ToResponses(ious)})
}

func parseFilter(r *http.Request) (models.Filter, error) {
	var filter models.Filter
	q := r.URL.Query()
	if raw := q.Get("issuer"); raw != "" {
		issuer, err := id.ParseParticipantID(raw)
		if err != nil {
			return filter, err
		}
		filter.IssuerID = &issuer
	}
	if raw := q.Get("recipient"); raw != "" {
		recipient, err := id.ParseParticipantID(raw)
		if err != nil {
			return filter, err
		}
		filter.RecipientID = &recipient
	}
	if raw := q.Get("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			return filter, dErrors.Validation("unknown status: " + raw)
		}
		filter.Status = &status
	}
	return filter, nil
}
