package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"ria/internal/audit"
	"ria/internal/iou/metrics"
	"ria/internal/iou/models"
	"ria/internal/iou/ports"
	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/sentinel"
	"ria/pkg/requestcontext"
)

// Store persists IOUs.
// Error Contract:
// - FindByID and Execute return sentinel.ErrNotFound for unknown IOUs
// - Create returns sentinel.ErrConflict when the id already exists
// - validate errors passed to Execute are returned unchanged
type Store interface {
	Create(ctx context.Context, iou *models.IOU) error
	FindByID(ctx context.Context, iouID id.IOUID) (*models.IOU, error)
	List(ctx context.Context, filter models.Filter) ([]*models.IOU, error)
	ListAvailable(ctx context.Context, query string, limit int) ([]*models.IOU, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.IOU, error)
	ListUnsettled(ctx context.Context, limit int) ([]*models.IOU, error)
	Execute(ctx context.Context, iouID id.IOUID, validate func(*models.IOU) error, mutate func(*models.IOU)) (*models.IOU, error)
}

const (
	defaultAvailableLimit = 100
	defaultSweepBatch     = 500
)

// errNotDue short-circuits Execute when Expire has nothing to do.
var errNotDue = errors.New("iou not due for expiry")

type Option func(*Service)

// Service owns the IOU lifecycle. Scores are fetched before any IOU is
// locked; only the final write happens inside Execute.
type Service struct {
	store      Store
	scorer     ports.ScoringPort
	reputation ports.ReputationPort
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	sweepBatch int
}

func New(store Store, reputation ports.ReputationPort, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("iou store is required")
	}
	if reputation == nil {
		return nil, errors.New("reputation port is required")
	}
	svc := &Service{
		store:      store,
		reputation: reputation,
		logger:     slog.Default(),
		sweepBatch: defaultSweepBatch,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// WithScorer enables assessment and enhancement. Without a scorer those
// operations report the scoring service as unavailable.
func WithScorer(scorer ports.ScoringPort) Option {
	return func(s *Service) {
		s.scorer = scorer
	}
}

func WithAuditor(auditor *audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSweepBatch caps how many IOUs one ExpireDue or SettlePending call
// processes.
func WithSweepBatch(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sweepBatch = n
		}
	}
}

// Issue creates an outstanding IOU. The risk score must be supplied; Issue
// never fabricates one.
func (s *Service) Issue(ctx context.Context, issuerID id.ParticipantID, draft models.Draft, riskScore *int) (*models.IOU, error) {
	iou, err := s.issue(ctx, issuerID, draft, riskScore, "supplied")
	if err != nil {
		s.reject("issue", err)
		return nil, err
	}
	return iou, nil
}

// IssueAssessed obtains the risk score from the scoring gateway and then
// issues the IOU with it.
func (s *Service) IssueAssessed(ctx context.Context, issuerID id.ParticipantID, draft models.Draft) (*models.IOU, error) {
	score, err := s.AssessRisk(ctx, issuerID, draft)
	if err != nil {
		return nil, err
	}
	iou, err := s.issue(ctx, issuerID, draft, &score, "assessed")
	if err != nil {
		s.reject("issue", err)
		return nil, err
	}
	return iou, nil
}

func (s *Service) issue(ctx context.Context, issuerID id.ParticipantID, draft models.Draft, riskScore *int, source string) (*models.IOU, error) {
	if issuerID.IsNil() {
		return nil, dErrors.Unauthenticated()
	}
	now := requestcontext.Now(ctx)
	draft.Description = strings.TrimSpace(draft.Description)
	if err := validateDraft(issuerID, draft, now); err != nil {
		return nil, err
	}
	if riskScore == nil {
		return nil, dErrors.Validation("risk score is required")
	}
	if *riskScore < models.MinScore || *riskScore > models.MaxScore {
		return nil, dErrors.Validation("risk score must be between 0 and 100")
	}

	score := *riskScore
	iou := &models.IOU{
		ID:          id.NewIOUID(),
		Kind:        draft.Kind,
		Description: draft.Description,
		Value:       draft.Value,
		IssuerID:    issuerID,
		RecipientID: draft.RecipientID,
		DueDate:     draft.DueDate.UTC(),
		Status:      models.StatusOutstanding,
		RiskScore:   &score,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if err := s.store.Create(ctx, iou); err != nil {
		return nil, s.translate(err, "failed to issue iou")
	}

	s.metrics.IncIssued(source)
	s.logger.InfoContext(ctx, "iou issued",
		"iou_id", iou.ID.String(),
		"issuer_id", issuerID.String(),
		"risk_score", score,
		"risk_source", source,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, audit.ActionIOUIssued, issuerID, iou, map[string]string{
		"risk_score":  strconv.Itoa(score),
		"risk_source": source,
	})
	return iou, nil
}

// AssessRisk scores a draft on behalf of its would-be issuer without
// creating anything.
func (s *Service) AssessRisk(ctx context.Context, issuerID id.ParticipantID, draft models.Draft) (int, error) {
	if issuerID.IsNil() {
		return 0, dErrors.Unauthenticated()
	}
	draft.Description = strings.TrimSpace(draft.Description)
	if err := validateDraft(issuerID, draft, requestcontext.Now(ctx)); err != nil {
		s.reject("assess_risk", err)
		return 0, err
	}
	if s.scorer == nil {
		return 0, dErrors.ScoringUnavailable(errors.New("scoring not configured"))
	}
	overall, err := s.reputation.Overall(ctx, issuerID)
	if err != nil {
		return 0, s.translate(err, "failed to read issuer reputation")
	}
	score, err := s.scorer.AssessRisk(ctx, draft, overall)
	if err != nil {
		s.reject("assess_risk", err)
		return 0, scoringError(err)
	}
	return score, nil
}

// EnhanceDescription asks the scoring oracle to rewrite a description.
func (s *Service) EnhanceDescription(ctx context.Context, callerID id.ParticipantID, description string) (string, error) {
	if callerID.IsNil() {
		return "", dErrors.Unauthenticated()
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return "", dErrors.Validation("description must not be blank")
	}
	if s.scorer == nil {
		return "", dErrors.ScoringUnavailable(errors.New("scoring not configured"))
	}
	enhanced, err := s.scorer.EnhanceDescription(ctx, description)
	if err != nil {
		s.reject("enhance", err)
		return "", scoringError(err)
	}
	return enhanced, nil
}

// Accept binds the accepter as recipient and moves the IOU to accepted.
// Of several concurrent accepters exactly one wins; the rest see
// invalid_state.
func (s *Service) Accept(ctx context.Context, iouID id.IOUID, accepterID id.ParticipantID) (*models.IOU, error) {
	if accepterID.IsNil() {
		return nil, dErrors.Unauthenticated()
	}
	now := requestcontext.Now(ctx)
	iou, err := s.store.Execute(ctx, iouID,
		func(i *models.IOU) error {
			if i.Status != models.StatusOutstanding {
				return dErrors.InvalidState("iou is not outstanding")
			}
			return checkCounterparty(i, accepterID)
		},
		func(i *models.IOU) {
			recipient := accepterID
			i.RecipientID = &recipient
			_ = i.Transition(models.StatusAccepted, now)
		})
	if err != nil {
		err = s.translate(err, "failed to accept iou")
		s.reject("accept", err)
		return nil, err
	}

	s.metrics.IncTransition(string(models.StatusAccepted))
	s.logger.InfoContext(ctx, "iou accepted",
		"iou_id", iouID.String(),
		"recipient_id", accepterID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, audit.ActionIOUAccepted, accepterID, iou, nil)
	return iou, nil
}

// AssessTrust attaches a recipient-side trust score to an outstanding IOU.
// The oracle is consulted before the IOU is locked, and the IOU is checked
// again before the score is written.
func (s *Service) AssessTrust(ctx context.Context, iouID id.IOUID, assessorID id.ParticipantID) (*models.IOU, error) {
	if assessorID.IsNil() {
		return nil, dErrors.Unauthenticated()
	}
	check := func(i *models.IOU) error {
		if i.Status != models.StatusOutstanding {
			return dErrors.InvalidState("iou is not outstanding")
		}
		return checkCounterparty(i, assessorID)
	}

	current, err := s.store.FindByID(ctx, iouID)
	if err != nil {
		return nil, s.translate(err, "failed to load iou")
	}
	if err := check(current); err != nil {
		s.reject("assess_trust", err)
		return nil, err
	}
	if s.scorer == nil {
		return nil, dErrors.ScoringUnavailable(errors.New("scoring not configured"))
	}
	overall, err := s.reputation.Overall(ctx, assessorID)
	if err != nil {
		return nil, s.translate(err, "failed to read recipient reputation")
	}
	score, err := s.scorer.AssessTrust(ctx, current, overall)
	if err != nil {
		s.reject("assess_trust", err)
		return nil, scoringError(err)
	}

	now := requestcontext.Now(ctx)
	iou, err := s.store.Execute(ctx, iouID, check, func(i *models.IOU) {
		trust := score
		i.TrustScore = &trust
		i.UpdatedAt = now
		i.Version++
	})
	if err != nil {
		err = s.translate(err, "failed to record trust score")
		s.reject("assess_trust", err)
		return nil, err
	}
	s.emitAudit(ctx, audit.ActionIOUTrustAssessed, assessorID, iou, map[string]string{
		"trust_score": strconv.Itoa(score),
	})
	return iou, nil
}

// Fulfill marks the IOU fulfilled. Only the issuer may fulfill, and the
// issuer's reputation is credited once.
func (s *Service) Fulfill(ctx context.Context, iouID id.IOUID, callerID id.ParticipantID) (*models.IOU, error) {
	if callerID.IsNil() {
		return nil, dErrors.Unauthenticated()
	}
	now := requestcontext.Now(ctx)
	iou, err := s.store.Execute(ctx, iouID,
		func(i *models.IOU) error {
			if i.IssuerID != callerID {
				return dErrors.Forbidden()
			}
			if !i.Status.CanTransitionTo(models.StatusFulfilled) {
				return dErrors.InvalidState(fmt.Sprintf("iou is already %s", i.Status))
			}
			return nil
		},
		func(i *models.IOU) {
			_ = i.Transition(models.StatusFulfilled, now)
		})
	if err != nil {
		err = s.translate(err, "failed to fulfill iou")
		s.reject("fulfill", err)
		return nil, err
	}

	s.metrics.IncTransition(string(models.StatusFulfilled))
	s.logger.InfoContext(ctx, "iou fulfilled",
		"iou_id", iouID.String(),
		"issuer_id", callerID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, audit.ActionIOUFulfilled, callerID, iou, nil)
	// A failed settlement stays pending for SettlePending.
	_ = s.settle(ctx, iou, models.OutcomeFulfilled)
	return iou, nil
}

// Expire moves an overdue outstanding or accepted IOU to expired and debits
// the issuer's reputation. An IOU that is terminal or not yet due is
// returned unchanged.
func (s *Service) Expire(ctx context.Context, iouID id.IOUID) (*models.IOU, error) {
	iou, _, err := s.expire(ctx, iouID)
	return iou, err
}

func (s *Service) expire(ctx context.Context, iouID id.IOUID) (*models.IOU, bool, error) {
	now := requestcontext.Now(ctx)
	iou, err := s.store.Execute(ctx, iouID,
		func(i *models.IOU) error {
			if i.Status.IsTerminal() || !i.IsOverdue(now) {
				return errNotDue
			}
			return nil
		},
		func(i *models.IOU) {
			_ = i.Transition(models.StatusExpired, now)
		})
	if errors.Is(err, errNotDue) {
		current, err := s.Get(ctx, iouID)
		return current, false, err
	}
	if err != nil {
		return nil, false, s.translate(err, "failed to expire iou")
	}

	s.metrics.IncTransition(string(models.StatusExpired))
	s.logger.InfoContext(ctx, "iou expired",
		"iou_id", iouID.String(),
		"issuer_id", iou.IssuerID.String(),
	)
	s.emitAudit(ctx, audit.ActionIOUExpired, iou.IssuerID, iou, nil)
	_ = s.settle(ctx, iou, models.OutcomeExpired)
	return iou, true, nil
}

// ExpireDue expires every IOU that is overdue at now. Failures on single
// IOUs do not stop the sweep; they are joined into the returned error.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	ctx = requestcontext.WithTime(ctx, now)
	due, err := s.store.ListDue(ctx, now, s.sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list due ious: %w", err)
	}

	var (
		expired int
		errs    []error
	)
	for _, iou := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		_, transitioned, err := s.expire(ctx, iou.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("expire iou %s: %w", iou.ID, err))
			continue
		}
		if transitioned {
			expired++
		}
	}
	s.metrics.AddExpired(expired)
	return expired, errors.Join(errs...)
}

// SettlePending applies the reputation outcome of terminal IOUs whose earlier
// settlement failed. Each replay reuses the transition's settlement key, so an
// outcome the aggregator already recorded is not applied twice.
func (s *Service) SettlePending(ctx context.Context, now time.Time) (int, error) {
	ctx = requestcontext.WithTime(ctx, now)
	pending, err := s.store.ListUnsettled(ctx, s.sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list unsettled ious: %w", err)
	}

	var (
		settled int
		errs    []error
	)
	for _, iou := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		outcome, ok := iou.Outcome()
		if !ok {
			continue
		}
		if err := s.settle(ctx, iou, outcome); err != nil {
			errs = append(errs, fmt.Errorf("settle iou %s: %w", iou.ID, err))
			continue
		}
		settled++
	}
	s.metrics.AddSettledPending(settled)
	return settled, errors.Join(errs...)
}

func (s *Service) Get(ctx context.Context, iouID id.IOUID) (*models.IOU, error) {
	iou, err := s.store.FindByID(ctx, iouID)
	if err != nil {
		return nil, s.translate(err, "failed to load iou")
	}
	return iou, nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.IOU, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, dErrors.Validation("unknown status: " + string(*filter.Status))
	}
	ious, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, s.translate(err, "failed to list ious")
	}
	return ious, nil
}

// ListAvailable returns open postings, optionally narrowed by a
// case-insensitive description search.
func (s *Service) ListAvailable(ctx context.Context, query string, limit int) ([]*models.IOU, error) {
	if limit <= 0 {
		limit = defaultAvailableLimit
	}
	ious, err := s.store.ListAvailable(ctx, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, s.translate(err, "failed to list available ious")
	}
	return ious, nil
}

// settle forwards a terminal transition to the reputation aggregator and
// stamps SettledAt on success. The transition is already committed; until
// SettledAt is written the IOU stays listed by ListUnsettled.
func (s *Service) settle(ctx context.Context, iou *models.IOU, outcome models.Outcome) error {
	err := s.reputation.ApplyOutcome(ctx, iou.IssuerID, iou.ID, outcome)
	if err != nil {
		s.metrics.IncSettlementFailure(string(outcome))
		s.logger.ErrorContext(ctx, "reputation settlement failed",
			"iou_id", iou.ID.String(),
			"issuer_id", iou.IssuerID.String(),
			"outcome", string(outcome),
			"error", err,
		)
		s.emitAudit(ctx, audit.ActionSettlementFailed, iou.IssuerID, iou, map[string]string{
			"outcome": string(outcome),
			"error":   string(dErrors.CodeOf(err)),
		})
		return err
	}

	now := requestcontext.Now(ctx)
	marked, err := s.store.Execute(ctx, iou.ID, nil, func(i *models.IOU) {
		i.SettledAt = &now
	})
	if err != nil {
		// The outcome is applied; a replay only hits the settlement key again.
		s.logger.WarnContext(ctx, "failed to mark iou settled",
			"iou_id", iou.ID.String(),
			"error", err,
		)
		return fmt.Errorf("mark iou settled: %w", err)
	}
	iou.SettledAt = marked.SettledAt
	s.emitAudit(ctx, audit.ActionSettlementApplied, iou.IssuerID, iou, map[string]string{
		"outcome": string(outcome),
	})
	return nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, actor id.ParticipantID, iou *models.IOU, attrs map[string]string) {
	if s.auditor == nil {
		return
	}
	if attrs == nil {
		attrs = make(map[string]string, 1)
	}
	attrs["status"] = string(iou.Status)
	if err := s.auditor.Emit(ctx, audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		Action:        action,
		ParticipantID: actor,
		Subject:       iou.ID.String(),
		Attributes:    attrs,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			"action", string(action),
			"iou_id", iou.ID.String(),
			"error", err,
		)
	}
}

func (s *Service) reject(operation string, err error) {
	s.metrics.IncRejection(operation, string(dErrors.CodeOf(err)))
}

// translate maps store sentinels to domain errors. Domain errors raised by
// validate callbacks pass through unchanged.
func (s *Service) translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.NotFound("iou not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Conflict("iou already exists")
	default:
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// checkCounterparty rejects the issuer and anyone other than a bound
// recipient.
func checkCounterparty(i *models.IOU, participantID id.ParticipantID) error {
	if i.IssuerID == participantID {
		return dErrors.Forbidden()
	}
	if i.RecipientID != nil && *i.RecipientID != participantID {
		return dErrors.Forbidden()
	}
	return nil
}

func validateDraft(issuerID id.ParticipantID, d models.Draft, now time.Time) error {
	switch {
	case !d.Kind.IsValid():
		return dErrors.Validation("kind must be one of [service good]")
	case d.Description == "":
		return dErrors.Validation("description must not be blank")
	case !d.Value.IsPositive():
		return dErrors.Validation("value must be greater than 0")
	case !d.DueDate.After(now):
		return dErrors.Validation("due date must be in the future")
	case d.RecipientID != nil && d.RecipientID.IsNil():
		return dErrors.Validation("recipient id must be a valid participant")
	case d.RecipientID != nil && *d.RecipientID == issuerID:
		return dErrors.Validation("recipient must differ from issuer")
	}
	return nil
}

func scoringError(err error) error {
	if dErrors.HasCode(err, dErrors.CodeScoringUnavailable) {
		return err
	}
	return dErrors.ScoringUnavailable(err)
}
