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
	"ria/internal/governance/metrics"
	"ria/internal/governance/models"
	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/sentinel"
	"ria/pkg/requestcontext"
)

// Store persists proposals and votes.
// Error Contract:
// - FindByID, Execute and RecordVote return sentinel.ErrNotFound for unknown proposals
// - Create returns sentinel.ErrConflict when the id already exists
// - validate errors are returned unchanged and nothing is written
type Store interface {
	Create(ctx context.Context, p *models.Proposal) error
	FindByID(ctx context.Context, proposalID id.ProposalID) (*models.Proposal, error)
	List(ctx context.Context, status *models.Status) ([]*models.Proposal, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Proposal, error)
	Execute(ctx context.Context, proposalID id.ProposalID, validate func(*models.Proposal) error, mutate func(*models.Proposal)) (*models.Proposal, error)
	RecordVote(ctx context.Context, vote models.Vote, validate func(*models.Proposal) error) (*models.Proposal, models.VoteChange, error)
}

const defaultSweepBatch = 500

var errAlreadyClosed = errors.New("proposal already closed")

type Option func(*Service)

// Service tallies community votes.
type Service struct {
	store      Store
	quorum     int64
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	sweepBatch int
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("proposal store is required")
	}
	svc := &Service{
		store:      store,
		logger:     slog.Default(),
		sweepBatch: defaultSweepBatch,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// WithQuorum sets the minimum number of votes a proposal needs to pass.
// Zero disables the check.
func WithQuorum(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.quorum = n
		}
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

// WithSweepBatch caps how many due proposals one CloseDue call processes.
func WithSweepBatch(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sweepBatch = n
		}
	}
}

func (s *Service) SubmitProposal(ctx context.Context, proposerID id.ParticipantID, draft models.Draft) (*models.Proposal, error) {
	if proposerID.IsNil() {
		return nil, dErrors.Unauthenticated()
	}
	now := requestcontext.Now(ctx)
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, dErrors.Validation("title must not be blank")
	}
	if !draft.EndDate.After(now) {
		return nil, dErrors.Validation("end date must be in the future")
	}

	p := &models.Proposal{
		ID:          id.NewProposalID(),
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		Status:      models.StatusActive,
		EndDate:     draft.EndDate.UTC(),
		ProposerID:  proposerID,
		CreatedAt:   now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, translate(err, "failed to submit proposal")
	}

	s.metrics.IncProposalSubmitted()
	s.logger.InfoContext(ctx, "proposal submitted",
		"proposal_id", p.ID.String(),
		"proposer_id", proposerID.String(),
		"end_date", p.EndDate,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, audit.ActionProposalSubmitted, proposerID, p, nil)
	return p, nil
}

// SubmitVote records the voter's position. A repeat vote in the other
// direction moves one vote across; a repeat in the same direction changes
// nothing.
func (s *Service) SubmitVote(ctx context.Context, proposalID id.ProposalID, voterID id.ParticipantID, direction models.Direction) (*models.Proposal, error) {
	if voterID.IsNil() {
		return nil, dErrors.Unauthenticated()
	}
	if !direction.IsValid() {
		return nil, dErrors.Validation("direction must be one of [for against]")
	}
	now := requestcontext.Now(ctx)

	p, change, err := s.store.RecordVote(ctx, models.Vote{
		ProposalID: proposalID,
		VoterID:    voterID,
		Direction:  direction,
		CastAt:     now,
	}, func(p *models.Proposal) error {
		if p.Status != models.StatusActive {
			return dErrors.InvalidState("proposal is not active")
		}
		if !p.AcceptsVotesAt(now) {
			return dErrors.InvalidState("voting has ended")
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "failed to record vote")
	}

	s.metrics.IncVote(string(direction), string(change))
	if change != models.VoteUnchanged {
		s.logger.InfoContext(ctx, "vote recorded",
			"proposal_id", proposalID.String(),
			"voter_id", voterID.String(),
			"direction", string(direction),
			"change", string(change),
			"request_id", requestcontext.RequestID(ctx),
		)
		s.emitAudit(ctx, audit.ActionVoteCast, voterID, p, map[string]string{
			"direction": string(direction),
			"change":    string(change),
		})
	}
	return p, nil
}

// Close decides the proposal once its end date has passed. Closing a
// closed proposal returns it unchanged.
func (s *Service) Close(ctx context.Context, proposalID id.ProposalID) (*models.Proposal, error) {
	p, _, err := s.close(ctx, proposalID)
	return p, err
}

func (s *Service) close(ctx context.Context, proposalID id.ProposalID) (*models.Proposal, bool, error) {
	now := requestcontext.Now(ctx)
	p, err := s.store.Execute(ctx, proposalID,
		func(p *models.Proposal) error {
			if p.Status.IsTerminal() {
				return errAlreadyClosed
			}
			if !p.ClosableAt(now) {
				return dErrors.InvalidState("voting is still open")
			}
			return nil
		},
		func(p *models.Proposal) {
			p.Close(s.quorum, now)
		})
	if errors.Is(err, errAlreadyClosed) {
		current, err := s.Get(ctx, proposalID)
		return current, false, err
	}
	if err != nil {
		return nil, false, translate(err, "failed to close proposal")
	}

	s.metrics.IncClosed(string(p.Status))
	s.logger.InfoContext(ctx, "proposal closed",
		"proposal_id", proposalID.String(),
		"outcome", string(p.Status),
		"votes_for", p.VotesFor,
		"votes_against", p.VotesAgainst,
	)
	s.emitAudit(ctx, audit.ActionProposalClosed, p.ProposerID, p, map[string]string{
		"votes_for":     strconv.FormatInt(p.VotesFor, 10),
		"votes_against": strconv.FormatInt(p.VotesAgainst, 10),
	})
	return p, true, nil
}

// CloseDue closes every active proposal whose end date is at or before now.
func (s *Service) CloseDue(ctx context.Context, now time.Time) (int, error) {
	ctx = requestcontext.WithTime(ctx, now)
	due, err := s.store.ListDue(ctx, now, s.sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list due proposals: %w", err)
	}

	var (
		closed int
		errs   []error
	)
	for _, p := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		_, transitioned, err := s.close(ctx, p.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("close proposal %s: %w", p.ID, err))
			continue
		}
		if transitioned {
			closed++
		}
	}
	return closed, errors.Join(errs...)
}

func (s *Service) Get(ctx context.Context, proposalID id.ProposalID) (*models.Proposal, error) {
	p, err := s.store.FindByID(ctx, proposalID)
	if err != nil {
		return nil, translate(err, "failed to load proposal")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, status *models.Status) ([]*models.Proposal, error) {
	if status != nil && !status.IsValid() {
		return nil, dErrors.Validation("unknown status: " + string(*status))
	}
	proposals, err := s.store.List(ctx, status)
	if err != nil {
		return nil, translate(err, "failed to list proposals")
	}
	return proposals, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, actor id.ParticipantID, p *models.Proposal, attrs map[string]string) {
	if s.auditor == nil {
		return
	}
	if attrs == nil {
		attrs = make(map[string]string, 1)
	}
	attrs["status"] = string(p.Status)
	if err := s.auditor.Emit(ctx, audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		Action:        action,
		ParticipantID: actor,
		Subject:       p.ID.String(),
		Attributes:    attrs,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			"action", string(action),
			"proposal_id", p.ID.String(),
			"error", err,
		)
	}
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.NotFound("proposal not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Conflict("proposal already exists")
	default:
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
