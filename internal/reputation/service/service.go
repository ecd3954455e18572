package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ria/internal/reputation/metrics"
	"ria/internal/reputation/models"
	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/sentinel"
	"ria/pkg/requestcontext"
)

// Store persists participants.
// Error Contract:
// - FindByID and Execute return sentinel.ErrNotFound for unknown participants
// - Create returns sentinel.ErrConflict when the participant already exists
type Store interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, participantID id.ParticipantID) (*models.Participant, error)
	Execute(ctx context.Context, participantID id.ParticipantID, validate func(*models.Participant) error, mutate func(*models.Participant)) (*models.Participant, error)
}

// Ledger records which settlement keys have already been applied.
// Claim returns true only for the first caller presenting a key.
type Ledger interface {
	Claim(ctx context.Context, key string, participantID id.ParticipantID) (bool, error)
	Release(ctx context.Context, key string) error
}

// AtomicLedger is a Ledger that can claim a key and update the participant in
// a single transaction. Settle reports false, writing nothing, when the key
// was already claimed.
type AtomicLedger interface {
	Ledger
	Settle(ctx context.Context, key string, participantID id.ParticipantID, mutate func(*models.Participant)) (bool, error)
}

// InsightProvider produces a text analysis of a participant's reputation.
type InsightProvider interface {
	ReputationInsight(ctx context.Context, profile *models.Profile) (string, error)
}

// Config holds the aggregation parameters.
type Config struct {
	Weights         models.Weights
	MaxDelta        float64
	FulfillDelta    float64
	ExpireDelta     float64
	CredentialDelta float64
}

func DefaultConfig() Config {
	return Config{
		Weights:         models.DefaultWeights(),
		MaxDelta:        10,
		FulfillDelta:    5,
		ExpireDelta:     8,
		CredentialDelta: 3,
	}
}

type Option func(*Service)

// Service is the only writer of reputation vectors.
type Service struct {
	store   Store
	ledger  Ledger
	insight InsightProvider
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(store Store, ledger Ledger, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("participant store is required")
	}
	if ledger == nil {
		return nil, errors.New("settlement ledger is required")
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	defaults := DefaultConfig()
	if cfg.MaxDelta <= 0 {
		cfg.MaxDelta = defaults.MaxDelta
	}
	if cfg.FulfillDelta <= 0 {
		cfg.FulfillDelta = defaults.FulfillDelta
	}
	if cfg.ExpireDelta <= 0 {
		cfg.ExpireDelta = defaults.ExpireDelta
	}
	if cfg.CredentialDelta <= 0 {
		cfg.CredentialDelta = defaults.CredentialDelta
	}

	svc := &Service{
		store:  store,
		ledger: ledger,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
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

// WithInsight enables Insight. Without a provider Insight reports the
// scoring service as unavailable.
func WithInsight(p InsightProvider) Option {
	return func(s *Service) {
		s.insight = p
	}
}

// Weights returns the configured overall-score weights.
func (s *Service) Weights() models.Weights {
	return s.cfg.Weights
}

// EnsureParticipant returns the participant, creating it with a neutral
// vector on first contact. Existing participants are not modified.
func (s *Service) EnsureParticipant(ctx context.Context, participantID id.ParticipantID, displayName string) (*models.Participant, error) {
	if participantID.IsNil() {
		return nil, dErrors.Validation("participant id is required")
	}
	p, err := s.store.FindByID(ctx, participantID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load participant")
	}

	p = models.NewParticipant(participantID, strings.TrimSpace(displayName), requestcontext.Now(ctx))
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a creation race; the winner's record is authoritative.
			return s.GetParticipant(ctx, participantID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create participant")
	}
	s.metrics.IncParticipantCreated()
	s.logger.InfoContext(ctx, "participant created",
		"participant_id", participantID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

func (s *Service) GetParticipant(ctx context.Context, participantID id.ParticipantID) (*models.Participant, error) {
	p, err := s.store.FindByID(ctx, participantID)
	if err != nil {
		return nil, translate(err, "failed to load participant")
	}
	return p, nil
}

// Profile returns the participant with its derived overall score.
func (s *Service) Profile(ctx context.Context, participantID id.ParticipantID) (*models.Profile, error) {
	p, err := s.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return models.NewProfile(p, s.cfg.Weights), nil
}

func (s *Service) GetReputation(ctx context.Context, participantID id.ParticipantID) (models.Reputation, error) {
	p, err := s.GetParticipant(ctx, participantID)
	if err != nil {
		return models.Reputation{}, err
	}
	return models.NewReputation(p.Vector, s.cfg.Weights), nil
}

// ApplySettlement applies st.Delta, bounded to ±MaxDelta per dimension, at
// most once per st.Key. It reports whether this call applied the delta; a
// replayed key is not an error.
func (s *Service) ApplySettlement(ctx context.Context, st models.Settlement) (bool, error) {
	if st.ParticipantID.IsNil() {
		return false, dErrors.Validation("participant id is required")
	}
	if strings.TrimSpace(st.Key) == "" {
		return false, dErrors.Validation("settlement key is required")
	}

	delta := st.Delta.Bounded(s.cfg.MaxDelta)
	now := requestcontext.Now(ctx)
	applied, err := s.claimAndApply(ctx, st, func(p *models.Participant) {
		p.Vector = p.Vector.Apply(delta)
		p.UpdatedAt = now
	})
	if err != nil {
		return false, err
	}
	if !applied {
		s.metrics.IncSettlementDuplicate(string(st.Reason))
		s.logger.DebugContext(ctx, "settlement already applied",
			"settlement_key", st.Key,
			"participant_id", st.ParticipantID.String(),
		)
		return false, nil
	}

	s.metrics.IncSettlementApplied(string(st.Reason))
	s.logger.InfoContext(ctx, "settlement applied",
		"settlement_key", st.Key,
		"participant_id", st.ParticipantID.String(),
		"reason", string(st.Reason),
	)
	return true, nil
}

// claimAndApply claims st.Key and runs mutate against the participant. An
// AtomicLedger does both in one transaction; otherwise the claim is released
// when the write fails.
func (s *Service) claimAndApply(ctx context.Context, st models.Settlement, mutate func(*models.Participant)) (bool, error) {
	if atomicLedger, ok := s.ledger.(AtomicLedger); ok {
		applied, err := atomicLedger.Settle(ctx, st.Key, st.ParticipantID, mutate)
		if err != nil {
			return false, translate(err, "failed to apply settlement")
		}
		return applied, nil
	}

	claimed, err := s.ledger.Claim(ctx, st.Key, st.ParticipantID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim settlement key")
	}
	if !claimed {
		return false, nil
	}
	if _, err := s.store.Execute(ctx, st.ParticipantID, nil, mutate); err != nil {
		if relErr := s.ledger.Release(ctx, st.Key); relErr != nil {
			s.logger.ErrorContext(ctx, "failed to release settlement key",
				"settlement_key", st.Key,
				"error", relErr,
			)
		}
		return false, translate(err, "failed to apply settlement")
	}
	return true, nil
}

// ApplyIOUOutcome turns an IOU transition into the issuer's settlement.
func (s *Service) ApplyIOUOutcome(ctx context.Context, participantID id.ParticipantID, iouID id.IOUID, reason models.Reason) (bool, error) {
	var (
		delta      models.Delta
		transition string
	)
	switch reason {
	case models.ReasonIOUFulfilled:
		delta = models.Delta{Punctuality: s.cfg.FulfillDelta, FinancialTrust: s.cfg.FulfillDelta}
		transition = "fulfilled"
	case models.ReasonIOUExpired:
		delta = models.Delta{Punctuality: -s.cfg.ExpireDelta, FinancialTrust: -s.cfg.ExpireDelta}
		transition = "expired"
	default:
		return false, dErrors.Validation("unsupported settlement reason: " + string(reason))
	}

	if _, err := s.EnsureParticipant(ctx, participantID, ""); err != nil {
		return false, err
	}
	return s.ApplySettlement(ctx, models.Settlement{
		ParticipantID: participantID,
		Delta:         delta,
		Reason:        reason,
		Key:           models.SettlementKey(iouID, transition),
	})
}

// AddCredential records a credential for the participant. The credential id
// is derived from its content, so resubmitting the same credential updates its
// status instead of adding a second one. A verified credential raises
// community contribution once per credential id.
func (s *Service) AddCredential(ctx context.Context, participantID id.ParticipantID, req *models.AddCredentialRequest) (*models.Profile, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.EnsureParticipant(ctx, participantID, ""); err != nil {
		return nil, err
	}

	cred := models.Credential{
		ID:       models.CredentialKey(participantID, req.Type, req.Issuer, req.IssuedAt),
		Type:     req.Type,
		Issuer:   req.Issuer,
		Status:   req.Status,
		IssuedAt: req.IssuedAt.UTC(),
	}
	now := requestcontext.Now(ctx)
	var added bool
	_, err := s.store.Execute(ctx, participantID, nil, func(p *models.Participant) {
		added = p.RecordCredential(cred)
		p.UpdatedAt = now
	})
	if err != nil {
		return nil, translate(err, "failed to record credential")
	}
	if added {
		s.metrics.IncCredentialAdded(string(cred.Status))
	}

	// A retry after a failed settlement reaches here again with the same key.
	if cred.Status == models.CredentialVerified {
		if _, err := s.ApplySettlement(ctx, models.Settlement{
			ParticipantID: participantID,
			Delta:         models.Delta{CommunityContribution: s.cfg.CredentialDelta},
			Reason:        models.ReasonCredentialVerified,
			Key:           models.CredentialSettlementKey(cred.ID),
		}); err != nil {
			return nil, err
		}
	}
	return s.Profile(ctx, participantID)
}

// Insight asks the oracle for an analysis of the participant's reputation.
func (s *Service) Insight(ctx context.Context, participantID id.ParticipantID) (*models.Insight, error) {
	profile, err := s.Profile(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if s.insight == nil {
		return nil, dErrors.ScoringUnavailable(errors.New("insight provider not configured"))
	}
	text, err := s.insight.ReputationInsight(ctx, profile)
	if err != nil {
		s.metrics.IncInsightFailure()
		s.logger.WarnContext(ctx, "reputation insight failed",
			"participant_id", participantID.String(),
			"error", err,
		)
		if dErrors.HasCode(err, dErrors.CodeScoringUnavailable) {
			return nil, err
		}
		return nil, dErrors.ScoringUnavailable(err)
	}
	return &models.Insight{
		ParticipantID: participantID,
		Text:          text,
		GeneratedAt:   requestcontext.Now(ctx),
	}, nil
}

// translate maps store sentinels to domain errors.
func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.NotFound("participant not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Conflict("participant already exists")
	default:
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
