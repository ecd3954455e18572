// Package scoring obtains risk and trust scores for IOUs from an external
// oracle. Calls never hold a ledger lock; callers assess first and persist
// afterwards.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"ria/internal/scoring/metrics"
	"ria/internal/scoring/tracer"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/circuit"
)

const defaultTimeout = 10 * time.Second

var ErrCircuitOpen = errors.New("oracle circuit open")

// Oracle turns a prompt into response text.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway wraps an Oracle with a per-call timeout, a circuit breaker and
// in-flight deduplication of identical assessments. Every failure surfaces
// as a scoring_unavailable domain error.
type Gateway struct {
	oracle  Oracle
	timeout time.Duration
	breaker *circuit.Breaker
	group   singleflight.Group
	tracer  *tracer.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger

	breakerOpts []circuit.Option
}

type Option func(*Gateway)

// WithTimeout bounds each oracle call. Default is 10s.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithBreakerOptions tunes the oracle circuit breaker.
func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(g *Gateway) {
		g.breakerOpts = append(g.breakerOpts, opts...)
	}
}

func WithTracer(t *tracer.Tracer) Option {
	return func(g *Gateway) {
		if t != nil {
			g.tracer = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func New(oracle Oracle, opts ...Option) *Gateway {
	g := &Gateway{
		oracle:  oracle,
		timeout: defaultTimeout,
		tracer:  tracer.NewNoop(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	breakerOpts := append(g.breakerOpts, circuit.WithStateChange(g.onBreakerChange))
	g.breaker = circuit.New("scoring_oracle", breakerOpts...)
	return g
}

func (g *Gateway) onBreakerChange(name string, from, to circuit.State) {
	g.metrics.SetBreakerState(int(to))
	g.logger.Warn("circuit breaker state changed",
		"circuit", name,
		"from", from.String(),
		"to", to.String(),
	)
}

// Assess returns a score in [0,100] for draft. Identical concurrent drafts
// share a single oracle call; nothing is cached once the call returns.
func (g *Gateway) Assess(ctx context.Context, purpose Purpose, draft Draft) (int, error) {
	if !purpose.IsValid() {
		return 0, dErrors.Validation(fmt.Sprintf("unknown assessment purpose %q", purpose))
	}

	ctx, span := g.tracer.Start(ctx, tracer.SpanAssess, tracer.AttrPurpose.String(string(purpose)))

	prompt := assessmentPrompt(purpose, draft)
	ch := g.group.DoChan(draft.key(purpose), func() (any, error) {
		text, err := g.call(ctx, "assess_"+string(purpose), prompt)
		if err != nil {
			return 0, err
		}
		score, err := ParseScore(text)
		if err != nil {
			g.breaker.RecordFailure()
			return 0, dErrors.ScoringUnavailable(err)
		}
		return score, nil
	})

	select {
	case res := <-ch:
		span.SetAttributes(tracer.AttrShared.Bool(res.Shared))
		if res.Shared {
			g.metrics.IncShared()
		}
		if res.Err != nil {
			g.metrics.IncAssessment(string(purpose), "unavailable")
			span.End(res.Err)
			return 0, res.Err
		}
		score := res.Val.(int)
		g.metrics.IncAssessment(string(purpose), "scored")
		span.SetAttributes(tracer.AttrScore.Int(score))
		span.End(nil)
		return score, nil
	case <-ctx.Done():
		err := dErrors.ScoringUnavailable(ctx.Err())
		g.metrics.IncAssessment(string(purpose), "cancelled")
		span.End(err)
		return 0, err
	}
}

// EnhanceDescription asks the oracle to rewrite an IOU description.
func (g *Gateway) EnhanceDescription(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", dErrors.Validation("description is required")
	}
	ctx, span := g.tracer.Start(ctx, tracer.SpanEnhance)
	text, err := g.call(ctx, "enhance", enhancePrompt(description))
	span.End(err)
	return strings.Trim(text, "\""), err
}

// ReputationInsight asks the oracle for an analysis of a reputation profile.
func (g *Gateway) ReputationInsight(ctx context.Context, profile ReputationProfile) (string, error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanInsight)
	text, err := g.call(ctx, "insight", insightPrompt(profile))
	span.End(err)
	return text, err
}

// BreakerState reports the oracle breaker state, for health reporting.
func (g *Gateway) BreakerState() circuit.State {
	return g.breaker.State()
}

// call runs one guarded oracle request. The request is detached from the
// caller's cancellation so a shared call survives one waiter leaving, and
// bounded by the gateway timeout instead.
func (g *Gateway) call(ctx context.Context, operation, prompt string) (string, error) {
	if !g.breaker.Allow() {
		g.metrics.IncFastFailure()
		return "", dErrors.ScoringUnavailable(ErrCircuitOpen)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()
	callCtx, span := g.tracer.Start(callCtx, tracer.SpanOracle, tracer.AttrOperation.String(operation))

	start := time.Now()
	text, err := g.oracle.Generate(callCtx, prompt)
	elapsed := time.Since(start)
	span.SetAttributes(tracer.Latency(elapsed))

	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty oracle response")
	}
	if err != nil {
		g.breaker.RecordFailure()
		outcome := "error"
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
		}
		g.metrics.ObserveOracle(operation, outcome, elapsed.Seconds())
		g.logger.WarnContext(ctx, "oracle call failed",
			"operation", operation,
			"outcome", outcome,
			"latency_ms", elapsed.Milliseconds(),
			"error", err,
		)
		span.End(err)
		return "", dErrors.ScoringUnavailable(err)
	}

	g.breaker.RecordSuccess()
	g.metrics.ObserveOracle(operation, "ok", elapsed.Seconds())
	span.End(nil)
	return strings.TrimSpace(text), nil
}
