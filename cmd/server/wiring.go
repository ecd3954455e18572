package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ria/internal/audit"
	govHandler "ria/internal/governance/handler"
	govMetrics "ria/internal/governance/metrics"
	govService "ria/internal/governance/service"
	govStore "ria/internal/governance/store"
	"ria/internal/governance/workers/closer"
	iouAdapters "ria/internal/iou/adapters"
	iouHandler "ria/internal/iou/handler"
	iouMetrics "ria/internal/iou/metrics"
	iouService "ria/internal/iou/service"
	iouStore "ria/internal/iou/store"
	"ria/internal/iou/workers/expiry"
	jwttoken "ria/internal/jwt_token"
	"ria/internal/platform/config"
	"ria/internal/platform/database"
	"ria/internal/platform/health"
	"ria/internal/platform/kafka/producer"
	platformredis "ria/internal/platform/redis"
	"ria/internal/ratelimit"
	repAdapters "ria/internal/reputation/adapters"
	repHandler "ria/internal/reputation/handler"
	repMetrics "ria/internal/reputation/metrics"
	repModels "ria/internal/reputation/models"
	repService "ria/internal/reputation/service"
	repStore "ria/internal/reputation/store"
	"ria/internal/scoring"
	scoringMetrics "ria/internal/scoring/metrics"
	"ria/internal/scoring/oracle"
	"ria/internal/scoring/tracer"
	httptransport "ria/internal/transport/http"
	"ria/migrations"
	"ria/pkg/platform/circuit"
	"ria/pkg/platform/middleware/metadata"
	"ria/pkg/platform/middleware/request"
)

const auditBufferSize = 1024

// infra holds the optional backing services. Nil members mean the
// corresponding in-memory fallback is used.
type infra struct {
	registry *prometheus.Registry
	health   *health.Handler
	db       *database.Pool
	redis    *platformredis.Client
	producer *producer.Producer
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	in := &infra{registry: reg, health: health.New(cfg.Environment)}

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(ctx, dbCfg, reg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if pool != nil {
		in.db = pool
		applied, err := database.Migrate(ctx, pool.DB(), migrations.FS)
		if err != nil {
			in.Close(log)
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("postgres ready", "migrations_applied", len(applied))
		in.health.RegisterCheck("postgres", pool.Health)
	} else {
		log.Warn("DATABASE_URL not set; using in-memory stores")
	}

	client, err := platformredis.New(ctx, cfg.Redis, reg)
	if err != nil {
		in.Close(log)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client != nil {
		in.redis = client
		in.health.RegisterCheck("redis", client.Health)
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log, reg)
		if err != nil {
			in.Close(log)
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		in.producer = p
		in.health.RegisterCheck("kafka", p.Health)
	}
	return in, nil
}

func (in *infra) Close(log *slog.Logger) {
	if in.producer != nil {
		if err := in.producer.Close(); err != nil {
			log.Warn("failed to close kafka producer", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	}
	if err := in.db.Close(); err != nil {
		log.Warn("failed to close postgres", "error", err)
	}
}

type app struct {
	router  http.Handler
	auditor *audit.Publisher
	expiry  *expiry.Worker
	closer  *closer.Worker
	quotas  *ratelimit.InMemoryStore
}

func buildApp(cfg config.Server, in *infra, log *slog.Logger) (*app, error) {
	auditor := buildAuditor(cfg, in, log)

	gateway := scoring.New(
		oracle.New(cfg.Scoring.URL, cfg.Scoring.APIKey),
		scoring.WithTimeout(cfg.Scoring.Timeout),
		scoring.WithBreakerOptions(
			circuit.WithFailureThreshold(cfg.Scoring.FailureThreshold),
			circuit.WithCooldown(cfg.Scoring.Cooldown),
		),
		scoring.WithTracer(tracer.New()),
		scoring.WithMetrics(scoringMetrics.New(in.registry)),
		scoring.WithLogger(log),
	)
	in.health.RegisterOptional("scoring", func(context.Context) error {
		if gateway.BreakerState() == circuit.StateOpen {
			return errors.New("circuit open")
		}
		return nil
	})

	reputation, err := buildReputation(cfg, in, gateway, log)
	if err != nil {
		return nil, err
	}

	var ious iouService.Store = iouStore.New()
	var proposals govService.Store = govStore.New()
	if in.db != nil {
		ious = iouStore.NewPostgres(in.db.DB())
		proposals = govStore.NewPostgres(in.db.DB())
	}

	ledger, err := iouService.New(ious, iouAdapters.NewReputationAdapter(reputation),
		iouService.WithScorer(iouAdapters.NewScoringAdapter(gateway)),
		iouService.WithAuditor(auditor),
		iouService.WithMetrics(iouMetrics.New(in.registry)),
		iouService.WithLogger(log),
		iouService.WithSweepBatch(cfg.Ledger.SweepBatchSize),
	)
	if err != nil {
		return nil, fmt.Errorf("build iou ledger: %w", err)
	}

	governance, err := govService.New(proposals,
		govService.WithQuorum(cfg.Governance.Quorum),
		govService.WithAuditor(auditor),
		govService.WithMetrics(govMetrics.New(in.registry)),
		govService.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("build governance: %w", err)
	}

	expiryWorker, err := expiry.New(ledger, expiry.WithInterval(cfg.Ledger.ExpiryInterval), expiry.WithLogger(log))
	if err != nil {
		return nil, err
	}
	closerWorker, err := closer.New(governance, closer.WithInterval(cfg.Governance.CloseInterval), closer.WithLogger(log))
	if err != nil {
		return nil, err
	}

	proxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse TRUSTED_PROXIES: %w", err)
	}
	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	limiter, quotas := buildRateLimit(cfg, in, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Authenticator:  tokens,
		TrustedProxies: proxies,
		Metrics:        request.NewMetrics(in.registry),
		MetricsHandler: promhttp.HandlerFor(in.registry, promhttp.HandlerOpts{Registry: in.registry}),
		Health:         in.health,
		Reputation:     repHandler.New(reputation, log),
		IOUs:           iouHandler.New(ledger, log),
		Governance:     govHandler.New(governance, log),
		Activity:       audit.NewHandler(auditor, log),
		RateLimit:      limiter,
	})

	return &app{
		router:  router,
		auditor: auditor,
		expiry:  expiryWorker,
		closer:  closerWorker,
		quotas:  quotas,
	}, nil
}

// buildRateLimit shares windows through redis when available. The returned
// in-memory store is nil in that case.
func buildRateLimit(cfg config.Server, in *infra, log *slog.Logger) (*ratelimit.Middleware, *ratelimit.InMemoryStore) {
	limits := map[ratelimit.Class]ratelimit.Limit{
		ratelimit.ClassRead:  {Requests: cfg.RateLimit.ReadRequests, Window: cfg.RateLimit.Window},
		ratelimit.ClassWrite: {Requests: cfg.RateLimit.WriteRequests, Window: cfg.RateLimit.Window},
	}
	if in.redis != nil {
		return ratelimit.New(ratelimit.NewRedisStore(in.redis.Client), limits, log), nil
	}
	store := ratelimit.NewInMemoryStore()
	return ratelimit.New(store, limits, log), store
}

// buildAuditor persists events to postgres when configured and forwards
// settlement events to Kafka when brokers are set.
func buildAuditor(cfg config.Server, in *infra, log *slog.Logger) *audit.Publisher {
	var store audit.Store = audit.NewInMemoryStore()
	if in.db != nil {
		store = audit.NewPostgresStore(in.db.DB())
	}
	opts := []audit.PublisherOption{
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(log),
	}
	if in.producer != nil {
		opts = append(opts, audit.WithSink(audit.NewKafkaSink(in.producer, cfg.Kafka.SettlementTopic, audit.SettlementsOnly())))
	}
	return audit.NewPublisher(store, opts...)
}

// buildReputation picks the settlement ledger. With postgres the ledger shares
// the participants' transaction; redis only serves in-memory deployments.
func buildReputation(cfg config.Server, in *infra, gateway *scoring.Gateway, log *slog.Logger) (*repService.Service, error) {
	var (
		participants repService.Store  = repStore.New()
		settlements  repService.Ledger = repStore.NewInMemoryLedger()
	)
	switch {
	case in.db != nil:
		participants = repStore.NewPostgres(in.db.DB())
		settlements = repStore.NewPostgresLedger(in.db.DB())
	case in.redis != nil:
		settlements = repStore.NewRedisLedger(in.redis.Client, cfg.Redis.KeyTTL)
	}

	rc := cfg.Reputation
	svc, err := repService.New(participants, settlements, repService.Config{
		Weights: repModels.Weights{
			Tailoring:             rc.WeightTailoring,
			Punctuality:           rc.WeightPunctuality,
			FinancialTrust:        rc.WeightFinancialTrust,
			CommunityContribution: rc.WeightCommunityContribution,
		},
		MaxDelta:        rc.MaxDelta,
		FulfillDelta:    rc.FulfillDelta,
		ExpireDelta:     rc.ExpireDelta,
		CredentialDelta: rc.CredentialDelta,
	},
		repService.WithInsight(repAdapters.NewInsightAdapter(gateway)),
		repService.WithMetrics(repMetrics.New(in.registry)),
		repService.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("build reputation: %w", err)
	}
	return svc, nil
}
