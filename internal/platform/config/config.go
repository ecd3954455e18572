package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	JWTSigningKey  string
	JWTIssuer      string
	TokenTTL       time.Duration
	TrustedProxies []string
	DatabaseURL    string
	Redis          RedisConfig
	Kafka          KafkaConfig
	Scoring        ScoringConfig
	Reputation     ReputationConfig
	Ledger         LedgerConfig
	Governance     GovernanceConfig
	RateLimit      RateLimitConfig
}

// RedisConfig configures the settlement idempotency ledger.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyTTL       time.Duration
}

// KafkaConfig configures settlement event publishing.
type KafkaConfig struct {
	Brokers         string
	SettlementTopic string
}

// ScoringConfig configures the external scoring oracle.
type ScoringConfig struct {
	URL              string
	APIKey           string
	Timeout          time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

// ReputationConfig holds the dimension weights and per-event delta bounds.
type ReputationConfig struct {
	WeightTailoring             float64
	WeightPunctuality           float64
	WeightFinancialTrust        float64
	WeightCommunityContribution float64
	MaxDelta                    float64
	FulfillDelta                float64
	ExpireDelta                 float64
	CredentialDelta             float64
}

type LedgerConfig struct {
	ExpiryInterval time.Duration
	SweepBatchSize int
}

type GovernanceConfig struct {
	Quorum        int64
	CloseInterval time.Duration
}

// RateLimitConfig sets per-window quotas. Zero disables a class.
type RateLimitConfig struct {
	ReadRequests  int
	WriteRequests int
	Window        time.Duration
}

const (
	defaultScoringURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash-exp:generateContent"
	devSigningKey     = "dev-secret-key-change-in-production"
)

// FromEnv builds a Server config from environment variables so main stays lean.
// Unparseable values fall back to defaults.
func FromEnv() Server {
	return Server{
		Addr:           envString("RIA_ADDR", ":8080"),
		Environment:    envString("RIA_ENV", "development"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		JWTSigningKey:  envString("JWT_SIGNING_KEY", devSigningKey),
		JWTIssuer:      envString("JWT_ISSUER", "ria"),
		TokenTTL:       envDuration("TOKEN_TTL", 15*time.Minute),
		TrustedProxies: envList("TRUSTED_PROXIES"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			KeyTTL:       envDuration("SETTLEMENT_KEY_TTL", 0),
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			SettlementTopic: envString("SETTLEMENT_TOPIC", "ria.settlements"),
		},
		Scoring: ScoringConfig{
			URL:              envString("SCORING_URL", defaultScoringURL),
			APIKey:           os.Getenv("SCORING_API_KEY"),
			Timeout:          envDuration("SCORING_TIMEOUT", 10*time.Second),
			FailureThreshold: envInt("SCORING_FAILURE_THRESHOLD", 5),
			Cooldown:         envDuration("SCORING_COOLDOWN", 30*time.Second),
		},
		Reputation: ReputationConfig{
			WeightTailoring:             envFloat("REPUTATION_WEIGHT_TAILORING", 0.25),
			WeightPunctuality:           envFloat("REPUTATION_WEIGHT_PUNCTUALITY", 0.25),
			WeightFinancialTrust:        envFloat("REPUTATION_WEIGHT_FINANCIAL_TRUST", 0.25),
			WeightCommunityContribution: envFloat("REPUTATION_WEIGHT_COMMUNITY_CONTRIBUTION", 0.25),
			MaxDelta:                    envFloat("REPUTATION_MAX_DELTA", 10),
			FulfillDelta:                envFloat("REPUTATION_FULFILL_DELTA", 5),
			ExpireDelta:                 envFloat("REPUTATION_EXPIRE_DELTA", 8),
			CredentialDelta:             envFloat("REPUTATION_CREDENTIAL_DELTA", 3),
		},
		Ledger: LedgerConfig{
			ExpiryInterval: envDuration("EXPIRY_INTERVAL", time.Minute),
			SweepBatchSize: envInt("EXPIRY_BATCH_SIZE", 100),
		},
		Governance: GovernanceConfig{
			Quorum:        int64(envInt("GOVERNANCE_QUORUM", 0)),
			CloseInterval: envDuration("CLOSE_INTERVAL", time.Minute),
		},
		RateLimit: RateLimitConfig{
			ReadRequests:  envInt("RATE_LIMIT_READ_REQUESTS", 300),
			WriteRequests: envInt("RATE_LIMIT_WRITE_REQUESTS", 60),
			Window:        envDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

// IsDevSigningKey reports whether the built-in development key is in use.
func (s Server) IsDevSigningKey() bool {
	return s.JWTSigningKey == devSigningKey
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
