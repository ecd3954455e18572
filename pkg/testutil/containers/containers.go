//go:build integration

// Package containers starts throwaway Postgres, Redis and Kafka instances for
// integration tests. Each runs at most once per test binary and is reaped by
// the testcontainers sidecar when the process exits.
package containers

import (
	"sync"
	"testing"
)

type Manager struct {
	postgres lazy[*PostgresContainer]
	kafka    lazy[*KafkaContainer]
	redis    lazy[*RedisContainer]
}

var shared = sync.OnceValue(func() *Manager { return &Manager{} })

func GetManager() *Manager {
	return shared()
}

func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	return m.postgres.get(t, NewPostgresContainer)
}

func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	return m.kafka.get(t, NewKafkaContainer)
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	return m.redis.get(t, NewRedisContainer)
}

// lazy starts its value on first use. A start that fails the test leaves it
// unset so a later suite retries.
type lazy[T any] struct {
	mu      sync.Mutex
	val     T
	started bool
}

func (l *lazy[T]) get(t *testing.T, start func(*testing.T) T) T {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		l.val = start(t)
		l.started = true
	}
	return l.val
}
