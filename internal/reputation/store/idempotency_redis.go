package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "ria/pkg/domain"
)

const settlementKeyPrefix = "ria:settlement:"

// RedisLedger claims settlement keys with SET NX so every replica agrees on
// which process applies an event.
type RedisLedger struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisLedger builds a ledger; ttl of zero keeps keys forever.
func NewRedisLedger(client redis.Cmdable, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

func (l *RedisLedger) Claim(ctx context.Context, key string, participantID id.ParticipantID) (bool, error) {
	ok, err := l.client.SetNX(ctx, settlementKeyPrefix+key, participantID.String(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim settlement key: %w", err)
	}
	return ok, nil
}

func (l *RedisLedger) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, settlementKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release settlement key: %w", err)
	}
	return nil
}
