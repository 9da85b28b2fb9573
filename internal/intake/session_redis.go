package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSessionTTL bounds how long an abandoned intake survives.
const DefaultSessionTTL = 30 * time.Minute

// RedisSessionStore keeps intake state in Redis with a sliding TTL: every
// Put rearms the expiry.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisSessionStore builds a Redis-backed session store. A non-positive
// ttl falls back to DefaultSessionTTL.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("intake: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("agenda.internal.intake.sessions"),
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, tenantID, phone string) (*State, error) {
	ctx, span := s.tracer.Start(ctx, "intake.session_get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(tenantID, phone)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("intake: failed to load session: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("intake: failed to decode session: %w", err)
	}
	return &st, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, tenantID, phone string, st *State) error {
	ctx, span := s.tracer.Start(ctx, "intake.session_put")
	defer span.End()

	data, err := json.Marshal(st)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("intake: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(tenantID, phone), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("intake: failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, tenantID, phone string) error {
	ctx, span := s.tracer.Start(ctx, "intake.session_delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(tenantID, phone)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("intake: failed to delete session: %w", err)
	}
	return nil
}
