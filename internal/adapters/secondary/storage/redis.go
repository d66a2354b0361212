package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/core/ports"
)

// keyPrefix namespaces weatherdesk keys inside a shared Redis instance.
const keyPrefix = "weatherdesk:"

// RedisStore is a Redis-backed key/value store. Values are stored without
// expiry; the orchestrator owns their lifecycle.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

// Get retrieves a value by key, mapping redis.Nil to ports.ErrKeyNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	tracer := otel.Tracer("storage")
	ctx, span := tracer.Start(ctx, "RedisStore.Get")

	defer span.End()

	span.SetAttributes(attribute.String("store.key", key))

	value, err := s.client.Get(ctx, keyPrefix+key).Result()

	if errors.Is(err, redis.Nil) {
		return "", ports.ErrKeyNotFound
	}

	if err != nil {
		span.RecordError(err)

		return "", fmt.Errorf("redis get failed: %w", err)
	}

	return value, nil
}

// Set writes a value under key.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	tracer := otel.Tracer("storage")
	ctx, span := tracer.Start(ctx, "RedisStore.Set")

	defer span.End()

	span.SetAttributes(attribute.String("store.key", key))

	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		span.RecordError(err)

		return fmt.Errorf("redis set failed: %w", err)
	}

	s.logger.Debug("state persisted", zap.String("key", key))

	return nil
}
