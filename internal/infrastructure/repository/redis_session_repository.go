package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopify-oauth-app/internal/domain"
	"shopify-oauth-app/internal/ports"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces session keys
const DefaultRedisKeyPrefix = "shopify_oauth:session:"

// RedisSessionRepository implements SessionRepository using Redis. Expiry is
// delegated to key TTLs.
type RedisSessionRepository struct {
	client    redis.UniversalClient
	keyPrefix string
	now       func() time.Time
}

// NewRedisSessionRepository creates a Redis session repository on an existing client
func NewRedisSessionRepository(client redis.UniversalClient, keyPrefix string) ports.SessionRepository {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisSessionRepository{
		client:    client,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

// NewRedisClient parses url and checks connectivity
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func (r *RedisSessionRepository) key(id string) string {
	return r.keyPrefix + id
}

// Get retrieves a session by ID
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.Expired(r.now()) {
		return nil, domain.ErrSessionNotFound
	}

	return &session, nil
}

// Save stores the session with a TTL matching its expiry
func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, session.ID)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(session.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete deletes a session by ID
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
