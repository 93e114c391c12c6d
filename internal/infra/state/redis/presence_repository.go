package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
)

// RedisPresenceRepository stores one JSON presence record per user under
// <prefix>presence:<user_id>. Records survive process restarts but not a
// Redis flush; the presence service self-heals stale entries on read, so
// no TTL is set.
type RedisPresenceRepository struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisPresenceRepository(client *redis.Client, keyPrefix string) *RedisPresenceRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisPresenceRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "chat:"
	}
	return &RedisPresenceRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisPresenceRepository) presenceKey(userID uint) string {
	return fmt.Sprintf("%spresence:%d", r.keyPrefix, userID)
}

func (r *RedisPresenceRepository) Upsert(ctx context.Context, p *domain.Presence) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("redis: marshal presence for user %d: %w", p.UserID, err)
	}
	key := r.presenceKey(p.UserID)
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set presence %s: %w", key, err)
	}
	return nil
}

func (r *RedisPresenceRepository) Get(ctx context.Context, userID uint) (*domain.Presence, error) {
	key := r.presenceKey(userID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrPresenceNotFound
		}
		return nil, fmt.Errorf("redis: get presence %s: %w", key, err)
	}
	var p domain.Presence
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("redis: unmarshal presence %s: %w", key, err)
	}
	return &p, nil
}
