package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type RedisRegistry struct{ rdb *redis.Client }

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry { return &RedisRegistry{rdb: rdb} }

// NewRedisRegistryFromURL parses a redis:// URL and verifies the server answers.
func NewRedisRegistryFromURL(ctx context.Context, redisURL string) (*RedisRegistry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisRegistry{rdb: rdb}, nil
}

func (s *RedisRegistry) keyWebhook(id string) string { return "relay:webhook:" + strings.TrimSpace(id) }

func (s *RedisRegistry) Register(ctx context.Context, reg Registration) error {
	if strings.TrimSpace(reg.WebhookId) == "" {
		return errors.New("registration without webhook id")
	}
	raw, err := json.Marshal(reg)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, s.keyWebhook(reg.WebhookId), raw, 0).Err()
}

func (s *RedisRegistry) Lookup(ctx context.Context, webhookId string) (Registration, error) {
	raw, err := s.rdb.Get(ctx, s.keyWebhook(webhookId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Registration{}, ErrNotRegistered
	}
	if err != nil {
		return Registration{}, err
	}

	var reg Registration
	if err := json.Unmarshal(raw, &reg); err != nil {
		return Registration{}, fmt.Errorf("decode registration %s: %w", webhookId, err)
	}
	return reg, nil
}

func (s *RedisRegistry) Forget(ctx context.Context, webhookId string) error {
	return s.rdb.Del(ctx, s.keyWebhook(webhookId)).Err()
}

func (s *RedisRegistry) Close() error {
	return s.rdb.Close()
}
