package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"loan-referral/form"
)

type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSessionStore(client *redis.Client, prefix string) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: prefix}
}

func (s *RedisSessionStore) key(id string) string { return s.prefix + "session:" + id }

func (s *RedisSessionStore) Load(ctx context.Context, id string) (form.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return form.Snapshot{}, ErrSessionNotFound
	}
	if err != nil {
		return form.Snapshot{}, fmt.Errorf("load session %s: %w", id, err)
	}

	var snap form.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return form.Snapshot{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return snap, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, id string, snap form.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(id), data, ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
