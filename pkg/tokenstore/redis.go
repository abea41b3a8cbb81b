package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis хранилище токенов в Redis, общее для всех инстансов сервиса
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis создаёт хранилище; prefix добавляется ко всем ключам
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(token string) string {
	return r.prefix + token
}

func (r *Redis) Put(ctx context.Context, token string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(token), value, ttl).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, token string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tokenstore: redis get: %w", err)
	}
	return value, nil
}

// Take использует GETDEL (Redis >= 6.2)
func (r *Redis) Take(ctx context.Context, token string) ([]byte, error) {
	value, err := r.client.GetDel(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tokenstore: redis getdel: %w", err)
	}
	return value, nil
}

func (r *Redis) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis del: %w", err)
	}
	return nil
}
