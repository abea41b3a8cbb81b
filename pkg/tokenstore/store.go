// Package tokenstore хранит короткоживущие значения (OAuth state, сессии) по непрозрачному токену.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается, если токен не существует или истёк
var ErrNotFound = errors.New("tokenstore: token not found")

// Store хранилище значений с TTL
type Store interface {
	Put(ctx context.Context, token string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, token string) ([]byte, error)
	// Take возвращает значение и удаляет токен (одноразовое использование)
	Take(ctx context.Context, token string) ([]byte, error)
	Delete(ctx context.Context, token string) error
}
