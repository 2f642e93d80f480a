package repository

import (
	"context"
	"time"
)

// CacheRepository stores computed results keyed by a canonical request.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
