package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultDedupTTL = time.Hour

// Deduper 基于 SETNX 的去重：同一 handler + id 在 ttl 内只放行一次
type Deduper struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Deduper {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func dedupKey(handler string, id int64) string {
	return fmt.Sprintf("ledgerbot:dedup:%s:%d", handler, id)
}

// AcquireOnce reports whether this is the first time handler sees id.
// When redis is unreachable every update is let through.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, id int64) bool {
	key := dedupKey(handler, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.Int64("id", id),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated update",
			zap.String("handler", handler),
			zap.Int64("id", id),
			zap.String("dedup_key", key),
		)
	}
	return ok
}

// Ping reports whether redis is reachable.
func (d *Deduper) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}
