// Package limits provides a Redis-backed sliding-window admitter for
// deployments where several replicas must share one per-client quota.
package limits

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisWindow keeps one sorted set per client, scored by request time.
// On Redis errors it fails open: throttling is protection, not a
// correctness guarantee.
type RedisWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisWindow(client *redis.Client, limit int, window time.Duration) *RedisWindow {
	return &RedisWindow{client: client, limit: limit, window: window}
}

func (r *RedisWindow) Admit(ctx context.Context, key string) bool {
	now := time.Now()
	rkey := "rate:" + key
	cutoff := strconv.FormatInt(now.Add(-r.window).UnixNano(), 10)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "0", cutoff)
	card := pipe.ZCard(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("rate limit check failed, admitting", "error", err)
		return true
	}

	if card.Val() >= int64(r.limit) {
		return false
	}

	r.client.ZAdd(ctx, rkey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	r.client.Expire(ctx, rkey, r.window)
	return true
}
