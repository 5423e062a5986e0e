package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements Limiter on a Redis sorted set per (key, kind).
//
// Each attempt is a member scored by its unix-nano timestamp. Every access
// prunes members older than the retention horizon inside the same MULTI/EXEC
// pipeline, so the structure never grows unbounded and concurrent Reserve
// calls serialize on the Redis side.
type RedisLimiter struct {
	client  *redis.Client
	prefix  string
	horizon time.Duration
}

// NewRedis returns a RedisLimiter with the given retention horizon.
func NewRedis(client *redis.Client, horizon time.Duration) *RedisLimiter {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	return &RedisLimiter{
		client:  client,
		prefix:  "ratelimit:",
		horizon: horizon,
	}
}

func (r *RedisLimiter) redisKey(key string, kind Kind) string {
	return r.prefix + string(kind) + ":" + key
}

// Reserve records an attempt and returns the in-window count and oldest entry.
func (r *RedisLimiter) Reserve(ctx context.Context, key string, kind Kind, now time.Time, window time.Duration) (int, time.Time, error) {
	rk := r.redisKey(key, kind)
	cutoff := now.Add(-r.horizon).UnixNano()
	windowMin := strconv.FormatInt(now.Add(-window).UnixNano(), 10)
	windowMax := strconv.FormatInt(now.UnixNano(), 10)

	var (
		countCmd  *redis.IntCmd
		oldestCmd *redis.ZSliceCmd
	)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, rk, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, rk, redis.Z{
			Score:  float64(now.UnixNano()),
			Member: uuid.NewString(),
		})
		countCmd = pipe.ZCount(ctx, rk, windowMin, windowMax)
		oldestCmd = pipe.ZRangeByScoreWithScores(ctx, rk, &redis.ZRangeBy{
			Min: windowMin, Max: windowMax, Count: 1,
		})
		pipe.PExpire(ctx, rk, r.horizon)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit reserve: %w", err)
	}

	return int(countCmd.Val()), oldestOf(oldestCmd.Val()), nil
}

// Count returns the in-window count and oldest entry without recording.
func (r *RedisLimiter) Count(ctx context.Context, key string, kind Kind, now time.Time, window time.Duration) (int, time.Time, error) {
	rk := r.redisKey(key, kind)
	windowMin := strconv.FormatInt(now.Add(-window).UnixNano(), 10)
	windowMax := strconv.FormatInt(now.UnixNano(), 10)

	var (
		countCmd  *redis.IntCmd
		oldestCmd *redis.ZSliceCmd
	)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		countCmd = pipe.ZCount(ctx, rk, windowMin, windowMax)
		oldestCmd = pipe.ZRangeByScoreWithScores(ctx, rk, &redis.ZRangeBy{
			Min: windowMin, Max: windowMax, Count: 1,
		})
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit count: %w", err)
	}

	return int(countCmd.Val()), oldestOf(oldestCmd.Val()), nil
}

// Last returns the most recent recorded attempt, or the zero time.
func (r *RedisLimiter) Last(ctx context.Context, key string, kind Kind) (time.Time, error) {
	vals, err := r.client.ZRevRangeWithScores(ctx, r.redisKey(key, kind), 0, 0).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("ratelimit last: %w", err)
	}

	return oldestOf(vals), nil
}

func oldestOf(zs []redis.Z) time.Time {
	if len(zs) == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(zs[0].Score))
}
