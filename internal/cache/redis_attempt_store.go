package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "leadintake:submit:"
	maxWatchRetries  = 5
)

// ErrStoreContention is returned when an update keeps losing the WATCH race.
var ErrStoreContention = errors.New("attempt store: too much contention")

// Connect initializes a Redis client from URL or host:port input.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisAttemptStore shares attempt counters between replicas. Each key is a
// hash with count and last_attempt fields and expires ttl after its last
// write, which also takes care of cleanup.
type RedisAttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAttemptStore(client *redis.Client, ttl time.Duration) *RedisAttemptStore {
	return &RedisAttemptStore{client: client, ttl: ttl}
}

// Update reads and writes the entry under WATCH so concurrent submissions
// for the same email can't both slip under the limit.
func (s *RedisAttemptStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	redisKey := attemptKeyPrefix + key

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, redisKey).Result()
		if err != nil {
			return err
		}

		current, found := decodeEntry(data)
		next, write := fn(current, found)
		if !write {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey,
				"count", next.Count,
				"last_attempt", next.LastAttempt.UnixMilli(),
			)
			p.Expire(ctx, redisKey, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, txf, redisKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrStoreContention
}

func decodeEntry(data map[string]string) (models.RateLimitEntry, bool) {
	if len(data) == 0 {
		return models.RateLimitEntry{}, false
	}

	var entry models.RateLimitEntry
	if raw, ok := data["count"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			entry.Count = n
		}
	}
	if raw, ok := data["last_attempt"]; ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			entry.LastAttempt = time.UnixMilli(ms).UTC()
		}
	}
	return entry, true
}
