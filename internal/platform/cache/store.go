package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Store caches serialised response payloads with a TTL. Concurrent fills for
// the same key are collapsed through singleflight so a cold key hits the
// database once.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewStore builds a Store. A zero ttl means entries never expire; callers
// are expected to invalidate on writes either way.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Fetch returns the cached payload for key, calling fill on a miss and
// storing its result. Redis outages degrade to calling fill directly.
func (s *Store) Fetch(ctx context.Context, key string, fill func(context.Context) ([]byte, error)) ([]byte, error) {
	if s == nil || s.client == nil {
		return fill(ctx)
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		return fill(ctx)
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		payload, err := fill(ctx)
		if err != nil {
			return nil, err
		}
		// Serving the fresh payload matters more than caching it.
		_ = s.client.Set(ctx, key, payload, s.ttl).Err()
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// InvalidatePrefix removes every key under prefix. Used after sale writes to
// drop stale list and detail payloads.
func (s *Store) InvalidatePrefix(ctx context.Context, prefix string) error {
	if s == nil || s.client == nil {
		return nil
	}
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
