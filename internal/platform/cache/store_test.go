package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Minute), mr
}

func TestStoreFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("miss fills and caches", func(t *testing.T) {
		store, mr := newTestStore(t)
		calls := 0
		fill := func(context.Context) ([]byte, error) {
			calls++
			return []byte(`{"sales":[]}`), nil
		}

		got, err := store.Fetch(ctx, "sales:list:all", fill)
		require.NoError(t, err)
		assert.Equal(t, `{"sales":[]}`, string(got))
		assert.Equal(t, 1, calls)
		assert.True(t, mr.Exists("sales:list:all"))

		// Second read is served from the cache.
		got, err = store.Fetch(ctx, "sales:list:all", fill)
		require.NoError(t, err)
		assert.Equal(t, `{"sales":[]}`, string(got))
		assert.Equal(t, 1, calls)
	})

	t.Run("fill errors are not cached", func(t *testing.T) {
		store, mr := newTestStore(t)
		boom := errors.New("boom")

		_, err := store.Fetch(ctx, "sales:id:1", func(context.Context) ([]byte, error) {
			return nil, boom
		})
		require.ErrorIs(t, err, boom)
		assert.False(t, mr.Exists("sales:id:1"))
	})

	t.Run("nil store degrades to fill", func(t *testing.T) {
		var store *Store
		got, err := store.Fetch(ctx, "k", func(context.Context) ([]byte, error) {
			return []byte("x"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "x", string(got))
	})

	t.Run("redis outage degrades to fill", func(t *testing.T) {
		store, mr := newTestStore(t)
		mr.Close()

		got, err := store.Fetch(ctx, "k", func(context.Context) ([]byte, error) {
			return []byte("fresh"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(got))
	})
}

func TestStoreInvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	fill := func(payload string) func(context.Context) ([]byte, error) {
		return func(context.Context) ([]byte, error) { return []byte(payload), nil }
	}
	_, err := store.Fetch(ctx, "sales:list:all", fill("a"))
	require.NoError(t, err)
	_, err = store.Fetch(ctx, "sales:id:1", fill("b"))
	require.NoError(t, err)
	_, err = store.Fetch(ctx, "products:list:all", fill("c"))
	require.NoError(t, err)

	require.NoError(t, store.InvalidatePrefix(ctx, "sales:"))

	assert.False(t, mr.Exists("sales:list:all"))
	assert.False(t, mr.Exists("sales:id:1"))
	assert.True(t, mr.Exists("products:list:all"))

	// Invalidating an empty namespace is a no-op.
	require.NoError(t, store.InvalidatePrefix(ctx, "sales:"))
}
