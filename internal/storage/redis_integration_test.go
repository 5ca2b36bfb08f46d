//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := NewRedisStore(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Get(ctx, KeyPresenceState)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyPresenceState, []byte(`{"home":"inside"}`)))
	got, err := store.Get(ctx, KeyPresenceState)
	require.NoError(t, err)
	require.JSONEq(t, `{"home":"inside"}`, string(got))

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	raw := redis.NewClient(opts)
	defer raw.Close()
	n, err := raw.Exists(ctx, "goalfence:"+KeyPresenceState).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	repo := NewRepository(store, nil)
	state, err := repo.PresenceState(ctx)
	require.NoError(t, err)
	require.Len(t, state, 1)

	require.NoError(t, store.Delete(ctx, KeyPresenceState))
	_, err = store.Get(ctx, KeyPresenceState)
	require.ErrorIs(t, err, ErrNotFound)
}
