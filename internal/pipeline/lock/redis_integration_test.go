//go:build integration

package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformredis "onboard/internal/platform/redis"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/testutil/containers"
)

func TestRedisLock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	client, err := platformredis.New(ctx, rc.Addr)
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	locker, err := NewRedis(client)
	require.NoError(t, err)

	t.Run("second acquire conflicts", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		release, err := locker.Acquire(ctx, 1)
		require.NoError(t, err)

		_, err = locker.Acquire(ctx, 1)
		assert.ErrorIs(t, err, sentinel.ErrConflict)

		release()
		release, err = locker.Acquire(ctx, 1)
		require.NoError(t, err)
		release()
	})

	t.Run("release only frees own lease", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		release, err := locker.Acquire(ctx, 2)
		require.NoError(t, err)

		// Simulate lease expiry plus takeover by another holder.
		require.NoError(t, client.Set(ctx, "onboard:run:2", "someone-else", 0).Err())
		release()

		val, err := client.Get(ctx, "onboard:run:2").Result()
		require.NoError(t, err)
		assert.Equal(t, "someone-else", val)
	})

	t.Run("locks are per employee", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		r1, err := locker.Acquire(ctx, 10)
		require.NoError(t, err)
		defer r1()

		r2, err := locker.Acquire(ctx, 11)
		require.NoError(t, err)
		defer r2()
	})
}
