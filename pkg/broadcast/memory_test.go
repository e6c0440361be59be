package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parishkit/parishkit/pkg/broadcast"
)

func receiveOne[T any](t *testing.T, sub broadcast.Subscriber[T]) broadcast.Message[T] {
	t.Helper()

	select {
	case msg, ok := <-sub.Receive(context.Background()):
		require.True(t, ok, "subscription closed before message arrived")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast message")
		return broadcast.Message[T]{}
	}
}

func TestMemoryBroadcaster(t *testing.T) {
	t.Parallel()

	t.Run("delivers to all subscribers", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](10)
		defer b.Close()

		ctx := context.Background()
		sub1 := b.Subscribe(ctx)
		sub2 := b.Subscribe(ctx)

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"}))

		assert.Equal(t, "hello", receiveOne(t, sub1).Data)
		assert.Equal(t, "hello", receiveOne(t, sub2).Data)
	})

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}))
		// Second message exceeds the buffer and must not block.
		done := make(chan struct{})
		go func() {
			_ = b.Broadcast(ctx, broadcast.Message[int]{Data: 2})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("broadcast blocked on full subscriber buffer")
		}

		assert.Equal(t, 1, receiveOne(t, sub).Data)
	})

	t.Run("context cancellation ends subscription", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](10)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := b.Subscribe(ctx)
		cancel()

		select {
		case _, ok := <-sub.Receive(context.Background()):
			assert.False(t, ok, "channel should be closed after cancellation")
		case <-time.After(time.Second):
			t.Fatal("subscription channel was not closed after context cancellation")
		}
	})

	t.Run("broadcast on closed broadcaster fails", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](10)
		require.NoError(t, b.Close())

		err := b.Broadcast(context.Background(), broadcast.Message[string]{Data: "late"})
		assert.ErrorIs(t, err, broadcast.ErrBroadcasterClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](10)
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())
	})

	t.Run("subscriber close is idempotent", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](10)
		defer b.Close()

		sub := b.Subscribe(context.Background())
		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())

		// A closed subscription signals through its channel, not an error.
		_, open := <-sub.Receive(context.Background())
		assert.False(t, open)
	})
}

func TestConnectRedis(t *testing.T) {
	t.Parallel()

	t.Run("empty URL rejected", func(t *testing.T) {
		t.Parallel()

		_, err := broadcast.ConnectRedis(context.Background(), broadcast.RedisConfig{})
		assert.ErrorIs(t, err, broadcast.ErrEmptyConnectionURL)
	})

	t.Run("malformed URL rejected", func(t *testing.T) {
		t.Parallel()

		_, err := broadcast.ConnectRedis(context.Background(), broadcast.RedisConfig{
			ConnectionURL: "not-a-redis-url",
		})
		require.Error(t, err)
	})
}
