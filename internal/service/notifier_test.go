package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyThatUser(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	a, cancelA, err := hub.Subscribe(ctx, "alice")
	require.NoError(t, err)
	defer cancelA()
	b, cancelB, err := hub.Subscribe(ctx, "bob")
	require.NoError(t, err)
	defer cancelB()

	require.NoError(t, hub.Publish(ctx, "alice"))

	select {
	case <-a:
	case <-time.After(time.Second):
		t.Fatal("alice did not receive a signal")
	}
	select {
	case <-b:
		t.Fatal("bob received alice's signal")
	default:
	}
}

func TestHub_SignalsCoalesce(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, "alice")
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 5; i++ {
		require.NoError(t, hub.Publish(ctx, "alice"))
	}
	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending signal")
	default:
	}
}

func TestHub_CancelClosesAndIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cancel, err := hub.Subscribe(context.Background(), "alice")
	require.NoError(t, err)

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NoError(t, hub.Publish(context.Background(), "alice"))
	assert.Empty(t, hub.subs)
}

func TestFavoritesChannel(t *testing.T) {
	assert.Equal(t, "favorites:u1", FavoritesChannel("u1"))
}

func TestRedisNotifier_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer client.Close()
	n := NewRedisNotifier(client, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, n.Publish(ctx, "u1"))
	_, _, err := n.Subscribe(ctx, "u1")
	assert.Error(t, err)
}
