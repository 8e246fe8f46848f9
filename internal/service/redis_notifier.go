package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const favoritesChannelPrefix = "favorites:"

// RedisNotifier is a Notifier backed by Redis pub/sub, so that every server
// instance pushes snapshots after a write on any other instance.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a RedisNotifier on top of client.
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{client: client, logger: logger}
}

// FavoritesChannel returns the pub/sub channel for userID.
func FavoritesChannel(userID string) string {
	return favoritesChannelPrefix + userID
}

// Publish implements Notifier.
func (n *RedisNotifier) Publish(ctx context.Context, userID string) error {
	if err := n.client.Publish(ctx, FavoritesChannel(userID), "changed").Err(); err != nil {
		return fmt.Errorf("publish favorites change: %w", err)
	}
	return nil
}

// Subscribe implements Notifier. It returns once Redis confirmed the subscription.
func (n *RedisNotifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	ps := n.client.Subscribe(ctx, FavoritesChannel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe favorites: %w", err)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				signal(out)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := ps.Close(); err != nil {
				n.logger.Warn("failed to close favorites subscription", zap.String("user_id", userID), zap.Error(err))
			}
		})
	}
	return out, cancel, nil
}
