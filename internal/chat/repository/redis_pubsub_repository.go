package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EventPublisher the slice of RedisPubSub the router depends on
type EventPublisher interface {
	Publish(channel string, message interface{}) error
}

// RedisPubSub definition redis pub/sub. The router mirrors every broadcast
// through Publish so a second routing process can subscribe; local delivery
// never depends on it.
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish serialize message and publish to channel
func (r *RedisPubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe listen on channel and hand each decoded event to handler until
// ctx is cancelled
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(ev domain.WSEvent)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var ev domain.WSEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					logger.Log.Error("pubsub decode err", zap.String("channel", channel), zap.Error(err))
					continue
				}
				handler(ev)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
