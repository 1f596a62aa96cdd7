package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/sse"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisPublisher publishes JSON encoded events on a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt event.Event) error {
	data, err := encode(evt)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to redis: %w", evt.Name, err)
	}
	return nil
}

// Relay forwards events from the redis channel to the local SSE hub until ctx
// is cancelled, so every API instance can stream events published by any other.
func Relay(ctx context.Context, client *redis.Client, channel string, hub *sse.Hub) error {
	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	slog.Info("Relaying redis events to SSE hub", "channel", channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			evt, err := decode([]byte(msg.Payload))
			if err != nil {
				slog.Warn("Dropping malformed event", "channel", channel, "error", err)
				continue
			}
			hub.Publish(evt.CompanyID, sse.Event{Event: string(evt.Name), Data: evt})
		}
	}
}
