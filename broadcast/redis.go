package broadcast

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ChannelPattern matches every game channel.
const ChannelPattern = "game:*"

// RedisPublisher publishes envelopes with PUBLISH so every instance's Relay
// can hand them to its local hub.
type RedisPublisher struct {
	client redis.UniversalClient
}

var _ Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	env, err := NewEnvelope(channel, event, payload)
	if err != nil {
		return err
	}
	data, err := env.Encode()
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish %s to %s", event, channel)
	}
	return nil
}

// Relay forwards Redis pub/sub messages on game channels into a local Hub.
type Relay struct {
	client redis.UniversalClient
	hub    *Hub
	logger *slog.Logger
}

func NewRelay(client redis.UniversalClient, hub *Hub, logger *slog.Logger) *Relay {
	return &Relay{client: client, hub: hub, logger: logger}
}

// Run subscribes and forwards until ctx is cancelled. ready, if non-nil, is
// closed once the subscription is confirmed.
func (r *Relay) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := r.client.PSubscribe(ctx, ChannelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return errors.Wrap(err, "failed to subscribe to game channels")
	}
	if ready != nil {
		close(ready)
	}
	r.logger.Info("relay subscribed", slog.String("pattern", ChannelPattern))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			env, err := DecodeEnvelope([]byte(msg.Payload))
			if err != nil {
				r.logger.Warn("dropping malformed relay message",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()))
				continue
			}
			env.Channel = msg.Channel
			if err := r.hub.Deliver(env); err != nil {
				r.logger.Warn("relay delivery failed",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()))
			}
		}
	}
}
