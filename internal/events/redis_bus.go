package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes envelopes toward the hub process.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// RedisBus implements Publisher over Redis Pub/Sub and exposes the
// subscription side consumed by the websocket hub.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return b.client.Publish(ctx, env.Channel(), data).Err()
}

// Subscribe returns a channel of envelopes for every auction event. The
// returned cancel func closes the underlying pubsub.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Envelope, func() error) {
	pubsub := b.client.PSubscribe(ctx, ChannelPattern)
	out := make(chan Envelope, 256)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pubsub.Close
}
