package redis

import (
	"context"
	"fmt"
)

func (r repo) getEventsChannel(roomId string) string {
	return "room:" + roomId + ":events"
}

func (r repo) PublishEvent(ctx context.Context, roomId string, payload []byte) error {
	if err := r.rc.Publish(ctx, r.getEventsChannel(roomId), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// SubscribeEvents returns a channel of raw event payloads for the room.
// The returned func unsubscribes and closes the channel; it is the only
// cancellation primitive for a subscription.
func (r repo) SubscribeEvents(ctx context.Context, roomId string) (<-chan []byte, func(), error) {
	pubsub := r.rc.Subscribe(ctx, r.getEventsChannel(roomId))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to events: %w", err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { pubsub.Close() }, nil
}
