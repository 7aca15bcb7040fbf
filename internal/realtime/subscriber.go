package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Subscriber opens a stream of payloads for one topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan []byte, func() error, error)
}

// RedisSubscriber is the receiving side of RedisPublisher.
type RedisSubscriber struct {
	client *redis.Client
}

func NewRedisSubscriber(client *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{client: client}
}

// Subscribe returns the payload stream and a close function. The stream ends
// when ctx is cancelled or the close function is called.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan []byte, func() error, error) {
	pubsub := s.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, pubsub.Close, nil
}
