package realtime

import (
	"context"
	"sync"
)

// Hub is an in-process Publisher and Subscriber for single-instance
// deployments. Slow subscribers lose messages rather than block publishers.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[chan []byte]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		topics: make(map[string]map[chan []byte]struct{}),
		buffer: buffer,
	}
}

func (h *Hub) Publish(ctx context.Context, topic string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[topic] {
		select {
		case sub <- payload:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, topic string) (<-chan []byte, func() error, error) {
	sub := make(chan []byte, h.buffer)

	h.mu.Lock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[chan []byte]struct{})
	}
	h.topics[topic][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	unsubscribe := func() error {
		once.Do(func() {
			close(done)
			h.mu.Lock()
			delete(h.topics[topic], sub)
			if len(h.topics[topic]) == 0 {
				delete(h.topics, topic)
			}
			h.mu.Unlock()
			close(sub)
		})
		return nil
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-done:
		}
	}()

	return sub, unsubscribe, nil
}
