package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/dto"
	"github.com/yukikurage/project-hub-api/internal/models"
	"go.uber.org/zap"
)

var (
	ErrQueueFull     = errors.New("live queue is full")
	ErrChannelClosed = errors.New("live channel is closed")
)

const publishTimeout = 5 * time.Second

type message struct {
	topic   string
	payload []byte
}

// Channel is the fire-and-forget live delivery path. Push only encodes and
// enqueues; a single worker publishes through a circuit breaker.
type Channel struct {
	publisher Publisher
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger

	queue  chan message
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewChannel starts the worker. A nil publisher yields a channel whose Push
// does nothing.
func NewChannel(publisher Publisher, queueSize int, logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = constants.DefaultLiveQueueSize
	}
	logger = logger.Named("realtime")

	c := &Channel{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan message, queueSize),
		done:      make(chan struct{}),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "live-publish",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	if publisher == nil {
		close(c.done)
		return c
	}

	go c.run()
	return c
}

// Push sends one notification to its recipient's topic. Failures are logged
// and never returned: delivery is best-effort.
func (c *Channel) Push(n models.Notification) {
	if c == nil || c.publisher == nil {
		return
	}

	payload, err := json.Marshal(dto.LiveMessage{
		Type: constants.LiveMessageType,
		Data: dto.ToNotificationDTO(n),
	})
	if err != nil {
		c.logger.Error("failed to encode notification", zap.Uint64("notification_id", n.ID), zap.Error(err))
		return
	}

	if err := c.enqueue(message{topic: TopicForUser(n.RecipientID), payload: payload}); err != nil {
		c.logger.Warn("dropped live notification",
			zap.Uint64("notification_id", n.ID),
			zap.Uint64("recipient_id", n.RecipientID),
			zap.Error(err),
		)
	}
}

func (c *Channel) enqueue(m message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrChannelClosed
	}

	select {
	case c.queue <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

func (c *Channel) run() {
	defer close(c.done)

	for m := range c.queue {
		c.publish(m)
	}
}

func (c *Channel) publish(m message) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.publisher.Publish(ctx, m.topic, m.payload)
	})
	if err != nil {
		c.logger.Warn("live publish failed", zap.String("topic", m.topic), zap.Error(err))
	}
}

// Close stops accepting pushes and waits until the queue is drained or ctx
// expires.
func (c *Channel) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		if c.publisher != nil {
			close(c.queue)
		}
	}
	c.mu.Unlock()

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
