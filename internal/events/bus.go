// Package events is the in-process publish point for domain events.
//
// Publishing is synchronous and happens after the originating write has
// committed. Handler failures are logged and never reach the publisher.
package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Event is a tagged domain event.
type Event interface {
	EventName() string
}

const (
	NameAssignmentCreated = "assignment.created"
	NameCommentCreated    = "comment.created"
)

// AssignmentCreated fires once per newly created task assignment. ActorID is
// zero when the assigning user is unknown.
type AssignmentCreated struct {
	TaskID  uint64
	UserID  uint64
	ActorID uint64
}

func (AssignmentCreated) EventName() string { return NameAssignmentCreated }

// CommentCreated fires once per new comment.
type CommentCreated struct {
	CommentID uint64
	TaskID    uint64
	AuthorID  uint64
	Content   string
}

func (CommentCreated) EventName() string { return NameCommentCreated }

// Handler consumes one event.
type Handler func(ctx context.Context, e Event) error

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger.Named("events"),
	}
}

// Handle registers h for events named name.
func (b *Bus) Handle(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Subscribe registers a typed handler for events of type E.
func Subscribe[E Event](b *Bus, h func(ctx context.Context, e E) error) {
	var zero E
	b.Handle(zero.EventName(), func(ctx context.Context, e Event) error {
		typed, ok := e.(E)
		if !ok {
			return fmt.Errorf("unexpected event type %T for %s", e, zero.EventName())
		}
		return h(ctx, typed)
	})
}

// Publish runs every handler registered for e in registration order.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[e.EventName()]))
	copy(handlers, b.handlers[e.EventName()])
	b.mu.RUnlock()

	for i, h := range handlers {
		b.run(ctx, e, i, h)
	}
}

func (b *Bus) run(ctx context.Context, e Event, index int, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event", e.EventName()),
				zap.Int("handler", index),
				zap.Any("panic", r),
			)
		}
	}()

	if err := h(ctx, e); err != nil {
		b.logger.Error("event handler failed",
			zap.String("event", e.EventName()),
			zap.Int("handler", index),
			zap.Error(err),
		)
	}
}
