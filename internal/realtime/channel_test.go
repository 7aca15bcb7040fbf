package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type published struct {
	topic   string
	payload []byte
}

type capturePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, payload: payload})
	return nil
}

func (p *capturePublisher) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.msgs...)
}

func closeChannel(t *testing.T, c *Channel) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Close(ctx))
}

func sampleNotification() models.Notification {
	projectID := uint64(3)
	return models.Notification{
		ID:          42,
		RecipientID: 7,
		ActivityID:  9,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Activity: models.Activity{
			ID:         9,
			ActorID:    1,
			Verb:       models.VerbCommented,
			TargetKind: models.TargetTask,
			TargetID:   11,
			ProjectID:  &projectID,
			Actor:      models.User{ID: 1, Email: "alice@example.com", FirstName: "Alice"},
		},
	}
}

func TestTopicForUser(t *testing.T) {
	assert.Equal(t, "user_7", TopicForUser(7))
}

func TestChannel_PushPublishesEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	c := NewChannel(pub, 8, nil)

	c.Push(sampleNotification())
	closeChannel(t, c)

	msgs := pub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "user_7", msgs[0].topic)

	var body struct {
		Type string `json:"type"`
		Data struct {
			ID       uint64 `json:"id"`
			IsRead   bool   `json:"is_read"`
			Activity struct {
				Verb   string `json:"verb"`
				Target struct {
					Kind string `json:"kind"`
					ID   uint64 `json:"id"`
				} `json:"target"`
				Actor struct {
					Email string `json:"email"`
				} `json:"actor"`
			} `json:"activity"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].payload, &body))
	assert.Equal(t, "send_notification", body.Type)
	assert.Equal(t, uint64(42), body.Data.ID)
	assert.False(t, body.Data.IsRead)
	assert.Equal(t, "commented", body.Data.Activity.Verb)
	assert.Equal(t, "task", body.Data.Activity.Target.Kind)
	assert.Equal(t, uint64(11), body.Data.Activity.Target.ID)
	assert.Equal(t, "alice@example.com", body.Data.Activity.Actor.Email)
}

func TestChannel_PublishErrorIsLoggedNotPropagated(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pub := &capturePublisher{err: errors.New("transport down")}
	c := NewChannel(pub, 8, zap.New(core))

	assert.NotPanics(t, func() { c.Push(sampleNotification()) })
	closeChannel(t, c)

	assert.Equal(t, 1, logs.FilterMessage("live publish failed").Len())
}

func TestChannel_NilIsNoop(t *testing.T) {
	var nilChannel *Channel
	assert.NotPanics(t, func() { nilChannel.Push(sampleNotification()) })

	c := NewChannel(nil, 8, nil)
	assert.NotPanics(t, func() { c.Push(sampleNotification()) })
	closeChannel(t, c)
}

func TestChannel_PushAfterCloseIsDropped(t *testing.T) {
	pub := &capturePublisher{}
	c := NewChannel(pub, 8, nil)
	closeChannel(t, c)

	assert.NotPanics(t, func() { c.Push(sampleNotification()) })
	assert.Empty(t, pub.messages())
}

func TestHub_DeliversToSubscribersOfTopic(t *testing.T) {
	hub := NewHub(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine, closeMine, err := hub.Subscribe(ctx, "user_1")
	require.NoError(t, err)
	defer closeMine()
	other, closeOther, err := hub.Subscribe(ctx, "user_2")
	require.NoError(t, err)
	defer closeOther()

	require.NoError(t, hub.Publish(ctx, "user_1", []byte("hello")))

	select {
	case got := <-mine:
		assert.Equal(t, "hello", string(got))
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive message")
	}

	select {
	case got := <-other:
		t.Fatalf("unexpected message on other topic: %s", got)
	default:
	}
}
