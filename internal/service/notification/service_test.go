package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	fail      bool
}

func (p *fakePublisher) Publish(_ context.Context, n *notification.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, n.ID)
	return nil
}

func (p *fakePublisher) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.published...)
}

func note(id, recipient string) *notification.Notification {
	return &notification.Notification{
		ID:          id,
		RecipientID: recipient,
		Type:        notification.TypeLeaveApplied,
		Title:       "Leave request",
		CreatedAt:   time.Now(),
	}
}

func TestService_DeliversToSubscriberAndPublisher(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewNotificationService(sse.NewHub(), pub, Config{FlushInterval: 10 * time.Millisecond, WorkerCount: 1})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, cleanup := svc.Subscribe(ctx, "tl")
	defer cleanup()

	require.NoError(t, svc.Send(ctx, []*notification.Notification{note("n1", "tl"), note("n2", "hr")}))

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "n1", ev.Data.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	assert.Eventually(t, func() bool { return len(pub.ids()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestService_PublisherFailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{fail: true}
	svc := NewNotificationService(sse.NewHub(), pub, Config{FlushInterval: 10 * time.Millisecond})

	assert.NoError(t, svc.Send(context.Background(), []*notification.Notification{note("n1", "tl")}))
	svc.Stop()
}

type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) Publish(ctx context.Context, _ *notification.Notification) error {
	select {
	case p.entered <- struct{}{}:
	default:
	}
	<-p.release
	return nil
}

func TestService_QueueFull(t *testing.T) {
	pub := &blockingPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	svc := NewNotificationService(sse.NewHub(), pub, Config{QueueSize: 1, BatchSize: 1, WorkerCount: 1})
	defer svc.Stop()
	defer close(pub.release)

	ctx := context.Background()
	require.NoError(t, svc.Send(ctx, []*notification.Notification{note("n1", "tl")}))
	<-pub.entered

	err := svc.Send(ctx, []*notification.Notification{note("n2", "tl"), note("n3", "tl")})
	assert.ErrorIs(t, err, notification.ErrQueueFull)
}

func TestService_StopDrainsAndRejects(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewNotificationService(sse.NewHub(), pub, Config{FlushInterval: time.Hour, WorkerCount: 1})

	require.NoError(t, svc.Send(context.Background(), []*notification.Notification{note("n1", "tl")}))
	svc.Stop()
	svc.Stop()

	assert.Equal(t, []string{"n1"}, pub.ids())
	assert.ErrorIs(t, svc.Send(context.Background(), []*notification.Notification{note("n2", "tl")}), notification.ErrDispatcherStopped)
}
