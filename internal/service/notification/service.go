package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/sse"
)

// Config holds dispatcher configuration
type Config struct {
	BatchSize      int           // default: 100
	FlushInterval  time.Duration // default: 1 second
	WorkerCount    int           // default: 2
	QueueSize      int           // default: 1000
	PublishTimeout time.Duration // default: 10 seconds
}

const sseEventName = "notification"

type service struct {
	hub       *sse.Hub
	publisher notification.Publisher
	config    Config

	queue chan *notification.Notification
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	stopCh  chan struct{}
}

// NewNotificationService starts the delivery workers. publisher may be nil,
// in which case notifications only reach live SSE listeners.
func NewNotificationService(hub *sse.Hub, publisher notification.Publisher, cfg Config) notification.Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 10 * time.Second
	}

	s := &service{
		hub:       hub,
		publisher: publisher,
		config:    cfg,
		queue:     make(chan *notification.Notification, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification dispatcher started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
		"external_publisher", publisher != nil,
	)
	return s
}

// Send implements notification.Sink. It never blocks; whatever does not
// fit in the queue is reported with ErrQueueFull.
func (s *service) Send(ctx context.Context, notifications []*notification.Notification) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return notification.ErrDispatcherStopped
	}

	for i, n := range notifications {
		select {
		case s.queue <- n:
		default:
			slog.WarnContext(ctx, "notification queue full", "dropped", len(notifications)-i)
			return notification.ErrQueueFull
		}
	}
	return nil
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]*notification.Notification, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.deliver(id, batch)
		batch = batch[:0]
	}

	for {
		select {
		case n := <-s.queue:
			batch = append(batch, n)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case n := <-s.queue:
					batch = append(batch, n)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *service) deliver(worker int, batch []*notification.Notification) {
	live := 0
	for _, n := range batch {
		live += s.hub.Publish(n.RecipientID, sse.Event{
			Event: sseEventName,
			Data:  notification.ToResponse(n),
		})
	}

	failed := 0
	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.PublishTimeout)
		defer cancel()
		for _, n := range batch {
			if err := s.publisher.Publish(ctx, n); err != nil {
				failed++
				slog.Error("notification publish failed",
					"worker", worker,
					"notification_id", n.ID,
					"recipient_id", n.RecipientID,
					"error", err,
				)
			}
		}
	}

	slog.Debug("notifications delivered",
		"worker", worker,
		"count", len(batch),
		"live_listeners", live,
		"publish_failures", failed,
	)
}

// Subscribe implements notification.Service.
func (s *service) Subscribe(ctx context.Context, recipientID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(recipientID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop rejects further sends, drains the queue and waits for the workers.
func (s *service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("notification dispatcher stopped")
}
