package notification

import (
	"context"
)

// Sink accepts already-persisted notifications for delivery. Send only
// confirms the enqueue; delivery happens asynchronously.
type Sink interface {
	Send(ctx context.Context, notifications []*Notification) error
}

// Publisher pushes a notification to an external channel.
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}

// Service is the delivery side of notifications.
type Service interface {
	Sink

	// Subscribe registers a live listener for recipientID.
	Subscribe(ctx context.Context, recipientID string) (<-chan SSEEvent, func())

	// Stop drains the queue and stops the workers.
	Stop()
}
