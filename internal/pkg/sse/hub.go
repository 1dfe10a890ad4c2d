package sse

import (
	"sync"
)

// subscriberBuffer is the per-listener backlog before events are dropped.
const subscriberBuffer = 16

// Event is one message pushed to a recipient's listeners.
type Event struct {
	RecipientID string
	Event       string
	Data        any
}

// Hub fans events out to the live listeners of each recipient.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for recipientID. The returned cleanup
// unregisters it and closes the channel; calling it twice is safe.
func (h *Hub) Subscribe(recipientID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.subscribers[recipientID] == nil {
		h.subscribers[recipientID] = make(map[chan Event]struct{})
	}
	h.subscribers[recipientID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[recipientID], ch)
			close(ch)
			if len(h.subscribers[recipientID]) == 0 {
				delete(h.subscribers, recipientID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers event to every listener of recipientID and reports how
// many received it. Full listeners are skipped.
func (h *Hub) Publish(recipientID string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.RecipientID = recipientID
	delivered := 0
	for ch := range h.subscribers[recipientID] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) SubscriberCount(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[recipientID])
}

// TotalSubscribers counts listeners across all recipients.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
