package notification

import (
	"context"
)

// Repository persists notification records. Inbox reads live elsewhere.
type Repository interface {
	CreateBatch(ctx context.Context, notifications []*Notification) error
}
