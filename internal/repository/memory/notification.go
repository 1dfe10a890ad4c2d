package memory

import (
	"context"

	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/google/uuid"
)

type notificationRepository struct {
	s *Store
}

func NewNotificationRepository(s *Store) notification.Repository {
	return &notificationRepository{s: s}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	defer r.s.acquire(ctx)()

	for _, n := range notifications {
		if n.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			n.ID = id.String()
		}
		stored := *n
		r.s.notifications = append(r.s.notifications, &stored)
	}
	return nil
}
