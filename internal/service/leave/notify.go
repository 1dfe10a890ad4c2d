package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
)

type notificationText struct {
	title   string
	message string
}

func textFor(t notification.NotificationType, requester employee.Employee, request leave.LeaveRequest) notificationText {
	span := request.StartDate.Format(validator.DateLayout) + " to " + request.EndDate.Format(validator.DateLayout)

	switch t {
	case notification.TypeLeaveApplied:
		return notificationText{
			title:   "Leave request from " + requester.FullName,
			message: fmt.Sprintf("%s applied for %s day(s) of leave, %s.", requester.FullName, request.Days, span),
		}
	case notification.TypeLeaveTLApproved:
		return notificationText{
			title:   "Leave request awaiting HR approval",
			message: fmt.Sprintf("%s's leave (%s) was approved by their team lead.", requester.FullName, span),
		}
	case notification.TypeLeaveTLRejected:
		return notificationText{
			title:   "Leave rejected by TL",
			message: fmt.Sprintf("Your leave request for %s was rejected by your team lead.", span),
		}
	case notification.TypeLeaveHRApproved:
		return notificationText{
			title:   "Leave approved",
			message: fmt.Sprintf("Your leave request for %s was approved.", span),
		}
	case notification.TypeLeaveHRRejected:
		return notificationText{
			title:   "Leave rejected by HR",
			message: fmt.Sprintf("Your leave request for %s was rejected by HR.", span),
		}
	}
	return notificationText{title: "Leave request update", message: span}
}

// buildNotifications makes one record per recipient for a single event.
func buildNotifications(
	t notification.NotificationType,
	recipients []string,
	sender *string,
	requester employee.Employee,
	request leave.LeaveRequest,
	remarks *string,
	now func() time.Time,
) []*notification.Notification {
	text := textFor(t, requester, request)
	createdAt := now()

	out := make([]*notification.Notification, 0, len(recipients))
	seen := make(map[string]struct{}, len(recipients))
	for _, id := range recipients {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		data := map[string]any{
			"leave_request_id": request.ID,
			"status":           string(request.Status),
		}
		if remarks != nil {
			data["remarks"] = *remarks
		}
		out = append(out, &notification.Notification{
			RecipientID: id,
			SenderID:    sender,
			Type:        t,
			Title:       text.title,
			Message:     text.message,
			Data:        data,
			CreatedAt:   createdAt,
		})
	}
	return out
}

// recipientsFor resolves a transition audience to employee ids.
func (l *LeaveServiceImpl) recipientsFor(ctx context.Context, audience leave.Audience, requester employee.Employee) ([]string, error) {
	switch audience {
	case leave.AudienceRequester:
		return []string{requester.ID}, nil
	case leave.AudienceHRPool:
		pool, err := l.EmployeeRepository.ListActiveByRoles(ctx, employee.HRPoolRoles...)
		if err != nil {
			return nil, fmt.Errorf("list hr pool: %w", err)
		}
		ids := make([]string, len(pool))
		for i, e := range pool {
			ids[i] = e.ID
		}
		return ids, nil
	}
	return nil, fmt.Errorf("unknown notification audience %q", audience)
}
