package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveApplied    NotificationType = "leave_applied"
	TypeLeaveTLApproved NotificationType = "leave_tl_approved"
	TypeLeaveTLRejected NotificationType = "leave_tl_rejected"
	TypeLeaveHRApproved NotificationType = "leave_hr_approved"
	TypeLeaveHRRejected NotificationType = "leave_hr_rejected"

	TypeAttendanceAutoClosed NotificationType = "attendance_auto_closed"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeaveApplied,
		TypeLeaveTLApproved,
		TypeLeaveTLRejected,
		TypeLeaveHRApproved,
		TypeLeaveHRRejected,
		TypeAttendanceAutoClosed,
	}
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]any
	IsRead      bool
	CreatedAt   time.Time
}
