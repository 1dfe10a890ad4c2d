package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
)

// AttendanceJobs closes records employees forgot to clock out of and tells
// them and their team lead.
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	employeeRepo      employee.EmployeeRepository
	notificationRepo  notification.Repository
	sink              notification.Sink
	now               func() time.Time
}

func NewAttendanceJobs(
	attendanceService attendance.AttendanceService,
	employeeRepo employee.EmployeeRepository,
	notificationRepo notification.Repository,
	sink notification.Sink,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		employeeRepo:      employeeRepo,
		notificationRepo:  notificationRepo,
		sink:              sink,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("auto_close_stale_attendances", interval, j.AutoCloseStaleAttendances)
}

func (j *AttendanceJobs) AutoCloseStaleAttendances(ctx context.Context) error {
	closed, err := j.attendanceService.CloseStale(ctx)
	if len(closed) > 0 {
		j.notify(ctx, closed)
	}
	if err != nil {
		return fmt.Errorf("close stale attendance: %w", err)
	}
	return nil
}

func (j *AttendanceJobs) notify(ctx context.Context, closed []attendance.AttendanceDay) {
	createdAt := j.now()

	var batch []*notification.Notification
	for _, day := range closed {
		date := day.Date.Format(validator.DateLayout)
		data := map[string]any{
			"attendance_id": day.ID,
			"date":          date,
		}

		batch = append(batch, &notification.Notification{
			RecipientID: day.EmployeeID,
			Type:        notification.TypeAttendanceAutoClosed,
			Title:       "Attendance auto-closed",
			Message:     fmt.Sprintf("Your attendance for %s was closed automatically because no clock-out was recorded.", date),
			Data:        data,
			CreatedAt:   createdAt,
		})

		emp, err := j.employeeRepo.GetByID(ctx, day.EmployeeID)
		if err != nil {
			slog.WarnContext(ctx, "auto-close: employee lookup failed", "employee_id", day.EmployeeID, "error", err)
			continue
		}
		if emp.TeamLeadID == nil {
			continue
		}
		sender := emp.ID
		batch = append(batch, &notification.Notification{
			RecipientID: *emp.TeamLeadID,
			SenderID:    &sender,
			Type:        notification.TypeAttendanceAutoClosed,
			Title:       "Team attendance auto-closed",
			Message:     fmt.Sprintf("%s's attendance for %s was closed automatically.", emp.FullName, date),
			Data:        data,
			CreatedAt:   createdAt,
		})
	}

	if err := j.notificationRepo.CreateBatch(ctx, batch); err != nil {
		slog.ErrorContext(ctx, "auto-close: store notifications", "error", err)
		return
	}
	if err := j.sink.Send(ctx, batch); err != nil {
		slog.WarnContext(ctx, "auto-close: notification delivery failed", "error", err)
	}
}
