package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Apply implements leave.LeaveService.
func (l *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	ctx, span := tracer.Start(ctx, "leave.Apply", trace.WithAttributes(
		attribute.String("employee.id", req.EmployeeID),
		attribute.String("leave_type.id", req.LeaveTypeID),
	))
	defer span.End()

	created, err := l.apply(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return leave.LeaveRequestResponse{}, err
	}
	span.SetAttributes(attribute.String("leave_request.id", created.ID))
	return leave.ToLeaveRequestResponse(created), nil
}

func (l *LeaveServiceImpl) apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	start, end := req.Dates()

	if !l.policy.AllowPastStart && start.Before(l.today()) {
		return leave.LeaveRequest{}, validator.ValidationErrors{{
			Field:   "start_date",
			Message: "start_date must not be in the past",
		}}
	}

	requester, err := l.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if !requester.IsActive {
		return leave.LeaveRequest{}, employee.ErrEmployeeInactive
	}

	leaveType, err := l.LeaveTypeRepository.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if !leaveType.IsActive {
		return leave.LeaveRequest{}, leave.ErrLeaveTypeInactive
	}

	now := l.now()
	request := leave.LeaveRequest{
		EmployeeID:    requester.ID,
		LeaveTypeID:   leaveType.ID,
		StartDate:     start,
		EndDate:       end,
		StartHalf:     req.StartHalf,
		EndHalf:       req.EndHalf,
		Days:          leave.CountDays(start, end, req.StartHalf, req.EndHalf),
		Reason:        req.Reason,
		Status:        leave.StatusApplied,
		TLID:          requester.TeamLeadID,
		AppliedAt:     now,
		EmployeeName:  &requester.FullName,
		LeaveTypeName: &leaveType.Name,
	}

	var outbox []*notification.Notification
	err = l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Serialises concurrent applications by the same employee so the
		// overlap check and the insert see each other.
		if _, err := l.EmployeeRepository.GetByIDForUpdate(ctx, requester.ID); err != nil {
			return err
		}
		overlap, err := l.LeaveRequestRepository.HasActiveOverlap(ctx, requester.ID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return leave.ErrOverlappingRequest
		}

		created, err := l.LeaveRequestRepository.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("create leave request: %w", err)
		}
		request.ID = created.ID
		request.UpdatedAt = created.UpdatedAt

		if requester.TeamLeadID == nil {
			return nil
		}
		outbox = buildNotifications(
			notification.TypeLeaveApplied,
			[]string{*requester.TeamLeadID},
			&requester.ID,
			requester,
			request,
			nil,
			l.now,
		)
		if err := l.notifications.CreateBatch(ctx, outbox); err != nil {
			return fmt.Errorf("store notifications: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	slog.InfoContext(ctx, "leave request applied",
		"leave_request_id", request.ID,
		"employee_id", requester.ID,
		"days", request.Days.String(),
	)
	l.deliver(ctx, outbox)
	return request, nil
}
