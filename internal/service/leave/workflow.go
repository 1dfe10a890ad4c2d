package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/apperror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Act implements leave.LeaveService. The row lock, status swap, balance
// debit and notification rows share one transaction; delivery happens after
// commit.
func (l *LeaveServiceImpl) Act(ctx context.Context, req leave.ActOnLeaveRequest) (leave.ActResponse, error) {
	ctx, span := tracer.Start(ctx, "leave.Act", trace.WithAttributes(
		attribute.String("leave_request.id", req.RequestID),
		attribute.String("leave.action", string(req.Action)),
		attribute.String("actor.id", req.ActorID),
	))
	defer span.End()

	result, outbox, err := l.act(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if kind := apperror.KindOf(err); kind != apperror.KindUnknown {
			slog.InfoContext(ctx, "leave action refused",
				"leave_request_id", req.RequestID,
				"actor_id", req.ActorID,
				"action", req.Action,
				"kind", kind,
				"error", err,
			)
		}
		return leave.ActResponse{}, err
	}

	span.SetAttributes(attribute.String("leave.status", string(result.Status)))
	l.deliver(ctx, outbox)
	return result, nil
}

func (l *LeaveServiceImpl) act(ctx context.Context, req leave.ActOnLeaveRequest) (leave.ActResponse, []*notification.Notification, error) {
	if err := req.Validate(); err != nil {
		return leave.ActResponse{}, nil, err
	}

	var remarks *string
	if trimmed := strings.TrimSpace(req.Remarks); trimmed != "" {
		remarks = &trimmed
	}

	var (
		result leave.ActResponse
		outbox []*notification.Notification
	)
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := l.LeaveRequestRepository.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}

		actor, err := l.EmployeeRepository.GetByID(ctx, req.ActorID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return leave.ErrNotApprover
			}
			return fmt.Errorf("load actor: %w", err)
		}
		requester, err := l.EmployeeRepository.GetByID(ctx, request.EmployeeID)
		if err != nil {
			return fmt.Errorf("load requester: %w", err)
		}

		transition, err := leave.Authorize(actor, requester, request.Status, req.Action)
		if err != nil {
			return err
		}

		actedAt := l.now()
		if err := l.LeaveRequestRepository.UpdateStatus(ctx, leave.StatusChange{
			RequestID: request.ID,
			From:      transition.From,
			To:        transition.To,
			Stage:     transition.Approver,
			ActorID:   actor.ID,
			Remarks:   remarks,
			ActedAt:   actedAt,
		}); err != nil {
			return err
		}
		request.Status = transition.To

		if transition.Debit {
			outcome, err := l.LeaveBalanceRepository.Debit(ctx, request.EmployeeID, request.LeaveTypeID, request.ID, request.Days)
			if err != nil {
				return fmt.Errorf("debit leave balance: %w", err)
			}
			switch outcome {
			case leave.DebitApplied:
				result.BalanceDebited = true
			case leave.DebitNoBalance:
				slog.InfoContext(ctx, "no leave balance to debit",
					"leave_request_id", request.ID,
					"employee_id", request.EmployeeID,
					"leave_type_id", request.LeaveTypeID,
				)
			case leave.DebitDuplicate:
				slog.WarnContext(ctx, "leave balance already debited", "leave_request_id", request.ID)
			}
		}

		recipients, err := l.recipientsFor(ctx, transition.Notify, requester)
		if err != nil {
			return err
		}
		outbox = buildNotifications(transition.NotificationType, recipients, &actor.ID, requester, request, remarks, l.now)
		if err := l.notifications.CreateBatch(ctx, outbox); err != nil {
			return fmt.Errorf("store notifications: %w", err)
		}

		updated, err := l.LeaveRequestRepository.GetByID(ctx, request.ID)
		if err != nil {
			return err
		}

		result.Status = updated.Status
		result.Request = leave.ToLeaveRequestResponse(updated)
		result.Notified = make([]string, len(outbox))
		for i, n := range outbox {
			result.Notified[i] = n.RecipientID
		}

		slog.InfoContext(ctx, "leave request transitioned",
			"leave_request_id", request.ID,
			"actor_id", actor.ID,
			"from", transition.From,
			"to", transition.To,
		)
		return nil
	})
	if err != nil {
		return leave.ActResponse{}, nil, err
	}
	return result, outbox, nil
}
