package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("leave-workflow")

// Policy holds the tunable leave rules.
type Policy struct {
	// AllowPastStart accepts requests whose start date is before today.
	AllowPastStart bool
	// Location decides which calendar day "today" is.
	Location *time.Location
}

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveTypeRepository
	leave.LeaveRequestRepository
	leave.LeaveBalanceRepository
	employee.EmployeeRepository
	notifications notification.Repository
	sink          notification.Sink
	policy        Policy
	now           func() time.Time
}

// Option customises LeaveServiceImpl.
type Option func(*LeaveServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *LeaveServiceImpl) { l.now = now }
}

func NewLeaveService(
	tx database.Transactor,
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveRequestRepository leave.LeaveRequestRepository,
	leaveBalanceRepository leave.LeaveBalanceRepository,
	employeeRepository employee.EmployeeRepository,
	notificationRepository notification.Repository,
	sink notification.Sink,
	policy Policy,
	opts ...Option,
) leave.LeaveService {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	l := &LeaveServiceImpl{
		tx:                     tx,
		LeaveTypeRepository:    leaveTypeRepository,
		LeaveRequestRepository: leaveRequestRepository,
		LeaveBalanceRepository: leaveBalanceRepository,
		EmployeeRepository:     employeeRepository,
		notifications:          notificationRepository,
		sink:                   sink,
		policy:                 policy,
		now:                    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// today is the current business date as a UTC midnight, comparable with
// parsed request dates.
func (l *LeaveServiceImpl) today() time.Time {
	y, m, d := l.now().In(l.policy.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// deliver hands committed notifications to the sink. Failures never reach
// the caller.
func (l *LeaveServiceImpl) deliver(ctx context.Context, outbox []*notification.Notification) {
	if len(outbox) == 0 || l.sink == nil {
		return
	}
	if err := l.sink.Send(ctx, outbox); err != nil {
		slog.WarnContext(ctx, "notification enqueue failed", "error", err, "count", len(outbox))
	}
}

// GetRequest implements leave.LeaveService. The requester, their team lead
// and the HR pool may read a request.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, actorID, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := l.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.EmployeeID == actorID {
		return leave.ToLeaveRequestResponse(request), nil
	}

	actor, err := l.EmployeeRepository.GetByID(ctx, actorID)
	if err != nil {
		return leave.LeaveRequestResponse{}, leave.ErrNotVisible
	}
	requester, err := l.EmployeeRepository.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("load requester: %w", err)
	}
	if !leave.ApproverTeamLead.Holds(actor, requester) && !leave.ApproverHR.Holds(actor, requester) {
		return leave.LeaveRequestResponse{}, leave.ErrNotVisible
	}
	return leave.ToLeaveRequestResponse(request), nil
}

// ListMyRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMyRequests(ctx context.Context, employeeID string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequestResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, leave.ErrInvalidStatusFilter
	}
	requests, err := l.LeaveRequestRepository.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

// ListPending implements leave.LeaveService. Team leads see applied
// requests of their reports; the HR pool also sees every tl_approved one.
func (l *LeaveServiceImpl) ListPending(ctx context.Context, actorID string) ([]leave.LeaveRequestResponse, error) {
	actor, err := l.EmployeeRepository.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	pending, err := l.LeaveRequestRepository.ListAwaitingTeamLead(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if actor.IsHRPool() {
		awaitingHR, err := l.LeaveRequestRepository.ListByStatus(ctx, leave.StatusTLApproved)
		if err != nil {
			return nil, err
		}
		pending = append(pending, awaitingHR...)
	}

	out := make([]leave.LeaveRequest, 0, len(pending))
	for _, r := range pending {
		if r.EmployeeID != actor.ID {
			out = append(out, r)
		}
	}
	return toResponses(out), nil
}

// ListMyBalances implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMyBalances(ctx context.Context, employeeID string) ([]leave.LeaveBalanceResponse, error) {
	balances, err := l.LeaveBalanceRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	out := make([]leave.LeaveBalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = leave.ToLeaveBalanceResponse(b)
	}
	return out, nil
}

func toResponses(requests []leave.LeaveRequest) []leave.LeaveRequestResponse {
	out := make([]leave.LeaveRequestResponse, len(requests))
	for i, r := range requests {
		out[i] = leave.ToLeaveRequestResponse(r)
	}
	return out
}
