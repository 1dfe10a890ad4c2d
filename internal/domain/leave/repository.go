package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	GetByID(ctx context.Context, id string) (LeaveType, error)
}

// StatusChange is a compare-and-swap on a request's status.
type StatusChange struct {
	RequestID string
	From      LeaveRequestStatus
	To        LeaveRequestStatus
	Stage     Approver
	ActorID   string
	Remarks   *string
	ActedAt   time.Time
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, filter LeaveRequestFilter) ([]LeaveRequest, error)
	// ListAwaitingTeamLead returns applied requests of teamLeadID's reports.
	ListAwaitingTeamLead(ctx context.Context, teamLeadID string) ([]LeaveRequest, error)
	ListByStatus(ctx context.Context, status LeaveRequestStatus) ([]LeaveRequest, error)
	HasActiveOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	// UpdateStatus returns ErrLeaveRequestAlreadyProcessed when the stored
	// status no longer equals change.From.
	UpdateStatus(ctx context.Context, change StatusChange) error
}

type DebitOutcome string

const (
	DebitApplied   DebitOutcome = "applied"
	DebitNoBalance DebitOutcome = "no_balance"
	DebitDuplicate DebitOutcome = "duplicate"
)

// LeaveBalanceRepository - interface for leave_balances table
type LeaveBalanceRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error)
	GetByEmployeeAndType(ctx context.Context, employeeID, leaveTypeID string) (LeaveBalance, error)
	// Debit adds days to used once per leaveRequestID.
	Debit(ctx context.Context, employeeID, leaveTypeID, leaveRequestID string, days decimal.Decimal) (DebitOutcome, error)
}
