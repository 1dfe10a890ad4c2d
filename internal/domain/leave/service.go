package leave

import (
	"context"
)

type LeaveService interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	Act(ctx context.Context, req ActOnLeaveRequest) (ActResponse, error)

	GetRequest(ctx context.Context, actorID, requestID string) (LeaveRequestResponse, error)
	ListMyRequests(ctx context.Context, employeeID string, filter LeaveRequestFilter) ([]LeaveRequestResponse, error)
	// ListPending returns requests waiting on actorID's decision.
	ListPending(ctx context.Context, actorID string) ([]LeaveRequestResponse, error)
	ListMyBalances(ctx context.Context, employeeID string) ([]LeaveBalanceResponse, error)
}
