package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type leaveTypeRepository struct {
	s *Store
}

func NewLeaveTypeRepository(s *Store) leave.LeaveTypeRepository {
	return &leaveTypeRepository{s: s}
}

func (r *leaveTypeRepository) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	defer r.s.acquire(ctx)()

	lt, ok := r.s.leaveTypes[id]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

type leaveRequestRepository struct {
	s *Store
}

func NewLeaveRequestRepository(s *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{s: s}
}

// withNames fills the joined read-side fields. Caller holds the lock.
func (r *leaveRequestRepository) withNames(lr leave.LeaveRequest) leave.LeaveRequest {
	if e, ok := r.s.employees[lr.EmployeeID]; ok {
		name := e.FullName
		lr.EmployeeName = &name
	}
	if lt, ok := r.s.leaveTypes[lr.LeaveTypeID]; ok {
		name := lt.Name
		lr.LeaveTypeName = &name
	}
	return lr
}

func (r *leaveRequestRepository) filter(keep func(leave.LeaveRequest) bool, newestFirst bool) []leave.LeaveRequest {
	var out []leave.LeaveRequest
	for _, lr := range r.s.leaveRequests {
		if keep(lr) {
			out = append(out, r.withNames(lr))
		}
	}
	slices.SortFunc(out, func(a, b leave.LeaveRequest) int {
		if newestFirst {
			return b.AppliedAt.Compare(a.AppliedAt)
		}
		return a.AppliedAt.Compare(b.AppliedAt)
	})
	return out
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.s.acquire(ctx)()

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	request.ID = id.String()
	request.UpdatedAt = request.AppliedAt
	r.s.leaveRequests[request.ID] = request
	return request, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	defer r.s.acquire(ctx)()

	lr, ok := r.s.leaveRequests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.withNames(lr), nil
}

// GetByIDForUpdate relies on the transaction already holding the store lock.
func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRequestRepository) ListByEmployee(ctx context.Context, employeeID string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	defer r.s.acquire(ctx)()

	return r.filter(func(lr leave.LeaveRequest) bool {
		return lr.EmployeeID == employeeID && (filter.Status == nil || lr.Status == *filter.Status)
	}, true), nil
}

func (r *leaveRequestRepository) ListAwaitingTeamLead(ctx context.Context, teamLeadID string) ([]leave.LeaveRequest, error) {
	defer r.s.acquire(ctx)()

	return r.filter(func(lr leave.LeaveRequest) bool {
		requester, ok := r.s.employees[lr.EmployeeID]
		return ok && lr.Status == leave.StatusApplied &&
			requester.TeamLeadID != nil && *requester.TeamLeadID == teamLeadID
	}, false), nil
}

func (r *leaveRequestRepository) ListByStatus(ctx context.Context, status leave.LeaveRequestStatus) ([]leave.LeaveRequest, error) {
	defer r.s.acquire(ctx)()

	return r.filter(func(lr leave.LeaveRequest) bool { return lr.Status == status }, false), nil
}

func (r *leaveRequestRepository) HasActiveOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	defer r.s.acquire(ctx)()

	for _, lr := range r.s.leaveRequests {
		if lr.EmployeeID != employeeID || !lr.Status.IsActive() {
			continue
		}
		if !lr.StartDate.After(end) && !lr.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRequestRepository) UpdateStatus(ctx context.Context, change leave.StatusChange) error {
	defer r.s.acquire(ctx)()

	lr, ok := r.s.leaveRequests[change.RequestID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	if lr.Status != change.From {
		return leave.ErrLeaveRequestAlreadyProcessed
	}

	actor := change.ActorID
	actedAt := change.ActedAt
	switch change.Stage {
	case leave.ApproverTeamLead:
		lr.TLID, lr.TLRemarks, lr.TLActedAt = &actor, change.Remarks, &actedAt
	case leave.ApproverHR:
		lr.HRID, lr.HRRemarks, lr.HRActedAt = &actor, change.Remarks, &actedAt
	}
	lr.Status = change.To
	lr.UpdatedAt = change.ActedAt
	r.s.leaveRequests[lr.ID] = lr
	return nil
}

type leaveBalanceRepository struct {
	s *Store
}

func NewLeaveBalanceRepository(s *Store) leave.LeaveBalanceRepository {
	return &leaveBalanceRepository{s: s}
}

func (r *leaveBalanceRepository) withName(b leave.LeaveBalance) leave.LeaveBalance {
	if lt, ok := r.s.leaveTypes[b.LeaveTypeID]; ok {
		name := lt.Name
		b.LeaveTypeName = &name
	}
	return b
}

func (r *leaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveBalance, error) {
	defer r.s.acquire(ctx)()

	var out []leave.LeaveBalance
	for _, b := range r.s.balances {
		if b.EmployeeID == employeeID {
			out = append(out, r.withName(b))
		}
	}
	slices.SortFunc(out, func(a, b leave.LeaveBalance) int {
		switch {
		case a.LeaveTypeID < b.LeaveTypeID:
			return -1
		case a.LeaveTypeID > b.LeaveTypeID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *leaveBalanceRepository) GetByEmployeeAndType(ctx context.Context, employeeID, leaveTypeID string) (leave.LeaveBalance, error) {
	defer r.s.acquire(ctx)()

	b, ok := r.s.balances[balanceKey(employeeID, leaveTypeID)]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
	}
	return r.withName(b), nil
}

func (r *leaveBalanceRepository) Debit(ctx context.Context, employeeID, leaveTypeID, leaveRequestID string, days decimal.Decimal) (leave.DebitOutcome, error) {
	defer r.s.acquire(ctx)()

	key := balanceKey(employeeID, leaveTypeID)
	b, ok := r.s.balances[key]
	if !ok {
		return leave.DebitNoBalance, nil
	}
	if _, done := r.s.debits[leaveRequestID]; done {
		return leave.DebitDuplicate, nil
	}

	r.s.debits[leaveRequestID] = b.ID
	b.Used = b.Used.Add(days)
	b.UpdatedAt = time.Now()
	r.s.balances[key] = b
	return leave.DebitApplied, nil
}
