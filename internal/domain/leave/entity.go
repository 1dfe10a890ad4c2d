package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID        string
	Name      string
	Code      *string
	IsActive  bool
	CreatedAt time.Time
}

// LeaveBalance is the per-employee, per-type ledger row.
type LeaveBalance struct {
	ID             string
	EmployeeID     string
	LeaveTypeID    string
	TotalAllocated decimal.Decimal
	Used           decimal.Decimal
	UpdatedAt      time.Time

	// Relationships (for responses)
	LeaveTypeName *string
}

func (b LeaveBalance) Remaining() decimal.Decimal {
	return b.TotalAllocated.Sub(b.Used)
}

type LeaveRequestStatus string

const (
	StatusApplied    LeaveRequestStatus = "applied"
	StatusTLApproved LeaveRequestStatus = "tl_approved"
	StatusTLRejected LeaveRequestStatus = "tl_rejected"
	StatusHRApproved LeaveRequestStatus = "hr_approved"
	StatusHRRejected LeaveRequestStatus = "hr_rejected"
)

// AllStatuses lists every state in workflow order.
var AllStatuses = []LeaveRequestStatus{
	StatusApplied,
	StatusTLApproved,
	StatusTLRejected,
	StatusHRApproved,
	StatusHRRejected,
}

func (s LeaveRequestStatus) IsValid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsFinal reports whether no transition leaves s.
func (s LeaveRequestStatus) IsFinal() bool {
	return s == StatusTLRejected || s == StatusHRApproved || s == StatusHRRejected
}

// IsActive reports whether a request in state s still blocks its dates.
func (s LeaveRequestStatus) IsActive() bool {
	return s == StatusApplied || s == StatusTLApproved || s == StatusHRApproved
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string

	StartDate time.Time
	EndDate   time.Time
	StartHalf bool // first day starts at midday
	EndHalf   bool // last day ends at midday
	Days      decimal.Decimal

	Reason string
	Status LeaveRequestStatus

	// TLID is the requester's team lead at apply time.
	TLID      *string
	TLRemarks *string
	TLActedAt *time.Time

	HRID      *string
	HRRemarks *string
	HRActedAt *time.Time

	AppliedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	LeaveTypeName *string
	EmployeeName  *string
}
