package leave

import (
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	maxReasonLength  = 1000
	maxRemarksLength = 1000
)

type ApplyLeaveRequest struct {
	EmployeeID  string `json:"-"`
	LeaveTypeID string `json:"leave_type_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StartHalf   bool   `json:"start_half"`
	EndHalf     bool   `json:"end_half"`
	Reason      string `json:"reason"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs.Add("leave_type_id", "leave_type_id is required")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if validator.IsEmpty(r.StartDate) {
		errs.Add("start_date", "start_date is required")
	} else if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}

	end, endOK := validator.IsValidDate(r.EndDate)
	if validator.IsEmpty(r.EndDate) {
		errs.Add("end_date", "end_date is required")
	} else if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}

	if startOK && endOK {
		if end.Before(start) {
			errs.Add("end_date", "end_date must be on or after start_date")
		} else if SpanDays(start, end) > MaxSpanDays {
			errs.Add("end_date", "leave may span at most 366 days")
		} else if !CountDays(start, end, r.StartHalf, r.EndHalf).IsPositive() {
			errs.Add("end_half", "half-day flags leave no days in the range")
		}
	}

	if len(r.Reason) > maxReasonLength {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

// Dates returns the parsed range. Call after Validate.
func (r *ApplyLeaveRequest) Dates() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type ActOnLeaveRequest struct {
	ActorID   string `json:"-"`
	RequestID string `json:"-"`
	Action    Action `json:"action"`
	Remarks   string `json:"remarks"`
}

func (r *ActOnLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ActorID) {
		errs.Add("actor_id", "actor_id is required")
	}
	if validator.IsEmpty(r.RequestID) {
		errs.Add("leave_request_id", "leave_request_id is required")
	}
	if !r.Action.IsValid() {
		errs.Add("action", "action must be approve or reject")
	}
	if len(r.Remarks) > maxRemarksLength {
		errs.Add("remarks", "remarks must not exceed 1000 characters")
	}

	return errs.Err()
}

type LeaveRequestFilter struct {
	Status *LeaveRequestStatus
}

type LeaveRequestResponse struct {
	ID            string             `json:"id"`
	EmployeeID    string             `json:"employee_id"`
	EmployeeName  *string            `json:"employee_name,omitempty"`
	LeaveTypeID   string             `json:"leave_type_id"`
	LeaveTypeName *string            `json:"leave_type_name,omitempty"`
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date"`
	StartHalf     bool               `json:"start_half"`
	EndHalf       bool               `json:"end_half"`
	Days          decimal.Decimal    `json:"days"`
	Reason        string             `json:"reason"`
	Status        LeaveRequestStatus `json:"status"`
	TLID          *string            `json:"tl_id,omitempty"`
	TLRemarks     *string            `json:"tl_remarks,omitempty"`
	TLActedAt     *time.Time         `json:"tl_acted_at,omitempty"`
	HRID          *string            `json:"hr_id,omitempty"`
	HRRemarks     *string            `json:"hr_remarks,omitempty"`
	HRActedAt     *time.Time         `json:"hr_acted_at,omitempty"`
	AppliedAt     time.Time          `json:"applied_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		LeaveTypeID:   r.LeaveTypeID,
		LeaveTypeName: r.LeaveTypeName,
		StartDate:     r.StartDate.Format(validator.DateLayout),
		EndDate:       r.EndDate.Format(validator.DateLayout),
		StartHalf:     r.StartHalf,
		EndHalf:       r.EndHalf,
		Days:          r.Days,
		Reason:        r.Reason,
		Status:        r.Status,
		TLID:          r.TLID,
		TLRemarks:     r.TLRemarks,
		TLActedAt:     r.TLActedAt,
		HRID:          r.HRID,
		HRRemarks:     r.HRRemarks,
		HRActedAt:     r.HRActedAt,
		AppliedAt:     r.AppliedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ActResponse is the outcome of a workflow action.
type ActResponse struct {
	Status         LeaveRequestStatus   `json:"status"`
	Request        LeaveRequestResponse `json:"request"`
	Notified       []string             `json:"notified"`
	BalanceDebited bool                 `json:"balance_debited"`
}

type LeaveBalanceResponse struct {
	LeaveTypeID    string          `json:"leave_type_id"`
	LeaveTypeName  *string         `json:"leave_type_name,omitempty"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	Used           decimal.Decimal `json:"used"`
	Remaining      decimal.Decimal `json:"remaining"`
}

func ToLeaveBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		LeaveTypeID:    b.LeaveTypeID,
		LeaveTypeName:  b.LeaveTypeName,
		TotalAllocated: b.TotalAllocated,
		Used:           b.Used,
		Remaining:      b.Remaining(),
	}
}
