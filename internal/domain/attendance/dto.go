package attendance

import (
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
)

const maxNoteLength = 500

type ClockInRequest struct {
	EmployeeID string  `json:"-"`
	ShiftID    *string `json:"shift_id,omitempty"`
	Note       *string `json:"note,omitempty"`
	IsRemote   bool    `json:"is_remote"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if r.ShiftID != nil && validator.IsEmpty(*r.ShiftID) {
		errs.Add("shift_id", "shift_id must not be empty")
	}
	if r.Note != nil && len(*r.Note) > maxNoteLength {
		errs.Add("note", "note must not exceed 500 characters")
	}

	return errs.Err()
}

type ClockOutRequest struct {
	EmployeeID string `json:"-"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	return errs.Err()
}

type MyAttendanceFilter struct {
	EmployeeID string
	From       *string
	To         *string
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	var from, to time.Time
	var fromOK, toOK bool
	if f.From != nil {
		if from, fromOK = validator.IsValidDate(*f.From); !fromOK {
			errs.Add("from", "from must be in YYYY-MM-DD format")
		}
	}
	if f.To != nil {
		if to, toOK = validator.IsValidDate(*f.To); !toOK {
			errs.Add("to", "to must be in YYYY-MM-DD format")
		}
	}
	if fromOK && toOK && to.Before(from) {
		errs.Add("to", "to must be on or after from")
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	Date            string     `json:"date"`
	ShiftID         *string    `json:"shift_id,omitempty"`
	ShiftName       *string    `json:"shift_name,omitempty"`
	ClockIn         time.Time  `json:"clock_in"`
	ClockOut        *time.Time `json:"clock_out,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
	LateBySeconds   int64      `json:"late_by_seconds"`
	OvertimeSeconds int64      `json:"overtime_seconds"`
	Status          Status     `json:"status"`
	Note            *string    `json:"note,omitempty"`
	IsRemote        bool       `json:"is_remote"`
	ManualEntry     bool       `json:"manual_entry"`
}

func ToAttendanceResponse(a AttendanceDay) AttendanceResponse {
	return AttendanceResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		Date:            a.Date.Format(validator.DateLayout),
		ShiftID:         a.ShiftID,
		ShiftName:       a.ShiftName,
		ClockIn:         a.ClockIn,
		ClockOut:        a.ClockOut,
		DurationSeconds: a.DurationSeconds,
		LateBySeconds:   a.LateBySeconds,
		OvertimeSeconds: a.OvertimeSeconds,
		Status:          a.Status,
		Note:            a.Note,
		IsRemote:        a.IsRemote,
		ManualEntry:     a.ManualEntry,
	}
}
