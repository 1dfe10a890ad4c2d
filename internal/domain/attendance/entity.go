package attendance

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	// StatusAutoClosed marks a record closed by the stale sweep.
	StatusAutoClosed Status = "auto_closed"
)

// AttendanceDay is one employee's record for one calendar date.
type AttendanceDay struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	ShiftID         *string
	ClockIn         time.Time
	ClockOut        *time.Time
	DurationSeconds int64
	LateBySeconds   int64
	OvertimeSeconds int64
	Status          Status
	Note            *string
	IsRemote        bool
	ManualEntry     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	ShiftName *string
}

// Shift is a named working window in local wall-clock time.
type Shift struct {
	ID           string
	Name         string
	StartTime    string // HH:MM
	EndTime      string // HH:MM
	BreakMinutes int
	CreatedAt    time.Time
}

const clockLayout = "15:04"

// Window returns the shift's start and end on date in loc. An end at or
// before the start belongs to the next day.
func (s Shift) Window(date time.Time, loc *time.Location) (time.Time, time.Time, error) {
	startClock, err := time.Parse(clockLayout, s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("shift %s start time: %w", s.ID, err)
	}
	endClock, err := time.Parse(clockLayout, s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("shift %s end time: %w", s.ID, err)
	}

	y, m, d := date.Date()
	start := time.Date(y, m, d, startClock.Hour(), startClock.Minute(), 0, 0, loc)
	end := time.Date(y, m, d, endClock.Hour(), endClock.Minute(), 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// ExpectedDuration is the window length less the unpaid break.
func (s Shift) ExpectedDuration() (time.Duration, error) {
	start, end, err := s.Window(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	if err != nil {
		return 0, err
	}
	return end.Sub(start) - time.Duration(s.BreakMinutes)*time.Minute, nil
}

// Overnight reports whether the shift ends on the day after it starts.
func (s Shift) Overnight() (bool, error) {
	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	start, end, err := s.Window(ref, time.UTC)
	if err != nil {
		return false, err
	}
	return end.YearDay() != start.YearDay(), nil
}

// Close stamps the clock-out and derives duration, lateness and overtime.
// Lateness counts from the shift start. Overtime is the time worked past the
// scheduled end, not the surplus over ExpectedDuration: a late arrival who
// stays past the end earns overtime, and the unpaid break never moves the end.
func (a *AttendanceDay) Close(at time.Time, shift *Shift, loc *time.Location) error {
	out := at
	a.ClockOut = &out
	a.Status = StatusCompleted
	a.DurationSeconds = secondsBetween(a.ClockIn, out)
	a.LateBySeconds = 0
	a.OvertimeSeconds = 0

	if shift == nil {
		return nil
	}
	start, end, err := shift.Window(a.Date, loc)
	if err != nil {
		return err
	}
	a.LateBySeconds = secondsBetween(start, a.ClockIn)
	a.OvertimeSeconds = secondsBetween(end, out)
	return nil
}

// AutoClose closes a record nobody clocked out of. The clock-out is the
// scheduled shift end, or the clock-in itself when no shift is attached.
func (a *AttendanceDay) AutoClose(shift *Shift, loc *time.Location) error {
	at := a.ClockIn
	if shift != nil {
		_, end, err := shift.Window(a.Date, loc)
		if err != nil {
			return err
		}
		if end.After(at) {
			at = end
		}
	}
	if err := a.Close(at, shift, loc); err != nil {
		return err
	}
	a.Status = StatusAutoClosed
	return nil
}

// secondsBetween returns max(0, to-from) in whole seconds.
func secondsBetween(from, to time.Time) int64 {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
