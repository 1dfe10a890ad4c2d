package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create returns ErrAlreadyClockedIn when (employee, date) is taken.
	Create(ctx context.Context, day AttendanceDay) (AttendanceDay, error)

	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (AttendanceDay, error)

	// Close writes the clock-out fields only while clock_out is still null,
	// returning ErrAlreadyClockedOut otherwise.
	Close(ctx context.Context, day AttendanceDay) error

	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceDay, error)

	// ListOpenBefore returns records still missing a clock-out whose date is
	// strictly before the given date.
	ListOpenBefore(ctx context.Context, before time.Time) ([]AttendanceDay, error)
}

type ShiftRepository interface {
	GetByID(ctx context.Context, id string) (Shift, error)
}
