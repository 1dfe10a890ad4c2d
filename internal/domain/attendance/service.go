package attendance

import (
	"context"
)

// AttendanceService opens and closes AttendanceDay records.
type AttendanceService interface {
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) ([]AttendanceResponse, error)

	// CloseStale auto-closes records left open for longer than the overnight
	// grace day and returns them.
	CloseStale(ctx context.Context) ([]AttendanceDay, error)
}
