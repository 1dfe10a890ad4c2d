package attendance

import "github.com/cmlabs-hris/hrm-core/internal/pkg/apperror"

// Attendance domain errors
var (
	ErrAlreadyClockedIn  = apperror.New(apperror.KindConflict, "already clocked in today")
	ErrNotClockedIn      = apperror.New(apperror.KindNotFound, "no clock-in found for today")
	ErrAlreadyClockedOut = apperror.New(apperror.KindConflict, "already clocked out")

	ErrAttendanceNotFound = apperror.New(apperror.KindNotFound, "attendance record not found")
	ErrShiftNotFound      = apperror.New(apperror.KindNotFound, "shift not found")
)
