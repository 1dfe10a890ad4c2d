package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
)

// defaultRange is how far back GetMyAttendance looks without a from date.
const defaultRange = 30 * 24 * time.Hour

// Policy holds the attendance rules that come from configuration.
type Policy struct {
	// Location decides the calendar day a clock-in belongs to.
	Location *time.Location
	// DefaultShiftID is used when a clock-in names no shift.
	DefaultShiftID string
}

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	attendance.ShiftRepository
	employee.EmployeeRepository
	policy Policy
	now    func() time.Time
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *AttendanceServiceImpl) { a.now = now }
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepository attendance.AttendanceRepository,
	shiftRepository attendance.ShiftRepository,
	employeeRepository employee.EmployeeRepository,
	policy Policy,
	opts ...Option,
) attendance.AttendanceService {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	a := &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepository,
		ShiftRepository:      shiftRepository,
		EmployeeRepository:   employeeRepository,
		policy:               policy,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// dateOf returns the local calendar day of t as a UTC midnight.
func (a *AttendanceServiceImpl) dateOf(t time.Time) time.Time {
	y, m, d := t.In(a.policy.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !emp.IsActive {
		return attendance.AttendanceResponse{}, employee.ErrEmployeeInactive
	}

	shiftID := req.ShiftID
	if shiftID == nil && a.policy.DefaultShiftID != "" {
		id := a.policy.DefaultShiftID
		shiftID = &id
	}
	if shiftID != nil {
		if _, err := a.ShiftRepository.GetByID(ctx, *shiftID); err != nil {
			return attendance.AttendanceResponse{}, err
		}
	}

	now := a.now()
	day := attendance.AttendanceDay{
		EmployeeID: emp.ID,
		Date:       a.dateOf(now),
		ShiftID:    shiftID,
		ClockIn:    now,
		Status:     attendance.StatusInProgress,
		Note:       req.Note,
		IsRemote:   req.IsRemote,
		CreatedAt:  now,
	}

	created, err := a.AttendanceRepository.Create(ctx, day)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.InfoContext(ctx, "clocked in",
		"employee_id", emp.ID,
		"date", created.Date.Format(validator.DateLayout),
		"remote", created.IsRemote,
	)
	return attendance.ToAttendanceResponse(created), nil
}

// ClockOut implements attendance.AttendanceService. When today has no record
// an overnight shift still open from the previous day is closed instead.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	var (
		day      attendance.AttendanceDay
		expected time.Duration
	)

	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		open, shift, err := a.findOpen(ctx, req.EmployeeID, now)
		if err != nil {
			return err
		}

		if err := open.Close(now, shift, a.policy.Location); err != nil {
			return err
		}
		if shift != nil {
			if expected, err = shift.ExpectedDuration(); err != nil {
				return err
			}
		}
		open.UpdatedAt = now
		if err := a.AttendanceRepository.Close(ctx, open); err != nil {
			return err
		}
		day = open
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.InfoContext(ctx, "clocked out",
		"employee_id", day.EmployeeID,
		"date", day.Date.Format(validator.DateLayout),
		"duration_seconds", day.DurationSeconds,
		"expected_seconds", int64(expected/time.Second),
		"late_by_seconds", day.LateBySeconds,
		"overtime_seconds", day.OvertimeSeconds,
	)
	return attendance.ToAttendanceResponse(day), nil
}

// overnightClockOutGrace bounds how long after an overnight shift's scheduled
// end the previous day's record can still be closed by hand.
const overnightClockOutGrace = 12 * time.Hour

// findOpen returns the record a clock-out at now closes, with its shift.
// Yesterday's open record qualifies only when its shift crosses midnight and
// now is within the grace period after the scheduled end; anything else is
// left for CloseStale.
func (a *AttendanceServiceImpl) findOpen(ctx context.Context, employeeID string, now time.Time) (attendance.AttendanceDay, *attendance.Shift, error) {
	today := a.dateOf(now)

	day, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	switch {
	case err == nil:
		if day.ClockOut != nil {
			return attendance.AttendanceDay{}, nil, attendance.ErrAlreadyClockedOut
		}
		shift, err := a.shiftOf(ctx, day)
		if err != nil {
			return attendance.AttendanceDay{}, nil, err
		}
		return day, shift, nil
	case !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.AttendanceDay{}, nil, err
	}

	prev, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today.AddDate(0, 0, -1))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceDay{}, nil, attendance.ErrNotClockedIn
		}
		return attendance.AttendanceDay{}, nil, err
	}
	if prev.ClockOut != nil || prev.ShiftID == nil {
		return attendance.AttendanceDay{}, nil, attendance.ErrNotClockedIn
	}

	shift, err := a.shiftOf(ctx, prev)
	if err != nil {
		return attendance.AttendanceDay{}, nil, err
	}
	overnight, err := shift.Overnight()
	if err != nil {
		return attendance.AttendanceDay{}, nil, err
	}
	if !overnight {
		return attendance.AttendanceDay{}, nil, attendance.ErrNotClockedIn
	}
	_, end, err := shift.Window(prev.Date, a.policy.Location)
	if err != nil {
		return attendance.AttendanceDay{}, nil, err
	}
	if now.After(end.Add(overnightClockOutGrace)) {
		return attendance.AttendanceDay{}, nil, attendance.ErrNotClockedIn
	}
	return prev, shift, nil
}

func (a *AttendanceServiceImpl) shiftOf(ctx context.Context, day attendance.AttendanceDay) (*attendance.Shift, error) {
	if day.ShiftID == nil {
		return nil, nil
	}
	s, err := a.ShiftRepository.GetByID(ctx, *day.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("load shift: %w", err)
	}
	return &s, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	to := a.dateOf(a.now())
	if filter.To != nil {
		to, _ = validator.IsValidDate(*filter.To)
	}
	from := to.Add(-defaultRange)
	if filter.From != nil {
		from, _ = validator.IsValidDate(*filter.From)
	}
	if to.Before(from) {
		return nil, validator.ValidationErrors{{Field: "from", Message: "from must be on or before to"}}
	}

	days, err := a.AttendanceRepository.ListByEmployee(ctx, filter.EmployeeID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]attendance.AttendanceResponse, len(days))
	for i, d := range days {
		out[i] = attendance.ToAttendanceResponse(d)
	}
	return out, nil
}

// CloseStale implements attendance.AttendanceService. Yesterday's open
// records are left alone since an overnight shift may still clock out.
func (a *AttendanceServiceImpl) CloseStale(ctx context.Context) ([]attendance.AttendanceDay, error) {
	now := a.now()
	cutoff := a.dateOf(now).AddDate(0, 0, -1)

	open, err := a.AttendanceRepository.ListOpenBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	shifts := make(map[string]*attendance.Shift)
	closed := make([]attendance.AttendanceDay, 0, len(open))
	for _, day := range open {
		var shift *attendance.Shift
		if day.ShiftID != nil {
			if s, ok := shifts[*day.ShiftID]; ok {
				shift = s
			} else {
				s, err := a.ShiftRepository.GetByID(ctx, *day.ShiftID)
				if err != nil {
					return closed, fmt.Errorf("load shift for %s: %w", day.ID, err)
				}
				shift = &s
				shifts[s.ID] = shift
			}
		}

		if err := day.AutoClose(shift, a.policy.Location); err != nil {
			return closed, err
		}
		day.UpdatedAt = now

		if err := a.AttendanceRepository.Close(ctx, day); err != nil {
			if errors.Is(err, attendance.ErrAlreadyClockedOut) {
				continue
			}
			return closed, err
		}
		closed = append(closed, day)
	}

	if len(closed) > 0 {
		slog.InfoContext(ctx, "auto-closed stale attendance", "count", len(closed), "before", cutoff.Format(validator.DateLayout))
	}
	return closed, nil
}
