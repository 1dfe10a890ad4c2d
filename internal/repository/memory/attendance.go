package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(validator.DateLayout)
}

func (r *attendanceRepository) withShiftName(a attendance.AttendanceDay) attendance.AttendanceDay {
	if a.ShiftID != nil {
		if sh, ok := r.s.shifts[*a.ShiftID]; ok {
			name := sh.Name
			a.ShiftName = &name
		}
	}
	return a
}

func (r *attendanceRepository) Create(ctx context.Context, day attendance.AttendanceDay) (attendance.AttendanceDay, error) {
	defer r.s.acquire(ctx)()

	key := dayKey(day.EmployeeID, day.Date)
	if _, exists := r.s.attendance[key]; exists {
		return attendance.AttendanceDay{}, attendance.ErrAlreadyClockedIn
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.AttendanceDay{}, err
	}
	day.ID = id.String()
	day.UpdatedAt = day.CreatedAt
	r.s.attendance[key] = day
	return r.withShiftName(day), nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.AttendanceDay, error) {
	defer r.s.acquire(ctx)()

	a, ok := r.s.attendance[dayKey(employeeID, date)]
	if !ok {
		return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
	}
	return r.withShiftName(a), nil
}

func (r *attendanceRepository) Close(ctx context.Context, day attendance.AttendanceDay) error {
	defer r.s.acquire(ctx)()

	key := dayKey(day.EmployeeID, day.Date)
	stored, ok := r.s.attendance[key]
	if !ok || stored.ID != day.ID {
		return attendance.ErrAttendanceNotFound
	}
	if stored.ClockOut != nil {
		return attendance.ErrAlreadyClockedOut
	}

	stored.ClockOut = day.ClockOut
	stored.DurationSeconds = day.DurationSeconds
	stored.LateBySeconds = day.LateBySeconds
	stored.OvertimeSeconds = day.OvertimeSeconds
	stored.Status = day.Status
	stored.UpdatedAt = day.UpdatedAt
	r.s.attendance[key] = stored
	return nil
}

func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceDay, error) {
	defer r.s.acquire(ctx)()

	fromKey, toKey := from.Format(validator.DateLayout), to.Format(validator.DateLayout)
	var out []attendance.AttendanceDay
	for _, a := range r.s.attendance {
		d := a.Date.Format(validator.DateLayout)
		if a.EmployeeID == employeeID && d >= fromKey && d <= toKey {
			out = append(out, r.withShiftName(a))
		}
	}
	slices.SortFunc(out, func(a, b attendance.AttendanceDay) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}

func (r *attendanceRepository) ListOpenBefore(ctx context.Context, before time.Time) ([]attendance.AttendanceDay, error) {
	defer r.s.acquire(ctx)()

	beforeKey := before.Format(validator.DateLayout)
	var out []attendance.AttendanceDay
	for _, a := range r.s.attendance {
		if a.ClockOut == nil && a.Date.Format(validator.DateLayout) < beforeKey {
			out = append(out, r.withShiftName(a))
		}
	}
	slices.SortFunc(out, func(a, b attendance.AttendanceDay) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

type shiftRepository struct {
	s *Store
}

func NewShiftRepository(s *Store) attendance.ShiftRepository {
	return &shiftRepository{s: s}
}

func (r *shiftRepository) GetByID(ctx context.Context, id string) (attendance.Shift, error) {
	defer r.s.acquire(ctx)()

	sh, ok := r.s.shifts[id]
	if !ok {
		return attendance.Shift{}, attendance.ErrShiftNotFound
	}
	return sh, nil
}
