package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceSelect = `
	SELECT a.id, a.employee_id, a.date, a.shift_id, a.clock_in, a.clock_out,
		a.duration_seconds, a.late_by_seconds, a.overtime_seconds, a.status,
		a.note, a.is_remote, a.manual_entry, a.created_at, a.updated_at, s.name
	FROM attendance_days a
	LEFT JOIN shifts s ON a.shift_id = s.id
`

func scanAttendance(row pgx.Row) (attendance.AttendanceDay, error) {
	var a attendance.AttendanceDay
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.Date, &a.ShiftID, &a.ClockIn, &a.ClockOut,
		&a.DurationSeconds, &a.LateBySeconds, &a.OvertimeSeconds, &a.Status,
		&a.Note, &a.IsRemote, &a.ManualEntry, &a.CreatedAt, &a.UpdatedAt, &a.ShiftName,
	)
	return a, err
}

func collectAttendance(rows pgx.Rows) ([]attendance.AttendanceDay, error) {
	defer rows.Close()

	var days []attendance.AttendanceDay
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		days = append(days, a)
	}
	return days, rows.Err()
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, day attendance.AttendanceDay) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.AttendanceDay{}, fmt.Errorf("generate attendance id: %w", err)
	}
	day.ID = id.String()

	query := `
		INSERT INTO attendance_days (
			id, employee_id, date, shift_id, clock_in, status,
			note, is_remote, manual_entry, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		day.ID, day.EmployeeID, day.Date, day.ShiftID, day.ClockIn, day.Status,
		day.Note, day.IsRemote, day.ManualEntry, day.CreatedAt,
	)
	if err != nil {
		return attendance.AttendanceDay{}, fmt.Errorf("insert attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.AttendanceDay{}, attendance.ErrAlreadyClockedIn
	}
	day.UpdatedAt = day.CreatedAt
	return day, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE a.employee_id = $1 AND a.date = $2`, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceDay{}, fmt.Errorf("get attendance: %w", err)
	}
	return a, nil
}

// Close implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Close(ctx context.Context, day attendance.AttendanceDay) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_days
		SET clock_out = $1, duration_seconds = $2, late_by_seconds = $3,
			overtime_seconds = $4, status = $5, updated_at = $6
		WHERE id = $7 AND clock_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		day.ClockOut, day.DurationSeconds, day.LateBySeconds,
		day.OvertimeSeconds, day.Status, day.UpdatedAt, day.ID,
	)
	if err != nil {
		return fmt.Errorf("close attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAlreadyClockedOut
	}
	return nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		attendanceSelect+` WHERE a.employee_id = $1 AND a.date BETWEEN $2 AND $3 ORDER BY a.date DESC`,
		employeeID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return collectAttendance(rows)
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListOpenBefore(ctx context.Context, before time.Time) ([]attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		attendanceSelect+` WHERE a.clock_out IS NULL AND a.date < $1 ORDER BY a.date`,
		before,
	)
	if err != nil {
		return nil, fmt.Errorf("list open attendance: %w", err)
	}
	return collectAttendance(rows)
}
