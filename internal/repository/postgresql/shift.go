package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) attendance.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

// GetByID implements attendance.ShiftRepository.
func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Shift, error) {
	q := GetQuerier(ctx, r.db)

	var s attendance.Shift
	err := q.QueryRow(ctx,
		`SELECT id, name, start_time, end_time, break_minutes, created_at FROM shifts WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.BreakMinutes, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidInput(err) {
			return attendance.Shift{}, attendance.ErrShiftNotFound
		}
		return attendance.Shift{}, fmt.Errorf("get shift %s: %w", id, err)
	}
	return s, nil
}
