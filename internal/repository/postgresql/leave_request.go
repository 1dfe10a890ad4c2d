package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestSelect = `
	SELECT lr.id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date,
		lr.start_half, lr.end_half, lr.days, lr.reason, lr.status,
		lr.tl_id, lr.tl_remarks, lr.tl_acted_at, lr.hr_id, lr.hr_remarks, lr.hr_acted_at,
		lr.applied_at, lr.updated_at, e.full_name, lt.name
	FROM leave_requests lr
	INNER JOIN employees e ON lr.employee_id = e.id
	INNER JOIN leave_types lt ON lr.leave_type_id = lt.id
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate,
		&lr.StartHalf, &lr.EndHalf, &lr.Days, &lr.Reason, &lr.Status,
		&lr.TLID, &lr.TLRemarks, &lr.TLActedAt, &lr.HRID, &lr.HRRemarks, &lr.HRActedAt,
		&lr.AppliedAt, &lr.UpdatedAt, &lr.EmployeeName, &lr.LeaveTypeName,
	)
	return lr, err
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

// isInvalidInput reports a malformed literal such as a non-UUID id.
func isInvalidInput(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("generate leave request id: %w", err)
	}
	request.ID = id.String()

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type_id, start_date, end_date,
			start_half, end_half, days, reason, status, tl_id,
			applied_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $12
		)
	`

	_, err = q.Exec(ctx, query,
		request.ID, request.EmployeeID, request.LeaveTypeID, request.StartDate, request.EndDate,
		request.StartHalf, request.EndHalf, request.Days, request.Reason, request.Status, request.TLID,
		request.AppliedAt,
	)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("insert leave request: %w", err)
	}
	request.UpdatedAt = request.AppliedAt
	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.get(ctx, id, true)
}

func (r *leaveRequestRepositoryImpl) get(ctx context.Context, id string, lock bool) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveRequestSelect + ` WHERE lr.id = $1`
	if lock {
		query += ` FOR UPDATE OF lr`
	}

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidInput(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("get leave request %s: %w", id, err)
	}
	return lr, nil
}

// ListByEmployee implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveRequestSelect + `
		WHERE lr.employee_id = $1 AND ($2::text IS NULL OR lr.status = $2)
		ORDER BY lr.applied_at DESC
	`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, err := q.Query(ctx, query, employeeID, status)
	if err != nil {
		return nil, fmt.Errorf("list leave requests of %s: %w", employeeID, err)
	}
	return collectLeaveRequests(rows)
}

// ListAwaitingTeamLead implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListAwaitingTeamLead(ctx context.Context, teamLeadID string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveRequestSelect + `
		WHERE e.team_lead_id = $1 AND lr.status = $2
		ORDER BY lr.applied_at
	`

	rows, err := q.Query(ctx, query, teamLeadID, leave.StatusApplied)
	if err != nil {
		return nil, fmt.Errorf("list leave requests awaiting team lead: %w", err)
	}
	return collectLeaveRequests(rows)
}

// ListByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByStatus(ctx context.Context, status leave.LeaveRequestStatus) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveRequestSelect + ` WHERE lr.status = $1 ORDER BY lr.applied_at`

	rows, err := q.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list leave requests by status: %w", err)
	}
	return collectLeaveRequests(rows)
}

// HasActiveOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasActiveOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
				AND status = ANY($2)
				AND start_date <= $4
				AND end_date >= $3
		)
	`

	active := []string{string(leave.StatusApplied), string(leave.StatusTLApproved), string(leave.StatusHRApproved)}

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, active, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlapping leave: %w", err)
	}
	return exists, nil
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, change leave.StatusChange) error {
	q := GetQuerier(ctx, r.db)

	var query string
	switch change.Stage {
	case leave.ApproverTeamLead:
		query = `
			UPDATE leave_requests
			SET status = $1, tl_id = $2, tl_remarks = $3, tl_acted_at = $4, updated_at = $4
			WHERE id = $5 AND status = $6
		`
	case leave.ApproverHR:
		query = `
			UPDATE leave_requests
			SET status = $1, hr_id = $2, hr_remarks = $3, hr_acted_at = $4, updated_at = $4
			WHERE id = $5 AND status = $6
		`
	default:
		return fmt.Errorf("unknown approval stage %q", change.Stage)
	}

	tag, err := q.Exec(ctx, query, change.To, change.ActorID, change.Remarks, change.ActedAt, change.RequestID, change.From)
	if err != nil {
		return fmt.Errorf("update leave request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestAlreadyProcessed
	}
	return nil
}
