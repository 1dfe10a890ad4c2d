package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceSelect = `
	SELECT lb.id, lb.employee_id, lb.leave_type_id, lb.total_allocated, lb.used, lb.updated_at, lt.name
	FROM leave_balances lb
	INNER JOIN leave_types lt ON lb.leave_type_id = lt.id
`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.TotalAllocated, &b.Used, &b.UpdatedAt, &b.LeaveTypeName)
	return b, err
}

// ListByEmployee implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, leaveBalanceSelect+` WHERE lb.employee_id = $1 ORDER BY lt.name`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.LeaveBalance
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// GetByEmployeeAndType implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByEmployeeAndType(ctx context.Context, employeeID, leaveTypeID string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanLeaveBalance(q.QueryRow(ctx,
		leaveBalanceSelect+` WHERE lb.employee_id = $1 AND lb.leave_type_id = $2`,
		employeeID, leaveTypeID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("get leave balance: %w", err)
	}
	return b, nil
}

// Debit implements leave.LeaveBalanceRepository. The debit row is keyed by
// the leave request, so a second call for the same request changes nothing.
func (r *leaveBalanceRepositoryImpl) Debit(ctx context.Context, employeeID, leaveTypeID, leaveRequestID string, days decimal.Decimal) (leave.DebitOutcome, error) {
	q := GetQuerier(ctx, r.db)

	var balanceID string
	err := q.QueryRow(ctx, `
		SELECT id FROM leave_balances
		WHERE employee_id = $1 AND leave_type_id = $2
		FOR UPDATE
	`, employeeID, leaveTypeID).Scan(&balanceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.DebitNoBalance, nil
		}
		return "", fmt.Errorf("lock leave balance: %w", err)
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO leave_balance_debits (leave_request_id, leave_balance_id, days)
		VALUES ($1, $2, $3)
		ON CONFLICT (leave_request_id) DO NOTHING
	`, leaveRequestID, balanceID, days)
	if err != nil {
		return "", fmt.Errorf("record leave debit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.DebitDuplicate, nil
	}

	_, err = q.Exec(ctx, `
		UPDATE leave_balances SET used = used + $1, updated_at = NOW()
		WHERE id = $2
	`, days, balanceID)
	if err != nil {
		return "", fmt.Errorf("debit leave balance: %w", err)
	}
	return leave.DebitApplied, nil
}
