// Package memory is a process-local store implementing the repository
// interfaces. It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
)

// Store holds every table behind one mutex. A transaction holds the mutex
// for its whole duration, which serialises writers the way row locks do.
type Store struct {
	mu sync.Mutex
	tables
}

type tables struct {
	employees     map[string]employee.Employee
	leaveTypes    map[string]leave.LeaveType
	leaveRequests map[string]leave.LeaveRequest
	balances      map[string]leave.LeaveBalance // employee|type
	debits        map[string]string             // leave request -> balance
	shifts        map[string]attendance.Shift
	attendance    map[string]attendance.AttendanceDay // employee|date
	notifications []*notification.Notification
}

func NewStore() *Store {
	return &Store{tables: tables{
		employees:     make(map[string]employee.Employee),
		leaveTypes:    make(map[string]leave.LeaveType),
		leaveRequests: make(map[string]leave.LeaveRequest),
		balances:      make(map[string]leave.LeaveBalance),
		debits:        make(map[string]string),
		shifts:        make(map[string]attendance.Shift),
		attendance:    make(map[string]attendance.AttendanceDay),
	}}
}

var _ database.Transactor = (*Store)(nil)

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// acquire locks the store unless ctx already runs inside its transaction.
func (s *Store) acquire(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTransaction implements database.Transactor. On error or panic every
// table is restored to its state before fn ran.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.tables.clone()
	defer func() {
		if p := recover(); p != nil {
			s.tables = snapshot
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.tables = snapshot
	}
	return err
}

func (t tables) clone() tables {
	return tables{
		employees:     maps.Clone(t.employees),
		leaveTypes:    maps.Clone(t.leaveTypes),
		leaveRequests: maps.Clone(t.leaveRequests),
		balances:      maps.Clone(t.balances),
		debits:        maps.Clone(t.debits),
		shifts:        maps.Clone(t.shifts),
		attendance:    maps.Clone(t.attendance),
		notifications: slices.Clone(t.notifications),
	}
}

func balanceKey(employeeID, leaveTypeID string) string {
	return employeeID + "|" + leaveTypeID
}

// PutEmployee inserts or replaces a directory entry.
func (s *Store) PutEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func (s *Store) PutLeaveType(lt leave.LeaveType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveTypes[lt.ID] = lt
}

func (s *Store) PutBalance(b leave.LeaveBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = balanceKey(b.EmployeeID, b.LeaveTypeID)
	}
	s.balances[balanceKey(b.EmployeeID, b.LeaveTypeID)] = b
}

func (s *Store) PutShift(sh attendance.Shift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts[sh.ID] = sh
}

// Notifications returns a copy of every stored notification.
func (s *Store) Notifications() []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notification.Notification, len(s.notifications))
	for i, n := range s.notifications {
		out[i] = *n
	}
	return out
}

// Ping satisfies the health check; the store is always reachable.
func (s *Store) Ping(context.Context) error { return nil }
