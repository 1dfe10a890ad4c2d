package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
)

type employeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	defer r.s.acquire(ctx)()

	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetByIDForUpdate relies on the transaction already holding the store lock.
func (r *employeeRepository) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r *employeeRepository) ListActiveByRoles(ctx context.Context, roles ...employee.Role) ([]employee.Employee, error) {
	defer r.s.acquire(ctx)()

	var out []employee.Employee
	for _, e := range r.s.employees {
		if e.IsActive && slices.Contains(roles, e.Role) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b employee.Employee) int {
		return strings.Compare(a.FullName, b.FullName)
	})
	return out, nil
}
