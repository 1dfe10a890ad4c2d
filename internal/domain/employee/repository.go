package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDForUpdate locks the employee row until the surrounding
	// transaction ends. Writers that check then insert per employee take it first.
	GetByIDForUpdate(ctx context.Context, id string) (Employee, error)
	// ListActiveByRoles returns active employees holding any of roles.
	ListActiveByRoles(ctx context.Context, roles ...Role) ([]Employee, error)
}
