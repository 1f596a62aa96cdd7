package employee

import "context"

// EmployeeRepository is the read side of the employee directory. Create is
// only used for seeding and tests.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
