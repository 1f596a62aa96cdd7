package memory

import (
	"context"
	"sort"

	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
)

type employeeRepository struct {
	*Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{Store: s}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	defer r.lock(ctx)()

	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	defer r.lock(ctx)()

	for _, e := range r.employees {
		if e.CompanyID == newEmployee.CompanyID && e.EmployeeCode == newEmployee.EmployeeCode {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
	}
	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}
	if newEmployee.EmploymentStatus == "" {
		newEmployee.EmploymentStatus = employee.EmploymentStatusActive
	}
	now := r.now()
	newEmployee.CreatedAt, newEmployee.UpdatedAt = now, now
	r.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

func (r *employeeRepository) GetByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return r.filter(ctx, companyID, false), nil
}

func (r *employeeRepository) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return r.filter(ctx, companyID, true), nil
}

func (r *employeeRepository) filter(ctx context.Context, companyID string, activeOnly bool) []employee.Employee {
	defer r.lock(ctx)()

	result := []employee.Employee{}
	for _, e := range r.employees {
		if e.CompanyID != companyID || (activeOnly && !e.IsActive()) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeCode < result[j].EmployeeCode })
	return result
}

func (r *employeeRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	defer r.lock(ctx)()

	seen := make(map[string]struct{})
	var ids []string
	for _, e := range r.employees {
		if _, ok := seen[e.CompanyID]; ok {
			continue
		}
		seen[e.CompanyID] = struct{}{}
		ids = append(ids, e.CompanyID)
	}
	sort.Strings(ids)
	return ids, nil
}
