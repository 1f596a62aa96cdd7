package memory

import (
	"context"
	"sort"

	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
)

type salaryStructureRepository struct {
	*Store
}

func NewSalaryStructureRepository(s *Store) payroll.SalaryStructureRepository {
	return &salaryStructureRepository{Store: s}
}

func (r *salaryStructureRepository) withComponentsLocked(s payroll.SalaryStructure) payroll.SalaryStructure {
	s.Components = []payroll.SalaryComponent{}
	for _, c := range r.components {
		if c.StructureID == s.ID {
			s.Components = append(s.Components, c)
		}
	}
	sort.Slice(s.Components, func(i, j int) bool { return s.Components[i].ID < s.Components[j].ID })
	return s
}

func (r *salaryStructureRepository) Create(ctx context.Context, structure payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	defer r.lock(ctx)()

	now := r.now()
	structure.ID = newID()
	structure.CreatedAt, structure.UpdatedAt = now, now
	components := structure.Components
	structure.Components = nil
	r.structures[structure.ID] = structure

	for _, c := range components {
		c.ID = newID()
		c.StructureID = structure.ID
		c.CreatedAt, c.UpdatedAt = now, now
		r.components[c.ID] = c
	}
	return r.withComponentsLocked(structure), nil
}

func (r *salaryStructureRepository) GetByID(ctx context.Context, id string) (payroll.SalaryStructure, error) {
	defer r.lock(ctx)()

	s, ok := r.structures[id]
	if !ok {
		return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
	}
	return r.withComponentsLocked(s), nil
}

func (r *salaryStructureRepository) GetActiveByEmployeeID(ctx context.Context, employeeID string) (payroll.SalaryStructure, error) {
	defer r.lock(ctx)()

	var found *payroll.SalaryStructure
	for _, s := range r.structures {
		if s.EmployeeID != employeeID || !s.IsActive {
			continue
		}
		if found == nil || newerStructure(s, *found) {
			s := s
			found = &s
		}
	}
	if found == nil {
		return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
	}
	return r.withComponentsLocked(*found), nil
}

// newerStructure orders like the SQL repository: effective_date DESC,
// created_at DESC, id DESC.
func newerStructure(a, b payroll.SalaryStructure) bool {
	if !a.EffectiveDate.Equal(b.EffectiveDate) {
		return a.EffectiveDate.After(b.EffectiveDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (r *salaryStructureRepository) List(ctx context.Context, filter payroll.SalaryStructureFilter) ([]payroll.SalaryStructure, int64, error) {
	defer r.lock(ctx)()

	var matched []payroll.SalaryStructure
	for _, s := range r.structures {
		if filter.EmployeeID != nil && s.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.IsActive != nil && s.IsActive != *filter.IsActive {
			continue
		}
		matched = append(matched, r.withComponentsLocked(s))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].EffectiveDate.After(matched[j].EffectiveDate) })
	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (r *salaryStructureRepository) Update(ctx context.Context, structure payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	defer r.lock(ctx)()

	existing, ok := r.structures[structure.ID]
	if !ok {
		return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
	}
	existing.EffectiveDate = structure.EffectiveDate
	existing.PayType = structure.PayType
	existing.IsActive = structure.IsActive
	existing.UpdatedAt = r.now()
	r.structures[existing.ID] = existing
	return r.withComponentsLocked(existing), nil
}

func (r *salaryStructureRepository) Delete(ctx context.Context, id string) error {
	defer r.lock(ctx)()

	if _, ok := r.structures[id]; !ok {
		return payroll.ErrSalaryStructureNotFound
	}
	delete(r.structures, id)
	for cid, c := range r.components {
		if c.StructureID == id {
			delete(r.components, cid)
		}
	}
	return nil
}

func (r *salaryStructureRepository) AddComponent(ctx context.Context, component payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	defer r.lock(ctx)()

	if _, ok := r.structures[component.StructureID]; !ok {
		return payroll.SalaryComponent{}, payroll.ErrSalaryStructureNotFound
	}
	now := r.now()
	component.ID = newID()
	component.CreatedAt, component.UpdatedAt = now, now
	r.components[component.ID] = component
	return component, nil
}

func (r *salaryStructureRepository) GetComponentByID(ctx context.Context, id string) (payroll.SalaryComponent, error) {
	defer r.lock(ctx)()

	c, ok := r.components[id]
	if !ok {
		return payroll.SalaryComponent{}, payroll.ErrSalaryComponentNotFound
	}
	return c, nil
}

func (r *salaryStructureRepository) UpdateComponent(ctx context.Context, component payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	defer r.lock(ctx)()

	existing, ok := r.components[component.ID]
	if !ok {
		return payroll.SalaryComponent{}, payroll.ErrSalaryComponentNotFound
	}
	component.StructureID = existing.StructureID
	component.CreatedAt = existing.CreatedAt
	component.UpdatedAt = r.now()
	r.components[component.ID] = component
	return component, nil
}

func (r *salaryStructureRepository) DeleteComponent(ctx context.Context, id string) error {
	defer r.lock(ctx)()

	if _, ok := r.components[id]; !ok {
		return payroll.ErrSalaryComponentNotFound
	}
	delete(r.components, id)
	return nil
}
