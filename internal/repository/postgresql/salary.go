package postgresql

import (
	"context"
	"fmt"

	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryStructureRepositoryImpl struct {
	db *database.DB
}

func NewSalaryStructureRepository(db *database.DB) payroll.SalaryStructureRepository {
	return &salaryStructureRepositoryImpl{db: db}
}

const (
	salaryStructureColumns = `id, employee_id, effective_date, pay_type, is_active, created_at, updated_at`
	salaryComponentColumns = `id, structure_id, name, component_type, amount, taxable, created_at, updated_at`
)

func scanSalaryStructure(row pgx.Row) (payroll.SalaryStructure, error) {
	var s payroll.SalaryStructure
	err := row.Scan(&s.ID, &s.EmployeeID, &s.EffectiveDate, &s.PayType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func scanSalaryComponent(row pgx.Row) (payroll.SalaryComponent, error) {
	var c payroll.SalaryComponent
	err := row.Scan(&c.ID, &c.StructureID, &c.Name, &c.ComponentType, &c.Amount, &c.Taxable, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// componentsFor loads the components of the given structures, keyed by structure id.
func (s *salaryStructureRepositoryImpl) componentsFor(ctx context.Context, structureIDs []string) (map[string][]payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, s.db)

	result := make(map[string][]payroll.SalaryComponent, len(structureIDs))
	if len(structureIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + salaryComponentColumns + ` FROM salary_components WHERE structure_id = ANY($1) ORDER BY created_at, id`
	rows, err := q.Query(ctx, query, structureIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanSalaryComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary component: %w", err)
		}
		result[c.StructureID] = append(result[c.StructureID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *salaryStructureRepositoryImpl) withComponents(ctx context.Context, structure payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	components, err := s.componentsFor(ctx, []string{structure.ID})
	if err != nil {
		return payroll.SalaryStructure{}, err
	}
	structure.Components = components[structure.ID]
	if structure.Components == nil {
		structure.Components = []payroll.SalaryComponent{}
	}
	return structure, nil
}

// Create implements payroll.SalaryStructureRepository. Callers wrap it in a
// transaction so the structure and its components land together.
func (s *salaryStructureRepositoryImpl) Create(ctx context.Context, structure payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO salary_structures (employee_id, effective_date, pay_type, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + salaryStructureColumns

	created, err := scanSalaryStructure(q.QueryRow(ctx, query, structure.EmployeeID, structure.EffectiveDate, structure.PayType, structure.IsActive))
	if err != nil {
		return payroll.SalaryStructure{}, fmt.Errorf("failed to create salary structure: %w", err)
	}

	created.Components = []payroll.SalaryComponent{}
	for _, c := range structure.Components {
		c.StructureID = created.ID
		added, err := s.AddComponent(ctx, c)
		if err != nil {
			return payroll.SalaryStructure{}, err
		}
		created.Components = append(created.Components, added)
	}
	return created, nil
}

// GetByID implements payroll.SalaryStructureRepository.
func (s *salaryStructureRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, s.db)

	structure, err := scanSalaryStructure(q.QueryRow(ctx, `SELECT `+salaryStructureColumns+` FROM salary_structures WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
		}
		return payroll.SalaryStructure{}, fmt.Errorf("failed to get salary structure by id %s: %w", id, err)
	}
	return s.withComponents(ctx, structure)
}

// GetActiveByEmployeeID implements payroll.SalaryStructureRepository.
func (s *salaryStructureRepositoryImpl) GetActiveByEmployeeID(ctx context.Context, employeeID string) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT ` + salaryStructureColumns + `
		FROM salary_structures
		WHERE employee_id = $1 AND is_active = TRUE
		ORDER BY effective_date DESC, created_at DESC, id DESC
		LIMIT 1`

	structure, err := scanSalaryStructure(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if isNoRows(err) {
			return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
		}
		return payroll.SalaryStructure{}, fmt.Errorf("failed to get active salary structure for employee %s: %w", employeeID, err)
	}
	return s.withComponents(ctx, structure)
}

// List implements payroll.SalaryStructureRepository.
func (s *salaryStructureRepositoryImpl) List(ctx context.Context, filter payroll.SalaryStructureFilter) ([]payroll.SalaryStructure, int64, error) {
	q := GetQuerier(ctx, s.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.IsActive != nil {
		baseWhere += fmt.Sprintf(" AND is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM salary_structures WHERE `+baseWhere, args...).Scan(&total); err != nil {
		if isNoRows(err) {
			return []payroll.SalaryStructure{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to count salary structures: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM salary_structures
		WHERE %s
		ORDER BY effective_date DESC, id
		LIMIT $%d OFFSET $%d
	`, salaryStructureColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query salary structures: %w", err)
	}
	structures, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (payroll.SalaryStructure, error) {
		return scanSalaryStructure(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan salary structures: %w", err)
	}

	ids := make([]string, 0, len(structures))
	for _, st := range structures {
		ids = append(ids, st.ID)
	}
	components, err := s.componentsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range structures {
		structures[i].Components = components[structures[i].ID]
		if structures[i].Components == nil {
			structures[i].Components = []payroll.SalaryComponent{}
		}
	}
	return structures, total, nil
}

// Update implements payroll.SalaryStructureRepository. Components are not touched.
func (s *salaryStructureRepositoryImpl) Update(ctx context.Context, structure payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE salary_structures
		SET effective_date = $1, pay_type = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + salaryStructureColumns

	updated, err := scanSalaryStructure(q.QueryRow(ctx, query, structure.EffectiveDate, structure.PayType, structure.IsActive, structure.ID))
	if err != nil {
		if isNoRows(err) {
			return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
		}
		return payroll.SalaryStructure{}, fmt.Errorf("failed to update salary structure %s: %w", structure.ID, err)
	}
	return s.withComponents(ctx, updated)
}

// Delete implements payroll.SalaryStructureRepository. Components cascade.
func (s *salaryStructureRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, s.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_structures WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return payroll.ErrSalaryStructureNotFound
		}
		return fmt.Errorf("failed to delete salary structure %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrSalaryStructureNotFound
	}
	return nil
}

// AddComponent implements payroll.SalaryStructureRepository.
func (s *salaryStructureRepositoryImpl) AddComponent(ctx context.Context, component payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO salary_components (structure_id, name, component_type, amount, taxable)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + salaryComponentColumns

	created, err := scanSalaryComponent(q.QueryRow(ctx, query,
		component.StructureID, component.Name, component.ComponentType, component.Amount, component.Taxable,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return payroll.SalaryComponent{}, payroll.ErrSalaryStructureNotFound
		}
		return payroll.SalaryComponent{}, fmt.Errorf("failed to add salary component: %w", err)
	}
	return created, nil
}

// GetComponentByID implements payroll.SalaryStructureRepository.
func (s *salaryStructureRepositoryImpl) GetComponentByID(ctx context.Context, id string) (payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, s.db)

	c, err := scanSalaryComponent(q.QueryRow(ctx, `SELECT `+salaryComponentColumns+` FROM salary_components WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return payroll.SalaryComponent{}, payroll.ErrSalaryComponentNotFound
		}
		return payroll.SalaryComponent{}, fmt.Errorf("failed to get salary component by id %s: %w", id, err)
	}
	return c, nil
}

// UpdateComponent implements payroll.SalaryStructureRepository.
func (s *salaryStructureRepositoryImpl) UpdateComponent(ctx context.Context, component payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE salary_components
		SET name = $1, component_type = $2, amount = $3, taxable = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + salaryComponentColumns

	updated, err := scanSalaryComponent(q.QueryRow(ctx, query,
		component.Name, component.ComponentType, component.Amount, component.Taxable, component.ID,
	))
	if err != nil {
		if isNoRows(err) {
			return payroll.SalaryComponent{}, payroll.ErrSalaryComponentNotFound
		}
		return payroll.SalaryComponent{}, fmt.Errorf("failed to update salary component %s: %w", component.ID, err)
	}
	return updated, nil
}

// DeleteComponent implements payroll.SalaryStructureRepository.
func (s *salaryStructureRepositoryImpl) DeleteComponent(ctx context.Context, id string) error {
	q := GetQuerier(ctx, s.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_components WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return payroll.ErrSalaryComponentNotFound
		}
		return fmt.Errorf("failed to delete salary component %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrSalaryComponentNotFound
	}
	return nil
}
