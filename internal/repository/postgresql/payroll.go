package postgresql

import (
	"context"
	"fmt"

	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ========== PAYROLL RUNS ==========

type payrollRunRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.PayrollRunRepository {
	return &payrollRunRepositoryImpl{db: db}
}

const payrollRunColumns = `id, company_id, month, status, processed_by, processed_at, created_at, updated_at`

func scanPayrollRun(row pgx.Row) (payroll.PayrollRun, error) {
	var r payroll.PayrollRun
	err := row.Scan(&r.ID, &r.CompanyID, &r.Month, &r.Status, &r.ProcessedBy, &r.ProcessedAt, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// Create implements payroll.PayrollRunRepository.
func (p *payrollRunRepositoryImpl) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, p.db)

	status := run.Status
	if status == "" {
		status = payroll.PayrollRunStatusDraft
	}

	query := `
		INSERT INTO payroll_runs (company_id, month, status)
		VALUES ($1, $2, $3)
		RETURNING ` + payrollRunColumns

	created, err := scanPayrollRun(q.QueryRow(ctx, query, run.CompanyID, run.Month, status))
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return created, nil
}

// GetOrCreate implements payroll.PayrollRunRepository. The unique
// (company_id, month) constraint makes concurrent callers converge on one row.
func (p *payrollRunRepositoryImpl) GetOrCreate(ctx context.Context, companyID, month string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, p.db)

	_, err := q.Exec(ctx, `
		INSERT INTO payroll_runs (company_id, month, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, month) DO NOTHING
	`, companyID, month, payroll.PayrollRunStatusDraft)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to insert payroll run: %w", err)
	}

	query := `SELECT ` + payrollRunColumns + ` FROM payroll_runs WHERE company_id = $1 AND month = $2`
	run, err := scanPayrollRun(q.QueryRow(ctx, query, companyID, month))
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to read payroll run %s/%s: %w", companyID, month, err)
	}
	return run, nil
}

// GetByID implements payroll.PayrollRunRepository.
func (p *payrollRunRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + payrollRunColumns + ` FROM payroll_runs WHERE id = $1`

	run, err := scanPayrollRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run by id %s: %w", id, err)
	}
	return run, nil
}

// List implements payroll.PayrollRunRepository.
func (p *payrollRunRepositoryImpl) List(ctx context.Context, filter payroll.PayrollRunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, p.db)

	baseWhere := "company_id = $1"
	args := []interface{}{filter.CompanyID}
	argIdx := 2

	if filter.Month != nil && *filter.Month != "" {
		baseWhere += fmt.Sprintf(" AND month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_runs WHERE `+baseWhere, args...).Scan(&total); err != nil {
		if isNoRows(err) {
			return []payroll.PayrollRun{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM payroll_runs
		WHERE %s
		ORDER BY month DESC
		LIMIT $%d OFFSET $%d
	`, payrollRunColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query payroll runs: %w", err)
	}
	defer rows.Close()

	runs := []payroll.PayrollRun{}
	for rows.Next() {
		run, err := scanPayrollRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// Update implements payroll.PayrollRunRepository.
func (p *payrollRunRepositoryImpl) Update(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		UPDATE payroll_runs
		SET status = $1, processed_by = $2, processed_at = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + payrollRunColumns

	updated, err := scanPayrollRun(q.QueryRow(ctx, query, run.Status, run.ProcessedBy, run.ProcessedAt, run.ID))
	if err != nil {
		if isNoRows(err) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run %s: %w", run.ID, err)
	}
	return updated, nil
}

// Delete implements payroll.PayrollRunRepository. Payslips go with the run
// through ON DELETE CASCADE.
func (p *payrollRunRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, p.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_runs WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return payroll.ErrPayrollRunNotFound
		}
		return fmt.Errorf("failed to delete payroll run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRunNotFound
	}
	return nil
}

// ========== PAYSLIPS ==========

type payslipRepositoryImpl struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepositoryImpl{db: db}
}

const payslipColumns = `id, employee_id, payroll_run_id, total_earnings, total_deductions, net_pay, attachment_id, created_at, updated_at`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(&p.ID, &p.EmployeeID, &p.PayrollRunID, &p.TotalEarnings, &p.TotalDeductions, &p.NetPay, &p.AttachmentID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetByID implements payroll.PayslipRepository.
func (p *payslipRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, p.db)

	payslip, err := scanPayslip(q.QueryRow(ctx, `SELECT `+payslipColumns+` FROM payslips WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip by id %s: %w", id, err)
	}
	return payslip, nil
}

// GetByEmployeeAndRun implements payroll.PayslipRepository.
func (p *payslipRepositoryImpl) GetByEmployeeAndRun(ctx context.Context, employeeID, runID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE employee_id = $1 AND payroll_run_id = $2`

	payslip, err := scanPayslip(q.QueryRow(ctx, query, employeeID, runID))
	if err != nil {
		if isNoRows(err) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip for employee %s: %w", employeeID, err)
	}
	return payslip, nil
}

// List implements payroll.PayslipRepository.
func (p *payslipRepositoryImpl) List(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	q := GetQuerier(ctx, p.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.CompanyID != "" {
		baseWhere += fmt.Sprintf(" AND r.company_id = $%d", argIdx)
		args = append(args, filter.CompanyID)
		argIdx++
	}
	if filter.PayrollRunID != nil && *filter.PayrollRunID != "" {
		baseWhere += fmt.Sprintf(" AND s.payroll_run_id = $%d", argIdx)
		args = append(args, *filter.PayrollRunID)
		argIdx++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND s.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	from := ` FROM payslips s JOIN payroll_runs r ON r.id = s.payroll_run_id WHERE ` + baseWhere

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		if isNoRows(err) {
			return []payroll.Payslip{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT s.id, s.employee_id, s.payroll_run_id, s.total_earnings, s.total_deductions, s.net_pay,
			s.attachment_id, s.created_at, s.updated_at
		%s
		ORDER BY r.month DESC, s.employee_id
		LIMIT $%d OFFSET $%d
	`, from, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query payslips: %w", err)
	}
	defer rows.Close()

	payslips := []payroll.Payslip{}
	for rows.Next() {
		payslip, err := scanPayslip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, payslip)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return payslips, total, nil
}

// AddDeduction implements payroll.PayslipRepository as a single upsert, so
// concurrent postings to one payslip serialize on the row instead of racing.
func (p *payslipRepositoryImpl) AddDeduction(ctx context.Context, employeeID, runID string, amount decimal.Decimal) (payroll.Payslip, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO payslips (employee_id, payroll_run_id, total_earnings, total_deductions, net_pay)
		VALUES ($1, $2, 0, $3::numeric, 0 - $3::numeric)
		ON CONFLICT (employee_id, payroll_run_id) DO UPDATE
		SET total_deductions = payslips.total_deductions + EXCLUDED.total_deductions,
			net_pay = payslips.total_earnings - (payslips.total_deductions + EXCLUDED.total_deductions),
			updated_at = NOW()
		RETURNING ` + payslipColumns

	payslip, err := scanPayslip(q.QueryRow(ctx, query, employeeID, runID, amount))
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to post deduction for employee %s: %w", employeeID, err)
	}
	return payslip, nil
}

// ApplyStructure implements payroll.PayslipRepository.
func (p *payslipRepositoryImpl) ApplyStructure(ctx context.Context, employeeID, runID string, earnings, deductions decimal.Decimal) (payroll.Payslip, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO payslips (employee_id, payroll_run_id, total_earnings, total_deductions, net_pay)
		VALUES ($1, $2, $3::numeric, $4::numeric, $3::numeric - $4::numeric)
		ON CONFLICT (employee_id, payroll_run_id) DO UPDATE
		SET total_earnings = EXCLUDED.total_earnings,
			total_deductions = payslips.total_deductions + EXCLUDED.total_deductions,
			net_pay = EXCLUDED.total_earnings - (payslips.total_deductions + EXCLUDED.total_deductions),
			updated_at = NOW()
		RETURNING ` + payslipColumns

	payslip, err := scanPayslip(q.QueryRow(ctx, query, employeeID, runID, earnings, deductions))
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to apply salary structure for employee %s: %w", employeeID, err)
	}
	return payslip, nil
}

// SetAttachment implements payroll.PayslipRepository.
func (p *payslipRepositoryImpl) SetAttachment(ctx context.Context, id, attachmentID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		UPDATE payslips SET attachment_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + payslipColumns

	payslip, err := scanPayslip(q.QueryRow(ctx, query, attachmentID, id))
	if err != nil {
		if isNoRows(err) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to set payslip attachment %s: %w", id, err)
	}
	return payslip, nil
}
