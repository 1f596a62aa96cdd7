package memory

import (
	"context"
	"sort"

	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type payrollRunRepository struct {
	*Store
}

func NewPayrollRunRepository(s *Store) payroll.PayrollRunRepository {
	return &payrollRunRepository{Store: s}
}

func (r *payrollRunRepository) findLocked(companyID, month string) (payroll.PayrollRun, bool) {
	for _, run := range r.runs {
		if run.CompanyID == companyID && run.Month == month {
			return run, true
		}
	}
	return payroll.PayrollRun{}, false
}

func (r *payrollRunRepository) insertLocked(run payroll.PayrollRun) payroll.PayrollRun {
	run.ID = newID()
	if run.Status == "" {
		run.Status = payroll.PayrollRunStatusDraft
	}
	now := r.now()
	run.CreatedAt, run.UpdatedAt = now, now
	r.runs[run.ID] = run
	return run
}

func (r *payrollRunRepository) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	defer r.lock(ctx)()

	if _, exists := r.findLocked(run.CompanyID, run.Month); exists {
		return payroll.PayrollRun{}, payroll.ErrPayrollRunExists
	}
	return r.insertLocked(run), nil
}

func (r *payrollRunRepository) GetOrCreate(ctx context.Context, companyID, month string) (payroll.PayrollRun, error) {
	defer r.lock(ctx)()

	if run, exists := r.findLocked(companyID, month); exists {
		return run, nil
	}
	return r.insertLocked(payroll.PayrollRun{CompanyID: companyID, Month: month}), nil
}

func (r *payrollRunRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	defer r.lock(ctx)()

	run, ok := r.runs[id]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
	}
	return run, nil
}

func (r *payrollRunRepository) List(ctx context.Context, filter payroll.PayrollRunFilter) ([]payroll.PayrollRun, int64, error) {
	defer r.lock(ctx)()

	var matched []payroll.PayrollRun
	for _, run := range r.runs {
		if filter.CompanyID != "" && run.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Month != nil && run.Month != *filter.Month {
			continue
		}
		if filter.Status != nil && string(run.Status) != *filter.Status {
			continue
		}
		matched = append(matched, run)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Month > matched[j].Month })
	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (r *payrollRunRepository) Update(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	defer r.lock(ctx)()

	existing, ok := r.runs[run.ID]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
	}
	run.CreatedAt = existing.CreatedAt
	run.UpdatedAt = r.now()
	r.runs[run.ID] = run
	return run, nil
}

func (r *payrollRunRepository) Delete(ctx context.Context, id string) error {
	defer r.lock(ctx)()

	if _, ok := r.runs[id]; !ok {
		return payroll.ErrPayrollRunNotFound
	}
	delete(r.runs, id)
	for pid, p := range r.payslips {
		if p.PayrollRunID == id {
			delete(r.payslips, pid)
		}
	}
	return nil
}

type payslipRepository struct {
	*Store
}

func NewPayslipRepository(s *Store) payroll.PayslipRepository {
	return &payslipRepository{Store: s}
}

func (r *payslipRepository) GetByID(ctx context.Context, id string) (payroll.Payslip, error) {
	defer r.lock(ctx)()

	p, ok := r.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (r *payslipRepository) findLocked(employeeID, runID string) (payroll.Payslip, bool) {
	for _, p := range r.payslips {
		if p.EmployeeID == employeeID && p.PayrollRunID == runID {
			return p, true
		}
	}
	return payroll.Payslip{}, false
}

func (r *payslipRepository) GetByEmployeeAndRun(ctx context.Context, employeeID, runID string) (payroll.Payslip, error) {
	defer r.lock(ctx)()

	p, ok := r.findLocked(employeeID, runID)
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (r *payslipRepository) List(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	defer r.lock(ctx)()

	var matched []payroll.Payslip
	for _, p := range r.payslips {
		if filter.PayrollRunID != nil && p.PayrollRunID != *filter.PayrollRunID {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.CompanyID != "" && r.runs[p.PayrollRunID].CompanyID != filter.CompanyID {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].PayrollRunID != matched[j].PayrollRunID {
			return matched[i].PayrollRunID > matched[j].PayrollRunID
		}
		return matched[i].EmployeeID < matched[j].EmployeeID
	})
	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

// upsertLocked mirrors the ON CONFLICT upsert of the SQL repository.
func (r *payslipRepository) upsertLocked(employeeID, runID string, mutate func(p *payroll.Payslip)) payroll.Payslip {
	p, ok := r.findLocked(employeeID, runID)
	now := r.now()
	if !ok {
		p = payroll.Payslip{
			ID:              newID(),
			EmployeeID:      employeeID,
			PayrollRunID:    runID,
			TotalEarnings:   decimal.Zero,
			TotalDeductions: decimal.Zero,
			NetPay:          decimal.Zero,
			CreatedAt:       now,
		}
	}
	mutate(&p)
	p.Recalculate()
	p.UpdatedAt = now
	r.payslips[p.ID] = p
	return p
}

func (r *payslipRepository) AddDeduction(ctx context.Context, employeeID, runID string, amount decimal.Decimal) (payroll.Payslip, error) {
	defer r.lock(ctx)()

	return r.upsertLocked(employeeID, runID, func(p *payroll.Payslip) {
		p.TotalDeductions = p.TotalDeductions.Add(amount)
	}), nil
}

func (r *payslipRepository) ApplyStructure(ctx context.Context, employeeID, runID string, earnings, deductions decimal.Decimal) (payroll.Payslip, error) {
	defer r.lock(ctx)()

	return r.upsertLocked(employeeID, runID, func(p *payroll.Payslip) {
		p.TotalEarnings = earnings
		p.TotalDeductions = p.TotalDeductions.Add(deductions)
	}), nil
}

func (r *payslipRepository) SetAttachment(ctx context.Context, id, attachmentID string) (payroll.Payslip, error) {
	defer r.lock(ctx)()

	p, ok := r.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	p.AttachmentID = &attachmentID
	p.UpdatedAt = r.now()
	r.payslips[id] = p
	return p, nil
}
