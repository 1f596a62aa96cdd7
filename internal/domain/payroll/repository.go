package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

type PayrollRunRepository interface {
	// Create returns ErrPayrollRunExists when the company already has a run for the month.
	Create(ctx context.Context, run PayrollRun) (PayrollRun, error)

	// GetOrCreate returns the run for (companyID, month), inserting a Draft run
	// when none exists. Concurrent callers observe the same run.
	GetOrCreate(ctx context.Context, companyID, month string) (PayrollRun, error)

	GetByID(ctx context.Context, id string) (PayrollRun, error)
	List(ctx context.Context, filter PayrollRunFilter) ([]PayrollRun, int64, error)
	Update(ctx context.Context, run PayrollRun) (PayrollRun, error)

	// Delete removes the run and its payslips.
	Delete(ctx context.Context, id string) error
}

type PayslipRepository interface {
	GetByID(ctx context.Context, id string) (Payslip, error)
	GetByEmployeeAndRun(ctx context.Context, employeeID, runID string) (Payslip, error)
	List(ctx context.Context, filter PayslipFilter) ([]Payslip, int64, error)

	// AddDeduction creates a zeroed payslip when missing, then adds amount to
	// its deductions and recomputes net pay in one atomic write.
	AddDeduction(ctx context.Context, employeeID, runID string, amount decimal.Decimal) (Payslip, error)

	// ApplyStructure creates the payslip when missing, replaces its earnings,
	// adds deductions to those already posted and recomputes net pay.
	ApplyStructure(ctx context.Context, employeeID, runID string, earnings, deductions decimal.Decimal) (Payslip, error)

	SetAttachment(ctx context.Context, id, attachmentID string) (Payslip, error)
}

type SalaryStructureRepository interface {
	// Create inserts the structure together with its components.
	Create(ctx context.Context, structure SalaryStructure) (SalaryStructure, error)
	GetByID(ctx context.Context, id string) (SalaryStructure, error)

	// GetActiveByEmployeeID returns the active structure with the latest effective date.
	GetActiveByEmployeeID(ctx context.Context, employeeID string) (SalaryStructure, error)

	List(ctx context.Context, filter SalaryStructureFilter) ([]SalaryStructure, int64, error)
	Update(ctx context.Context, structure SalaryStructure) (SalaryStructure, error)

	// Delete removes the structure and its components.
	Delete(ctx context.Context, id string) error

	AddComponent(ctx context.Context, component SalaryComponent) (SalaryComponent, error)
	GetComponentByID(ctx context.Context, id string) (SalaryComponent, error)
	UpdateComponent(ctx context.Context, component SalaryComponent) (SalaryComponent, error)
	DeleteComponent(ctx context.Context, id string) error
}
