package payroll

import (
	"context"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
)

// DeductionResult is the run and payslip a leave deduction was posted to.
type DeductionResult struct {
	Run     PayrollRun
	Payslip Payslip
}

// DeductionLinker posts leave deductions onto the employee's payslip for a
// month, creating the run and payslip on demand. Posting is not idempotent.
type DeductionLinker interface {
	ApplyDeduction(ctx context.Context, emp employee.Employee, yearMonth string, days int) (DeductionResult, error)
}

type PayrollService interface {
	DeductionLinker

	CreateRun(ctx context.Context, companyID string, req CreatePayrollRunRequest) (PayrollRunResponse, error)
	GetRun(ctx context.Context, id string) (PayrollRunResponse, error)
	ListRuns(ctx context.Context, filter PayrollRunFilter) (ListPayrollRunResponse, error)
	UpdateRun(ctx context.Context, req UpdatePayrollRunRequest) (PayrollRunResponse, error)
	DeleteRun(ctx context.Context, id string) error
	ProcessPayroll(ctx context.Context, req ProcessPayrollRequest) (ProcessPayrollResponse, error)
	EnsureMonthlyRuns(ctx context.Context, now time.Time) (int, error)

	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) (ListPayslipResponse, error)
	GeneratePayslipDocument(ctx context.Context, id string) (PayslipResponse, error)
}

type SalaryService interface {
	CreateStructure(ctx context.Context, req CreateSalaryStructureRequest) (SalaryStructureResponse, error)
	GetStructure(ctx context.Context, id string) (SalaryStructureResponse, error)
	ListStructures(ctx context.Context, filter SalaryStructureFilter) (ListSalaryStructureResponse, error)
	UpdateStructure(ctx context.Context, req UpdateSalaryStructureRequest) (SalaryStructureResponse, error)
	DeleteStructure(ctx context.Context, id string) error

	AddComponent(ctx context.Context, req CreateSalaryComponentRequest) (SalaryComponentResponse, error)
	UpdateComponent(ctx context.Context, req UpdateSalaryComponentRequest) (SalaryComponentResponse, error)
	DeleteComponent(ctx context.Context, id string) error
}
