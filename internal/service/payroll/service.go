package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/storage"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	tx            database.Transactor
	runRepo       payroll.PayrollRunRepository
	payslipRepo   payroll.PayslipRepository
	structureRepo payroll.SalaryStructureRepository
	employeeRepo  employee.EmployeeRepository
	fileStorage   storage.FileStorage
	publisher     event.Publisher
	now           func() time.Time
}

// NewPayrollService builds the service. fileStorage and publisher may be nil;
// without storage, payslip documents cannot be generated.
func NewPayrollService(
	tx database.Transactor,
	runRepo payroll.PayrollRunRepository,
	payslipRepo payroll.PayslipRepository,
	structureRepo payroll.SalaryStructureRepository,
	employeeRepo employee.EmployeeRepository,
	fileStorage storage.FileStorage,
	publisher event.Publisher,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		tx:            tx,
		runRepo:       runRepo,
		payslipRepo:   payslipRepo,
		structureRepo: structureRepo,
		employeeRepo:  employeeRepo,
		fileStorage:   fileStorage,
		publisher:     publisher,
		now:           time.Now,
	}
}

func (s *PayrollServiceImpl) publish(ctx context.Context, name event.Name, companyID string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.New(name, companyID, payload)); err != nil {
		slog.Warn("failed to publish event", "event", name, "error", err)
	}
}

func runPayload(run payroll.PayrollRun) map[string]any {
	return map[string]any{
		"payroll_run_id": run.ID,
		"month":          run.Month,
		"status":         string(run.Status),
	}
}

// ========== DEDUCTION LINKER ==========

// ApplyDeduction posts days deduction units onto the employee's payslip in the
// company's run for yearMonth. The run and payslip are created on demand.
func (s *PayrollServiceImpl) ApplyDeduction(ctx context.Context, emp employee.Employee, yearMonth string, days int) (payroll.DeductionResult, error) {
	if _, ok := validator.ParseMonth(yearMonth); !ok {
		return payroll.DeductionResult{}, validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}

	var result payroll.DeductionResult
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		run, err := s.runRepo.GetOrCreate(txCtx, emp.CompanyID, yearMonth)
		if err != nil {
			return fmt.Errorf("failed to get or create payroll run: %w", err)
		}

		payslip, err := s.payslipRepo.AddDeduction(txCtx, emp.ID, run.ID, decimal.NewFromInt(int64(days)))
		if err != nil {
			return fmt.Errorf("failed to post deduction: %w", err)
		}

		result = payroll.DeductionResult{Run: run, Payslip: payslip}
		return nil
	})
	if err != nil {
		return payroll.DeductionResult{}, err
	}
	return result, nil
}

// ========== PAYROLL RUNS ==========

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, companyID string, req payroll.CreatePayrollRunRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.runRepo.Create(ctx, payroll.PayrollRun{
		CompanyID: companyID,
		Month:     req.Month,
		Status:    payroll.PayrollRunStatusDraft,
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	s.publish(ctx, event.PayrollRunCreated, run.CompanyID, runPayload(run))
	return payroll.ToPayrollRunResponse(run), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return payroll.ToPayrollRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.PayrollRunFilter) (payroll.ListPayrollRunResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRunResponse{}, err
	}

	runs, total, err := s.runRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRunResponse{}, fmt.Errorf("failed to list payroll runs: %w", err)
	}

	resp := payroll.ListPayrollRunResponse{
		PayrollRuns: make([]payroll.PayrollRunResponse, 0, len(runs)),
		TotalCount:  total,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	for _, r := range runs {
		resp.PayrollRuns = append(resp.PayrollRuns, payroll.ToPayrollRunResponse(r))
	}
	return resp, nil
}

// UpdateRun only supports the Processed -> Paid transition.
func (s *PayrollServiceImpl) UpdateRun(ctx context.Context, req payroll.UpdatePayrollRunRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	var updated payroll.PayrollRun
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		run, err := s.runRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to get payroll run: %w", err)
		}
		updated = run
		if req.Status == nil {
			return nil
		}
		if run.Status != payroll.PayrollRunStatusProcessed {
			return payroll.ErrPayrollRunNotProcessed
		}

		run.Status = payroll.PayrollRunStatusPaid
		updated, err = s.runRepo.Update(txCtx, run)
		if err != nil {
			return fmt.Errorf("failed to update payroll run: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	if updated.Status == payroll.PayrollRunStatusPaid && req.Status != nil {
		s.publish(ctx, event.PayrollRunPaid, updated.CompanyID, runPayload(updated))
	}
	return payroll.ToPayrollRunResponse(updated), nil
}

// DeleteRun removes a Draft run together with its payslips. Payslip documents
// are removed from storage once the delete has committed.
func (s *PayrollServiceImpl) DeleteRun(ctx context.Context, id string) error {
	var (
		deleted   payroll.PayrollRun
		documents []string
	)
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		run, err := s.runRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get payroll run: %w", err)
		}
		if !run.IsDraft() {
			return payroll.ErrPayrollRunNotDraft
		}
		documents, err = s.runDocuments(txCtx, run)
		if err != nil {
			return err
		}
		if err := s.runRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete payroll run: %w", err)
		}
		deleted = run
		return nil
	})
	if err != nil {
		return err
	}

	s.removeDocuments(ctx, documents)
	s.publish(ctx, event.PayrollRunDeleted, deleted.CompanyID, runPayload(deleted))
	return nil
}

// runDocuments collects the attachment keys of every payslip in run.
func (s *PayrollServiceImpl) runDocuments(ctx context.Context, run payroll.PayrollRun) ([]string, error) {
	var keys []string
	for offset := 0; ; offset += validator.MaxLimit {
		page, _, err := s.payslipRepo.List(ctx, payroll.PayslipFilter{
			CompanyID:    run.CompanyID,
			PayrollRunID: &run.ID,
			Limit:        validator.MaxLimit,
			Offset:       offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list payslips: %w", err)
		}
		for _, p := range page {
			if p.AttachmentID != nil {
				keys = append(keys, *p.AttachmentID)
			}
		}
		if len(page) < validator.MaxLimit {
			return keys, nil
		}
	}
}

// ProcessPayroll fills every active employee's payslip from their active
// salary structure and marks the run Processed. Earnings are replaced and
// structure deductions are added to what leave postings already put there.
// Any failure rolls back every payslip write and the status change.
func (s *PayrollServiceImpl) ProcessPayroll(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.ProcessPayrollResponse, error) {
	resp := payroll.ProcessPayrollResponse{SkippedEmployees: []string{}, TotalNetPay: decimal.Zero}

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		run, err := s.runRepo.GetByID(txCtx, req.RunID)
		if err != nil {
			return fmt.Errorf("failed to get payroll run: %w", err)
		}
		if !run.IsDraft() {
			return payroll.ErrPayrollRunNotDraft
		}

		employees, err := s.employeeRepo.GetActiveByCompanyID(txCtx, run.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to list active employees: %w", err)
		}

		for _, emp := range employees {
			structure, err := s.structureRepo.GetActiveByEmployeeID(txCtx, emp.ID)
			if errors.Is(err, payroll.ErrSalaryStructureNotFound) {
				resp.SkippedEmployees = append(resp.SkippedEmployees, emp.ID)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to get salary structure for employee %s: %w", emp.ID, err)
			}

			totals := payroll.SumComponents(structure.Components)
			payslip, err := s.payslipRepo.ApplyStructure(txCtx, emp.ID, run.ID, totals.Earnings, totals.Deductions)
			if err != nil {
				return fmt.Errorf("failed to write payslip for employee %s: %w", emp.ID, err)
			}
			resp.PayslipCount++
			resp.TotalNetPay = resp.TotalNetPay.Add(payslip.NetPay)
		}

		processedAt := s.now()
		run.Status = payroll.PayrollRunStatusProcessed
		run.ProcessedAt = &processedAt
		if req.ProcessedBy != "" {
			processedBy := req.ProcessedBy
			run.ProcessedBy = &processedBy
		}
		run, err = s.runRepo.Update(txCtx, run)
		if err != nil {
			return fmt.Errorf("failed to update payroll run: %w", err)
		}
		resp.PayrollRunResponse = payroll.ToPayrollRunResponse(run)
		return nil
	})
	if err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	slog.Info("payroll run processed",
		"payroll_run_id", resp.ID,
		"month", resp.Month,
		"payslips", resp.PayslipCount,
		"skipped", len(resp.SkippedEmployees),
	)
	payload := map[string]any{
		"payroll_run_id": resp.ID,
		"month":          resp.Month,
		"status":         resp.Status,
		"payslip_count":  resp.PayslipCount,
		"total_net_pay":  resp.TotalNetPay.String(),
	}
	s.publish(ctx, event.PayrollRunProcessed, resp.CompanyID, payload)
	return resp, nil
}

// EnsureMonthlyRuns creates the Draft run of now's month for every company
// that does not have one yet and returns how many companies were visited.
func (s *PayrollServiceImpl) EnsureMonthlyRuns(ctx context.Context, now time.Time) (int, error) {
	month := now.Format("2006-01")

	companyIDs, err := s.employeeRepo.ListCompanyIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list companies: %w", err)
	}

	for _, companyID := range companyIDs {
		if _, err := s.runRepo.GetOrCreate(ctx, companyID, month); err != nil {
			return 0, fmt.Errorf("failed to ensure payroll run for company %s: %w", companyID, err)
		}
	}
	return len(companyIDs), nil
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	p, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return s.toPayslipResponse(ctx, p), nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) (payroll.ListPayslipResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayslipResponse{}, err
	}

	payslips, total, err := s.payslipRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayslipResponse{}, fmt.Errorf("failed to list payslips: %w", err)
	}

	resp := payroll.ListPayslipResponse{
		Payslips:   make([]payroll.PayslipResponse, 0, len(payslips)),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	for _, p := range payslips {
		resp.Payslips = append(resp.Payslips, s.toPayslipResponse(ctx, p))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) toPayslipResponse(ctx context.Context, p payroll.Payslip) payroll.PayslipResponse {
	resp := payroll.ToPayslipResponse(p)
	if p.AttachmentID == nil || s.fileStorage == nil {
		return resp
	}
	url, err := s.fileStorage.URL(*p.AttachmentID)
	if err != nil {
		slog.Warn("failed to resolve payslip document url", "payslip_id", p.ID, "error", err)
		return resp
	}
	resp.DocumentURL = &url
	return resp
}
