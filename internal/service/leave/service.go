package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/domain/leave"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
)

type LeaveServiceImpl struct {
	tx           database.Transactor
	leaveRepo    leave.LeaveRequestRepository
	employeeRepo employee.EmployeeRepository
	linker       payroll.DeductionLinker
	publisher    event.Publisher
	now          func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaveRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	linker payroll.DeductionLinker,
	publisher event.Publisher,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:           tx,
		leaveRepo:    leaveRepo,
		employeeRepo: employeeRepo,
		linker:       linker,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (l *LeaveServiceImpl) publish(ctx context.Context, name event.Name, req leave.LeaveRequest) {
	if l.publisher == nil {
		return
	}
	payload := map[string]any{
		"leave_request_id": req.ID,
		"employee_id":      req.EmployeeID,
		"leave_type":       string(req.LeaveType),
		"start_date":       req.StartDate.Format(leave.DateLayout),
		"end_date":         req.EndDate.Format(leave.DateLayout),
		"status":           string(req.Status),
		"deduction_days":   req.DeductionDays,
	}
	if err := l.publisher.Publish(ctx, event.New(name, req.CompanyID, payload)); err != nil {
		slog.Warn("failed to publish event", "event", name, "error", err)
	}
}

// Create stores a pending request and immediately posts its deduction to the
// payroll run of the start month. Both writes share one transaction.
func (l *LeaveServiceImpl) Create(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.CreateLeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.CreateLeaveRequestResponse{}, err
	}

	emp, err := l.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.CreateLeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	newRequest := req.ToLeaveRequest(emp.CompanyID)
	newRequest.IsProbation = leave.IsProbation(emp.HireDate, newRequest.StartDate)
	newRequest.DeductionDays = leave.DeductionDays(newRequest.StartDate, newRequest.EndDate, newRequest.IsProbation)
	month := leave.PayrollMonth(newRequest.StartDate)

	var (
		created leave.LeaveRequest
		posted  payroll.DeductionResult
	)
	err = l.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = l.leaveRepo.Create(txCtx, newRequest)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}

		posted, err = l.linker.ApplyDeduction(txCtx, emp, month, created.DeductionDays)
		if err != nil {
			return fmt.Errorf("failed to apply leave deduction: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.CreateLeaveRequestResponse{}, err
	}

	slog.Info("leave deduction posted",
		"leave_request_id", created.ID,
		"employee_id", emp.ID,
		"month", month,
		"deduction_days", created.DeductionDays,
		"probation", created.IsProbation,
	)
	l.publish(ctx, event.LeaveRequestCreated, created)

	return leave.CreateLeaveRequestResponse{
		LeaveRequestResponse: leave.ToResponse(created),
		Deduction: leave.DeductionResponse{
			PayrollRunID:    posted.Run.ID,
			PayslipID:       posted.Payslip.ID,
			Month:           month,
			LeaveDays:       leave.LeaveDays(created.StartDate, created.EndDate),
			DeductionPerDay: leave.DeductionRate(created.IsProbation),
			TotalDeduction:  created.DeductionDays,
		},
	}, nil
}

func (l *LeaveServiceImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	req, err := l.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return leave.ToResponse(req), nil
}

func (l *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := l.leaveRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	resp := leave.ListLeaveRequestResponse{
		LeaveRequests: make([]leave.LeaveRequestResponse, 0, len(requests)),
		TotalCount:    total,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}
	for _, r := range requests {
		resp.LeaveRequests = append(resp.LeaveRequests, leave.ToResponse(r))
	}
	return resp, nil
}

// Update edits a request that is not yet approved. The deduction posted at
// creation is left as it is.
func (l *LeaveServiceImpl) Update(ctx context.Context, req leave.UpdateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var updated leave.LeaveRequest
	err := l.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := l.leaveRepo.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to get leave request: %w", err)
		}
		if existing.IsApproved() {
			return leave.ErrLeaveRequestApproved
		}

		patched, err := req.Apply(existing)
		if err != nil {
			return err
		}
		updated, err = l.leaveRepo.Update(txCtx, patched)
		if err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.publish(ctx, event.LeaveRequestUpdated, updated)
	return leave.ToResponse(updated), nil
}

// Delete removes a request that is not approved. The status check and the
// delete run under one row lock so a concurrent approval cannot slip between.
func (l *LeaveServiceImpl) Delete(ctx context.Context, id string) error {
	var existing leave.LeaveRequest
	err := l.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		existing, err = l.leaveRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get leave request: %w", err)
		}
		if existing.IsApproved() {
			return leave.ErrLeaveRequestApproved
		}
		if err := l.leaveRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.publish(ctx, event.LeaveRequestDeleted, existing)
	return nil
}

func (l *LeaveServiceImpl) Approve(ctx context.Context, id string, approvedBy string) (leave.LeaveRequestResponse, error) {
	updated, err := l.decide(ctx, id, func(r *leave.LeaveRequest, at time.Time) {
		r.Status = leave.LeaveRequestStatusApproved
		r.ApprovedBy = &approvedBy
		r.ApprovedAt = &at
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.publish(ctx, event.LeaveRequestApproved, updated)
	return leave.ToResponse(updated), nil
}

func (l *LeaveServiceImpl) Reject(ctx context.Context, req leave.RejectLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	updated, err := l.decide(ctx, req.ID, func(r *leave.LeaveRequest, at time.Time) {
		r.Status = leave.LeaveRequestStatusRejected
		r.RejectedBy = &req.RejectedBy
		r.RejectedAt = &at
		r.RejectionReason = req.Reason
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.publish(ctx, event.LeaveRequestRejected, updated)
	return leave.ToResponse(updated), nil
}

// decide moves a pending request into a terminal state. The request row stays
// locked from the status check to the write, so of two concurrent decisions
// the second sees the first one's outcome.
func (l *LeaveServiceImpl) decide(ctx context.Context, id string, mutate func(r *leave.LeaveRequest, at time.Time)) (leave.LeaveRequest, error) {
	var updated leave.LeaveRequest
	err := l.tx.WithinTx(ctx, func(txCtx context.Context) error {
		request, err := l.leaveRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get leave request: %w", err)
		}
		if !request.IsPending() {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		mutate(&request, l.now())
		updated, err = l.leaveRepo.Update(txCtx, request)
		if err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	return updated, err
}
