package leave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/leave"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/bheem-hr/hr-backend-go/internal/repository/memory"
	payrollservice "github.com/bheem-hr/hr-backend-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *LeaveServiceImpl
	store    *memory.Store
	requests leave.LeaveRequestRepository
	runs     payroll.PayrollRunRepository
	payslips payroll.PayslipRepository
	emp      employee.Employee
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	employees := memory.NewEmployeeRepository(store)
	requests := memory.NewLeaveRequestRepository(store)
	runs := memory.NewPayrollRunRepository(store)
	payslips := memory.NewPayslipRepository(store)
	structures := memory.NewSalaryStructureRepository(store)

	emp, err := employees.Create(context.Background(), employee.Employee{
		CompanyID:    "company-1",
		EmployeeCode: "EMP-001",
		Person:       employee.Person{FirstName: "Asha", LastName: "Rao"},
		HireDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	linker := payrollservice.NewPayrollService(store, runs, payslips, structures, employees, nil, nil)
	svc := NewLeaveService(store, requests, employees, linker, nil)

	return fixture{svc: svc, store: store, requests: requests, runs: runs, payslips: payslips, emp: emp}
}

func (f fixture) payslipFor(t *testing.T, month string) payroll.Payslip {
	t.Helper()
	ctx := context.Background()
	run, err := f.runs.GetOrCreate(ctx, f.emp.CompanyID, month)
	require.NoError(t, err)
	p, err := f.payslips.GetByEmployeeAndRun(ctx, f.emp.ID, run.ID)
	require.NoError(t, err)
	return p
}

func TestCreate_ProbationLeavePostsDoubleDeduction(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	resp, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID,
		LeaveType:  "sick",
		StartDate:  "2024-02-01",
		EndDate:    "2024-02-03",
	})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "SICK", resp.LeaveType)
	assert.True(t, resp.IsProbation)
	assert.Equal(t, 6, resp.DeductionDays)
	assert.Equal(t, "2024-02", resp.Deduction.Month)
	assert.Equal(t, 3, resp.Deduction.LeaveDays)
	assert.Equal(t, 2, resp.Deduction.DeductionPerDay)
	assert.Equal(t, 6, resp.Deduction.TotalDeduction)

	p := f.payslipFor(t, "2024-02")
	assert.Equal(t, resp.Deduction.PayslipID, p.ID)
	assert.True(t, p.TotalDeductions.Equal(decimal.NewFromInt(6)))
	assert.True(t, p.NetPay.Equal(decimal.NewFromInt(-6)))
}

func TestCreate_RegularLeavePostsSingleDeduction(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	resp, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID,
		LeaveType:  "ANNUAL",
		StartDate:  "2024-06-01",
		EndDate:    "2024-06-02",
	})
	require.NoError(t, err)
	assert.False(t, resp.IsProbation)
	assert.Equal(t, 2, resp.DeductionDays)

	p := f.payslipFor(t, "2024-06")
	assert.True(t, p.TotalDeductions.Equal(decimal.NewFromInt(2)))
}

func TestCreate_LastProbationDayStillDoubles(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	resp, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "CASUAL", StartDate: "2024-03-31", EndDate: "2024-03-31",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsProbation)
	assert.Equal(t, 2, resp.DeductionDays)
}

func TestCreate_TwoRequestsAccumulate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for _, r := range []struct{ start, end string }{
		{"2024-06-03", "2024-06-03"},
		{"2024-06-10", "2024-06-12"},
	} {
		_, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
			EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: r.start, EndDate: r.end,
		})
		require.NoError(t, err)
	}

	p := f.payslipFor(t, "2024-06")
	assert.True(t, p.TotalDeductions.Equal(decimal.NewFromInt(4)))
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-05", EndDate: "2024-06-01",
	})
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "SABBATICAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: "missing", LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, total, err := f.requests.List(ctx, leave.LeaveRequestFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

type failingLinker struct{}

func (failingLinker) ApplyDeduction(ctx context.Context, emp employee.Employee, yearMonth string, days int) (payroll.DeductionResult, error) {
	return payroll.DeductionResult{}, errors.New("payroll unavailable")
}

func TestCreate_RollsBackWhenPostingFails(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.svc.linker = failingLinker{}

	_, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	require.Error(t, err)

	_, total, err := f.requests.List(ctx, leave.LeaveRequestFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestApproveAndReject(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-05", EndDate: "2024-06-05",
	})
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, first.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "manager-1", *approved.ApprovedBy)

	_, err = f.svc.Approve(ctx, first.ID, "manager-1")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
	_, err = f.svc.Reject(ctx, leave.RejectLeaveRequestRequest{ID: first.ID, RejectedBy: "manager-1"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	reason := "team offsite"
	rejected, err := f.svc.Reject(ctx, leave.RejectLeaveRequestRequest{ID: second.ID, RejectedBy: "manager-2", Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)
	assert.Equal(t, "team offsite", *rejected.RejectionReason)

	// Decisions leave the posted deductions untouched.
	p := f.payslipFor(t, "2024-06")
	assert.True(t, p.TotalDeductions.Equal(decimal.NewFromInt(2)))

	_, err = f.svc.Approve(ctx, "missing", "manager-1")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestUpdateAndDelete_ApprovedIsLocked(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	created, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	require.NoError(t, err)

	reason := "family event"
	updated, err := f.svc.Update(ctx, leave.UpdateLeaveRequestRequest{ID: created.ID, Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, "family event", *updated.Reason)

	_, err = f.svc.Approve(ctx, created.ID, "manager-1")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, leave.UpdateLeaveRequestRequest{ID: created.ID, Reason: &reason})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestApproved)
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), leave.ErrLeaveRequestApproved)
}

func TestDelete_PendingRequest(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	created, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	_, err = f.svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

// lockingRepo counts reads that lock the request row.
type lockingRepo struct {
	leave.LeaveRequestRepository
	mu     sync.Mutex
	locked int
}

func (r *lockingRepo) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.mu.Lock()
	r.locked++
	r.mu.Unlock()
	return r.LeaveRequestRepository.GetByIDForUpdate(ctx, id)
}

func TestDecisionsAndDeleteLockTheRequest(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	repo := &lockingRepo{LeaveRequestRepository: f.requests}
	f.svc.leaveRepo = repo

	first, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-03", EndDate: "2024-06-03",
	})
	require.NoError(t, err)

	reason := "moved"
	_, err = f.svc.Update(ctx, leave.UpdateLeaveRequestRequest{ID: first.ID, Reason: &reason})
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, first.ID, "manager-1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, second.ID))

	assert.Equal(t, 3, repo.locked)
}

func TestConcurrentDecisions_OnlyOneWins(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	created, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	require.NoError(t, err)

	const deciders = 8
	errs := make(chan error, deciders)
	var wg sync.WaitGroup
	for i := 0; i < deciders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := f.svc.Approve(ctx, created.ID, "manager-1")
				errs <- err
				return
			}
			_, err := f.svc.Reject(ctx, leave.RejectLeaveRequestRequest{ID: created.ID, RejectedBy: "manager-2"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
	}
	assert.Equal(t, 1, wins)
}

func TestConcurrentApproveAndDelete_NeverBoth(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for i := 0; i < 20; i++ {
		created, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
			EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
		})
		require.NoError(t, err)

		var approveErr, deleteErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, approveErr = f.svc.Approve(ctx, created.ID, "manager-1")
		}()
		go func() {
			defer wg.Done()
			deleteErr = f.svc.Delete(ctx, created.ID)
		}()
		wg.Wait()

		if approveErr == nil {
			assert.ErrorIs(t, deleteErr, leave.ErrLeaveRequestApproved)
			got, err := f.svc.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "APPROVED", got.Status)
		} else {
			assert.NoError(t, deleteErr)
			assert.ErrorIs(t, approveErr, leave.ErrLeaveRequestNotFound)
		}
	}
}

func TestList_FiltersByStatus(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	created, err := f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-06-01", EndDate: "2024-06-01",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, leave.CreateLeaveRequestRequest{
		EmployeeID: f.emp.ID, LeaveType: "ANNUAL", StartDate: "2024-07-01", EndDate: "2024-07-01",
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, created.ID, "manager-1")
	require.NoError(t, err)

	status := "approved"
	resp, err := f.svc.List(ctx, leave.LeaveRequestFilter{CompanyID: "company-1", Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.TotalCount)
	require.Len(t, resp.LeaveRequests, 1)
	assert.Equal(t, created.ID, resp.LeaveRequests[0].ID)
}
