package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/leave"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/bheem-hr/hr-backend-go/internal/repository/postgresql"
	leaveService "github.com/bheem-hr/hr-backend-go/internal/service/leave"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEmployee(t *testing.T, ctx context.Context, repo employee.EmployeeRepository, companyID, code string) employee.Employee {
	t.Helper()
	emp, err := repo.Create(ctx, employee.Employee{
		CompanyID:    companyID,
		EmployeeCode: code,
		Person:       employee.Person{FirstName: "Test", LastName: code, Email: code + "@example.com"},
		HireDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)
	companyID := uuid.NewString()

	emp := createEmployee(t, ctx, repo, companyID, "EMP-001")
	assert.Equal(t, employee.EmploymentStatusActive, emp.EmploymentStatus)

	_, err := repo.Create(ctx, employee.Employee{CompanyID: companyID, EmployeeCode: "EMP-001", HireDate: time.Now()})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	got, err := repo.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test EMP-001", got.FullName())

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	ids, err := repo.ListCompanyIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, companyID)
}

func TestAttendanceRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), uuid.NewString(), "EMP-001")
	repo := postgresql.NewAttendanceRepository(setup.DB)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	checkIn := time.Date(2024, 3, 4, 9, 36, 15, 0, time.UTC)
	created, err := repo.Create(ctx, attendance.Attendance{
		EmployeeID: emp.ID, CompanyID: emp.CompanyID, Date: date, CheckIn: &checkIn, Status: attendance.StatusPresent,
	})
	require.NoError(t, err)
	require.NotNil(t, created.CheckIn)
	assert.True(t, checkIn.Equal(*created.CheckIn))
	assert.Nil(t, created.CheckOut)

	_, err = repo.Create(ctx, attendance.Attendance{EmployeeID: emp.ID, CompanyID: emp.CompanyID, Date: date, Status: attendance.StatusAbsent})
	assert.ErrorIs(t, err, attendance.ErrAttendanceExists)

	openIDs := func(before time.Time) []string {
		open, err := repo.ListOpenBefore(ctx, before)
		require.NoError(t, err)
		var ids []string
		for _, a := range open {
			ids = append(ids, a.ID)
		}
		return ids
	}
	assert.Contains(t, openIDs(date.AddDate(0, 0, 1)), created.ID)
	assert.NotContains(t, openIDs(date), created.ID)

	checkOut := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
	created.CheckOut = &checkOut
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.True(t, checkOut.Equal(*updated.CheckOut))

	byDate, err := repo.GetByEmployeeAndDate(ctx, emp.ID, date)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byDate.ID)

	assert.NotContains(t, openIDs(date.AddDate(0, 0, 1)), created.ID)

	inRange, err := repo.ListByCompanyInRange(ctx, emp.CompanyID, date, date)
	require.NoError(t, err)
	assert.Len(t, inRange, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), attendance.ErrAttendanceNotFound)
}

func TestLeaveRequestRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), uuid.NewString(), "EMP-001")
	repo := postgresql.NewLeaveRequestRepository(setup.DB)

	created, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID:    emp.ID,
		CompanyID:     emp.CompanyID,
		LeaveType:     leave.LeaveTypeSick,
		StartDate:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		Status:        leave.LeaveRequestStatusPending,
		IsProbation:   true,
		DeductionDays: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, created.DeductionDays)

	approver := uuid.NewString()
	now := time.Now()
	created.Status = leave.LeaveRequestStatusApproved
	created.ApprovedBy = &approver
	created.ApprovedAt = &now
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.True(t, updated.IsApproved())

	status := string(leave.LeaveRequestStatusApproved)
	list, total, err := repo.List(ctx, leave.LeaveRequestFilter{CompanyID: emp.CompanyID, Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func TestPayslipRepository_AtomicDeductionUpsert(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), uuid.NewString(), "EMP-001")
	runs := postgresql.NewPayrollRunRepository(setup.DB)
	payslips := postgresql.NewPayslipRepository(setup.DB)

	run, err := runs.GetOrCreate(ctx, emp.CompanyID, "2024-02")
	require.NoError(t, err)
	again, err := runs.GetOrCreate(ctx, emp.CompanyID, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, run.ID, again.ID)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := payslips.AddDeduction(ctx, emp.ID, run.ID, decimal.NewFromInt(2))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := payslips.ApplyStructure(ctx, emp.ID, run.ID, decimal.NewFromInt(5000), decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, p.TotalDeductions.Equal(decimal.NewFromInt(540)), p.TotalDeductions.String())
	assert.True(t, p.NetPay.Equal(decimal.NewFromInt(4460)), p.NetPay.String())

	require.NoError(t, runs.Delete(ctx, run.ID))
	_, err = payslips.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, payroll.ErrPayslipNotFound)
}

func TestTransactor_RollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(setup.DB)
	runs := postgresql.NewPayrollRunRepository(setup.DB)
	companyID := uuid.NewString()

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := runs.GetOrCreate(ctx, companyID, "2024-02"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := runs.List(ctx, payroll.PayrollRunFilter{CompanyID: companyID, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSalaryStructureRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), uuid.NewString(), "EMP-001")
	repo := postgresql.NewSalaryStructureRepository(setup.DB)

	created, err := repo.Create(ctx, payroll.SalaryStructure{
		EmployeeID:    emp.ID,
		EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PayType:       payroll.PayTypeMonthly,
		IsActive:      true,
		Components: []payroll.SalaryComponent{
			{Name: "Basic", ComponentType: payroll.ComponentTypeBasic, Amount: decimal.NewFromInt(4000), Taxable: true},
			{Name: "PF", ComponentType: payroll.ComponentTypeDeduction, Amount: decimal.NewFromInt(400)},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Components, 2)

	active, err := repo.GetActiveByEmployeeID(ctx, emp.ID)
	require.NoError(t, err)
	totals := payroll.SumComponents(active.Components)
	assert.True(t, totals.Net.Equal(decimal.NewFromInt(3600)))

	_, err = repo.AddComponent(ctx, payroll.SalaryComponent{StructureID: uuid.NewString(), Name: "x", ComponentType: payroll.ComponentTypeBonus})
	assert.ErrorIs(t, err, payroll.ErrSalaryStructureNotFound)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetComponentByID(ctx, created.Components[0].ID)
	assert.ErrorIs(t, err, payroll.ErrSalaryComponentNotFound)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	leaves := postgresql.NewLeaveRequestRepository(setup.DB)
	payslips := postgresql.NewPayslipRepository(setup.DB)
	attendances := postgresql.NewAttendanceRepository(setup.DB)

	_, err := postgresql.NewEmployeeRepository(setup.DB).GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = payslips.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrPayslipNotFound)
	_, err = leaves.GetByIDForUpdate(ctx, "42")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
	assert.ErrorIs(t, leaves.Delete(ctx, "42"), leave.ErrLeaveRequestNotFound)
	assert.ErrorIs(t, attendances.Delete(ctx, "x"), attendance.ErrAttendanceNotFound)

	bogus := "EMP-001"
	list, total, err := leaves.List(ctx, leave.LeaveRequestFilter{CompanyID: uuid.NewString(), EmployeeID: &bogus, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestLeaveDecisions_ConcurrentApproversSerialize(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(setup.DB)
	leaves := postgresql.NewLeaveRequestRepository(setup.DB)
	emp := createEmployee(t, ctx, employees, uuid.NewString(), "EMP-001")
	svc := leaveService.NewLeaveService(postgresql.NewTransactor(setup.DB), leaves, employees, nil, nil)

	created, err := leaves.Create(ctx, leave.LeaveRequest{
		EmployeeID: emp.ID,
		CompanyID:  emp.CompanyID,
		LeaveType:  leave.LeaveTypeAnnual,
		StartDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:     leave.LeaveRequestStatusPending,
	})
	require.NoError(t, err)

	const deciders = 6
	errs := make(chan error, deciders)
	var wg sync.WaitGroup
	for i := 0; i < deciders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Approve(ctx, created.ID, uuid.NewString())
			errs <- err
		}()
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
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), leave.ErrLeaveRequestApproved)
}
