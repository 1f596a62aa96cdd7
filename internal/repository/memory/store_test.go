package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	runs := NewPayrollRunRepository(store)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		_, err := runs.GetOrCreate(ctx, "company-1", "2024-02")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, total, err := runs.List(ctx, payroll.PayrollRunFilter{CompanyID: "company-1", Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestWithinTx_NestedCallsJoinOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	runs := NewPayrollRunRepository(store)

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		return store.WithinTx(ctx, func(ctx context.Context) error {
			_, err := runs.GetOrCreate(ctx, "company-1", "2024-02")
			return err
		})
	})
	require.NoError(t, err)

	_, total, err := runs.List(ctx, payroll.PayrollRunFilter{CompanyID: "company-1", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestWithinTx_RollbackKeepsWritesMadeOutside(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	runs := NewPayrollRunRepository(store)
	atts := NewAttendanceRepository(store)

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := runs.GetOrCreate(ctx, "company-1", "2024-02"); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("boom")
		})
	}()
	<-entered

	created := make(chan attendance.Attendance, 1)
	go func() {
		a, err := atts.Create(ctx, attendance.Attendance{
			EmployeeID: "emp-1",
			CompanyID:  "company-1",
			Date:       time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
			Status:     attendance.StatusPresent,
		})
		assert.NoError(t, err)
		created <- a
	}()

	select {
	case <-created:
		t.Fatal("write outside the transaction finished while it was open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-txDone)

	a := <-created
	got, err := atts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", got.EmployeeID)

	_, total, err := runs.List(ctx, payroll.PayrollRunFilter{CompanyID: "company-1", Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWithinTx_OutsideReadsDoNotSeeUncommittedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	runs := NewPayrollRunRepository(store)

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := runs.GetOrCreate(ctx, "company-1", "2024-02"); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("boom")
		})
	}()
	<-entered

	seen := make(chan int64, 1)
	go func() {
		_, total, err := runs.List(ctx, payroll.PayrollRunFilter{CompanyID: "company-1", Limit: 10})
		assert.NoError(t, err)
		seen <- total
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	require.Error(t, <-txDone)
	assert.Zero(t, <-seen)
}

func TestPayrollRunRepository_GetOrCreateReturnsSameRun(t *testing.T) {
	ctx := context.Background()
	runs := NewPayrollRunRepository(NewStore())

	first, err := runs.GetOrCreate(ctx, "company-1", "2024-02")
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollRunStatusDraft, first.Status)

	second, err := runs.GetOrCreate(ctx, "company-1", "2024-02")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = runs.Create(ctx, payroll.PayrollRun{CompanyID: "company-1", Month: "2024-02"})
	assert.ErrorIs(t, err, payroll.ErrPayrollRunExists)
}

func TestPayslipRepository_ConcurrentDeductionsAreNotLost(t *testing.T) {
	ctx := context.Background()
	payslips := NewPayslipRepository(NewStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := payslips.AddDeduction(ctx, "emp-1", "run-1", decimal.NewFromInt(2))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := payslips.GetByEmployeeAndRun(ctx, "emp-1", "run-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(p.TotalDeductions), p.TotalDeductions.String())
	assert.True(t, decimal.NewFromInt(-100).Equal(p.NetPay), p.NetPay.String())
}

func TestPayslipRepository_ApplyStructureMergesPostedDeductions(t *testing.T) {
	ctx := context.Background()
	payslips := NewPayslipRepository(NewStore())

	_, err := payslips.AddDeduction(ctx, "emp-1", "run-1", decimal.NewFromInt(6))
	require.NoError(t, err)

	p, err := payslips.ApplyStructure(ctx, "emp-1", "run-1", decimal.NewFromInt(5000), decimal.NewFromInt(500))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(5000).Equal(p.TotalEarnings))
	assert.True(t, decimal.NewFromInt(506).Equal(p.TotalDeductions))
	assert.True(t, decimal.NewFromInt(4494).Equal(p.NetPay))
}

func TestSalaryStructureRepository_DeleteCascadesComponents(t *testing.T) {
	ctx := context.Background()
	repo := NewSalaryStructureRepository(NewStore())

	s, err := repo.Create(ctx, payroll.SalaryStructure{
		EmployeeID: "emp-1",
		IsActive:   true,
		Components: []payroll.SalaryComponent{
			{Name: "Basic", ComponentType: payroll.ComponentTypeBasic, Amount: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	require.Len(t, s.Components, 1)

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.GetComponentByID(ctx, s.Components[0].ID)
	assert.ErrorIs(t, err, payroll.ErrSalaryComponentNotFound)
}

func TestSalaryStructureRepository_ActiveTieBreaksOnCreation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewSalaryStructureRepository(store)

	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var latest payroll.SalaryStructure
	for i := 0; i < 5; i++ {
		clock = clock.Add(time.Minute)
		s, err := repo.Create(ctx, payroll.SalaryStructure{EmployeeID: "emp-1", EffectiveDate: effective, IsActive: true})
		require.NoError(t, err)
		latest = s
	}

	for i := 0; i < 10; i++ {
		got, err := repo.GetActiveByEmployeeID(ctx, "emp-1")
		require.NoError(t, err)
		assert.Equal(t, latest.ID, got.ID)
	}
}
