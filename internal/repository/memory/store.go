// Package memory keeps every repository in process memory. It backs the
// service tests and the STORE_DRIVER=memory mode.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/leave"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/google/uuid"
)

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	employees     map[string]employee.Employee
	attendances   map[string]attendance.Attendance
	leaveRequests map[string]leave.LeaveRequest
	runs          map[string]payroll.PayrollRun
	payslips      map[string]payroll.Payslip
	structures    map[string]payroll.SalaryStructure
	components    map[string]payroll.SalaryComponent

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		employees:     make(map[string]employee.Employee),
		attendances:   make(map[string]attendance.Attendance),
		leaveRequests: make(map[string]leave.LeaveRequest),
		runs:          make(map[string]payroll.PayrollRun),
		payslips:      make(map[string]payroll.Payslip),
		structures:    make(map[string]payroll.SalaryStructure),
		components:    make(map[string]payroll.SalaryComponent),
		now:           time.Now,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type snapshot struct {
	employees     map[string]employee.Employee
	attendances   map[string]attendance.Attendance
	leaveRequests map[string]leave.LeaveRequest
	runs          map[string]payroll.PayrollRun
	payslips      map[string]payroll.Payslip
	structures    map[string]payroll.SalaryStructure
	components    map[string]payroll.SalaryComponent
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		employees:     maps.Clone(s.employees),
		attendances:   maps.Clone(s.attendances),
		leaveRequests: maps.Clone(s.leaveRequests),
		runs:          maps.Clone(s.runs),
		payslips:      maps.Clone(s.payslips),
		structures:    maps.Clone(s.structures),
		components:    maps.Clone(s.components),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.attendances = snap.attendances
	s.leaveRequests = snap.leaveRequests
	s.runs = snap.runs
	s.payslips = snap.payslips
	s.structures = snap.structures
	s.components = snap.components
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) == s
}

// WithinTx serializes transactions and restores the pre-transaction state
// when fn fails. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lock guards one repository call. A call made outside a transaction waits for
// the running one to finish, so it neither reads uncommitted state nor has its
// write undone by that transaction's rollback.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
