package event

import (
	"context"
	"time"
)

type Name string

const (
	AttendanceClockIn  Name = "attendance.clock_in"
	AttendanceClockOut Name = "attendance.clock_out"
	AttendanceCreated  Name = "attendance.created"
	AttendanceUpdated  Name = "attendance.updated"
	AttendanceDeleted  Name = "attendance.deleted"

	AttendanceAutoClosed Name = "attendance.auto_closed"

	LeaveRequestCreated  Name = "leave_request.created"
	LeaveRequestUpdated  Name = "leave_request.updated"
	LeaveRequestDeleted  Name = "leave_request.deleted"
	LeaveRequestApproved Name = "leave_request.approved"
	LeaveRequestRejected Name = "leave_request.rejected"

	PayrollRunCreated   Name = "payroll_run.created"
	PayrollRunProcessed Name = "payroll_run.processed"
	PayrollRunPaid      Name = "payroll_run.paid"
	PayrollRunDeleted   Name = "payroll_run.deleted"
	PayslipGenerated    Name = "payslip.generated"

	SalaryStructureCreated Name = "salary_structure.created"
	SalaryStructureUpdated Name = "salary_structure.updated"
	SalaryStructureDeleted Name = "salary_structure.deleted"
)

type Event struct {
	Name       Name           `json:"event"`
	CompanyID  string         `json:"company_id,omitempty"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func New(name Name, companyID string, payload map[string]any) Event {
	return Event{Name: name, CompanyID: companyID, Payload: payload, OccurredAt: time.Now().UTC()}
}

// Publisher delivers events to a bus. Services hold a Publisher that may be
// nil, in which case events are dropped.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
