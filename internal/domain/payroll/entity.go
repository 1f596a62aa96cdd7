package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayrollRunStatus string

const (
	PayrollRunStatusDraft     PayrollRunStatus = "Draft"
	PayrollRunStatusProcessed PayrollRunStatus = "Processed"
	PayrollRunStatusPaid      PayrollRunStatus = "Paid"
)

func (s PayrollRunStatus) IsValid() bool {
	switch s {
	case PayrollRunStatusDraft, PayrollRunStatusProcessed, PayrollRunStatusPaid:
		return true
	}
	return false
}

// PayrollRun is unique per (CompanyID, Month). Month is "YYYY-MM".
type PayrollRun struct {
	ID          string
	CompanyID   string
	Month       string
	Status      PayrollRunStatus
	ProcessedBy *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r PayrollRun) IsDraft() bool {
	return r.Status == PayrollRunStatusDraft
}

// Payslip is unique per (EmployeeID, PayrollRunID).
type Payslip struct {
	ID              string
	EmployeeID      string
	PayrollRunID    string
	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	AttachmentID    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Recalculate restores NetPay = TotalEarnings - TotalDeductions.
func (p *Payslip) Recalculate() {
	p.NetPay = p.TotalEarnings.Sub(p.TotalDeductions)
}

type PayType string

const (
	PayTypeMonthly PayType = "MONTHLY"
	PayTypeWeekly  PayType = "WEEKLY"
	PayTypeDaily   PayType = "DAILY"
	PayTypeHourly  PayType = "HOURLY"
)

func (t PayType) IsValid() bool {
	switch t {
	case PayTypeMonthly, PayTypeWeekly, PayTypeDaily, PayTypeHourly:
		return true
	}
	return false
}

type ComponentType string

const (
	ComponentTypeBasic     ComponentType = "BASIC"
	ComponentTypeAllowance ComponentType = "ALLOWANCE"
	ComponentTypeBonus     ComponentType = "BONUS"
	ComponentTypeDeduction ComponentType = "DEDUCTION"
)

func (t ComponentType) IsValid() bool {
	return t.IsEarning() || t.IsDeduction()
}

func (t ComponentType) IsEarning() bool {
	switch t {
	case ComponentTypeBasic, ComponentTypeAllowance, ComponentTypeBonus:
		return true
	}
	return false
}

func (t ComponentType) IsDeduction() bool {
	return t == ComponentTypeDeduction
}

// SalaryStructure is an employee's pay definition. At most one active
// structure per employee is expected but not enforced.
type SalaryStructure struct {
	ID            string
	EmployeeID    string
	EffectiveDate time.Time
	PayType       PayType
	IsActive      bool
	Components    []SalaryComponent
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SalaryComponent belongs to exactly one structure and is deleted with it.
type SalaryComponent struct {
	ID            string
	StructureID   string
	Name          string
	ComponentType ComponentType
	Amount        decimal.Decimal
	Taxable       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
