package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// ========== PAYROLL RUN DTOs ==========

type CreatePayrollRunRequest struct {
	Month string `json:"month"`
}

func (r *CreatePayrollRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.ParseMonth(r.Month); !ok {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePayrollRunRequest struct {
	ID     string  `json:"-"`
	Status *string `json:"status,omitempty"`
}

func (r *UpdatePayrollRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != nil && PayrollRunStatus(*r.Status) != PayrollRunStatusPaid {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status can only be changed to Paid; use the process endpoint for Processed"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProcessPayrollRequest struct {
	RunID       string `json:"-"`
	ProcessedBy string `json:"-"`
}

type PayrollRunFilter struct {
	CompanyID string  `json:"-"`
	Month     *string `json:"month,omitempty"`
	Status    *string `json:"status,omitempty"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

func (f *PayrollRunFilter) Validate() error {
	errs := validator.NormalizePagination(&f.Limit, &f.Offset)

	if f.Month != nil {
		if _, ok := validator.ParseMonth(*f.Month); !ok {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
		}
	}
	if f.Status != nil && !PayrollRunStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be Draft, Processed or Paid"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollRunResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	Month       string  `json:"month"`
	Status      string  `json:"status"`
	ProcessedBy *string `json:"processed_by,omitempty"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

func ToPayrollRunResponse(r PayrollRun) PayrollRunResponse {
	resp := PayrollRunResponse{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		Month:       r.Month,
		Status:      string(r.Status),
		ProcessedBy: r.ProcessedBy,
	}
	if r.ProcessedAt != nil {
		s := r.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}

type ListPayrollRunResponse struct {
	PayrollRuns []PayrollRunResponse `json:"payroll_runs"`
	TotalCount  int64                `json:"total_count"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

type ProcessPayrollResponse struct {
	PayrollRunResponse
	PayslipCount     int             `json:"payslip_count"`
	SkippedEmployees []string        `json:"skipped_employees"`
	TotalNetPay      decimal.Decimal `json:"total_net_pay"`
}

// ========== PAYSLIP DTOs ==========

type PayslipFilter struct {
	CompanyID    string  `json:"-"`
	PayrollRunID *string `json:"payroll_run_id,omitempty"`
	EmployeeID   *string `json:"employee_id,omitempty"`
	Limit        int     `json:"limit"`
	Offset       int     `json:"offset"`
}

func (f *PayslipFilter) Validate() error {
	errs := validator.NormalizePagination(&f.Limit, &f.Offset)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayslipResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	PayrollRunID    string          `json:"payroll_run_id"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
	AttachmentID    *string         `json:"attachment_id,omitempty"`
	DocumentURL     *string         `json:"document_url,omitempty"`
}

func ToPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		PayrollRunID:    p.PayrollRunID,
		TotalEarnings:   p.TotalEarnings,
		TotalDeductions: p.TotalDeductions,
		NetPay:          p.NetPay,
		AttachmentID:    p.AttachmentID,
	}
}

type ListPayslipResponse struct {
	Payslips   []PayslipResponse `json:"payslips"`
	TotalCount int64             `json:"total_count"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// ========== SALARY STRUCTURE DTOs ==========

type CreateSalaryComponentRequest struct {
	StructureID   string          `json:"-"`
	Name          string          `json:"name"`
	ComponentType string          `json:"component_type"`
	Amount        decimal.Decimal `json:"amount"`
	Taxable       *bool           `json:"taxable,omitempty"`
}

func (r *CreateSalaryComponentRequest) validate(prefix string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: prefix + "name", Message: "name is required"})
	}
	if !ComponentType(strings.ToUpper(r.ComponentType)).IsValid() {
		errs = append(errs, validator.ValidationError{Field: prefix + "component_type", Message: "component_type must be BASIC, ALLOWANCE, BONUS or DEDUCTION"})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: prefix + "amount", Message: "amount must be non-negative"})
	}
	return errs
}

func (r *CreateSalaryComponentRequest) Validate() error {
	if errs := r.validate(""); len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreateSalaryComponentRequest) ToComponent() SalaryComponent {
	taxable := true
	if r.Taxable != nil {
		taxable = *r.Taxable
	}
	return SalaryComponent{
		StructureID:   r.StructureID,
		Name:          strings.TrimSpace(r.Name),
		ComponentType: ComponentType(strings.ToUpper(r.ComponentType)),
		Amount:        r.Amount,
		Taxable:       taxable,
	}
}

type UpdateSalaryComponentRequest struct {
	ID            string           `json:"-"`
	Name          *string          `json:"name,omitempty"`
	ComponentType *string          `json:"component_type,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Taxable       *bool            `json:"taxable,omitempty"`
}

func (r *UpdateSalaryComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not be empty"})
	}
	if r.ComponentType != nil && !ComponentType(strings.ToUpper(*r.ComponentType)).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "component_type", Message: "component_type must be BASIC, ALLOWANCE, BONUS or DEDUCTION"})
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the set fields onto c.
func (r *UpdateSalaryComponentRequest) Apply(c SalaryComponent) SalaryComponent {
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.ComponentType != nil {
		c.ComponentType = ComponentType(strings.ToUpper(*r.ComponentType))
	}
	if r.Amount != nil {
		c.Amount = *r.Amount
	}
	if r.Taxable != nil {
		c.Taxable = *r.Taxable
	}
	return c
}

type CreateSalaryStructureRequest struct {
	EmployeeID    string                         `json:"employee_id"`
	EffectiveDate string                         `json:"effective_date"`
	PayType       string                         `json:"pay_type"`
	IsActive      *bool                          `json:"is_active,omitempty"`
	Components    []CreateSalaryComponentRequest `json:"components"`
}

func (r *CreateSalaryStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if _, ok := validator.ParseDate(r.EffectiveDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "effective_date must be in YYYY-MM-DD format"})
	}
	if r.PayType != "" && !PayType(strings.ToUpper(r.PayType)).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "pay_type", Message: "pay_type must be MONTHLY, WEEKLY, DAILY or HOURLY"})
	}
	for i := range r.Components {
		errs = append(errs, r.Components[i].validate(fmt.Sprintf("components[%d].", i))...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToSalaryStructure builds the structure. Validate must have passed.
func (r *CreateSalaryStructureRequest) ToSalaryStructure() SalaryStructure {
	effective, _ := time.Parse(DateLayout, r.EffectiveDate)
	payType := PayTypeMonthly
	if r.PayType != "" {
		payType = PayType(strings.ToUpper(r.PayType))
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	s := SalaryStructure{
		EmployeeID:    r.EmployeeID,
		EffectiveDate: effective,
		PayType:       payType,
		IsActive:      active,
	}
	for i := range r.Components {
		s.Components = append(s.Components, r.Components[i].ToComponent())
	}
	return s
}

type UpdateSalaryStructureRequest struct {
	ID            string  `json:"-"`
	EffectiveDate *string `json:"effective_date,omitempty"`
	PayType       *string `json:"pay_type,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

func (r *UpdateSalaryStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EffectiveDate != nil {
		if _, ok := validator.ParseDate(*r.EffectiveDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "effective_date must be in YYYY-MM-DD format"})
		}
	}
	if r.PayType != nil && !PayType(strings.ToUpper(*r.PayType)).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "pay_type", Message: "pay_type must be MONTHLY, WEEKLY, DAILY or HOURLY"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the set fields onto s. Validate must have passed.
func (r *UpdateSalaryStructureRequest) Apply(s SalaryStructure) SalaryStructure {
	if r.EffectiveDate != nil {
		s.EffectiveDate, _ = time.Parse(DateLayout, *r.EffectiveDate)
	}
	if r.PayType != nil {
		s.PayType = PayType(strings.ToUpper(*r.PayType))
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	return s
}

type SalaryStructureFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

func (f *SalaryStructureFilter) Validate() error {
	errs := validator.NormalizePagination(&f.Limit, &f.Offset)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryComponentResponse struct {
	ID            string          `json:"id"`
	StructureID   string          `json:"structure_id"`
	Name          string          `json:"name"`
	ComponentType string          `json:"component_type"`
	Amount        decimal.Decimal `json:"amount"`
	Taxable       bool            `json:"taxable"`
}

func ToSalaryComponentResponse(c SalaryComponent) SalaryComponentResponse {
	return SalaryComponentResponse{
		ID:            c.ID,
		StructureID:   c.StructureID,
		Name:          c.Name,
		ComponentType: string(c.ComponentType),
		Amount:        c.Amount,
		Taxable:       c.Taxable,
	}
}

type SalaryStructureResponse struct {
	ID            string                    `json:"id"`
	EmployeeID    string                    `json:"employee_id"`
	EffectiveDate string                    `json:"effective_date"`
	PayType       string                    `json:"pay_type"`
	IsActive      bool                      `json:"is_active"`
	Components    []SalaryComponentResponse `json:"components"`
	TotalEarnings decimal.Decimal           `json:"total_earnings"`
	TotalDeducted decimal.Decimal           `json:"total_deductions"`
	NetPay        decimal.Decimal           `json:"net_pay"`
}

func ToSalaryStructureResponse(s SalaryStructure) SalaryStructureResponse {
	totals := SumComponents(s.Components)
	resp := SalaryStructureResponse{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		EffectiveDate: s.EffectiveDate.Format(DateLayout),
		PayType:       string(s.PayType),
		IsActive:      s.IsActive,
		Components:    make([]SalaryComponentResponse, 0, len(s.Components)),
		TotalEarnings: totals.Earnings,
		TotalDeducted: totals.Deductions,
		NetPay:        totals.Net,
	}
	for _, c := range s.Components {
		resp.Components = append(resp.Components, ToSalaryComponentResponse(c))
	}
	return resp
}

type ListSalaryStructureResponse struct {
	SalaryStructures []SalaryStructureResponse `json:"salary_structures"`
	TotalCount       int64                     `json:"total_count"`
	Limit            int                       `json:"limit"`
	Offset           int                       `json:"offset"`
}
