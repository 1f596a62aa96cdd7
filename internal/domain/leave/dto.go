package leave

import (
	"strings"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/pkg/validator"
)

const DateLayout = "2006-01-02"

type CreateLeaveRequestRequest struct {
	EmployeeID string  `json:"employee_id"`
	LeaveType  string  `json:"leave_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Reason     *string `json:"reason,omitempty"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.LeaveType) {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is required"})
	} else if !LeaveType(strings.ToUpper(r.LeaveType)).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is not a known leave type"})
	}
	errs = append(errs, validateRange(r.StartDate, r.EndDate)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToLeaveRequest builds a pending request. Validate must have passed.
func (r *CreateLeaveRequestRequest) ToLeaveRequest(companyID string) LeaveRequest {
	start, _ := time.Parse(DateLayout, r.StartDate)
	end, _ := time.Parse(DateLayout, r.EndDate)
	return LeaveRequest{
		EmployeeID: r.EmployeeID,
		CompanyID:  companyID,
		LeaveType:  LeaveType(strings.ToUpper(r.LeaveType)),
		StartDate:  start,
		EndDate:    end,
		Reason:     r.Reason,
		Status:     LeaveRequestStatusPending,
	}
}

// UpdateLeaveRequestRequest is a partial update; nil fields are left unchanged.
type UpdateLeaveRequestRequest struct {
	ID        string  `json:"-"`
	LeaveType *string `json:"leave_type,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func (r *UpdateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LeaveType != nil && !LeaveType(strings.ToUpper(*r.LeaveType)).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is not a known leave type"})
	}
	if r.StartDate != nil {
		if _, ok := validator.ParseDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.ParseDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the set fields onto req and checks the resulting date range.
func (r *UpdateLeaveRequestRequest) Apply(req LeaveRequest) (LeaveRequest, error) {
	if r.LeaveType != nil {
		req.LeaveType = LeaveType(strings.ToUpper(*r.LeaveType))
	}
	if r.StartDate != nil {
		req.StartDate, _ = time.Parse(DateLayout, *r.StartDate)
	}
	if r.EndDate != nil {
		req.EndDate, _ = time.Parse(DateLayout, *r.EndDate)
	}
	if r.Reason != nil {
		req.Reason = r.Reason
	}
	if req.EndDate.Before(req.StartDate) {
		return LeaveRequest{}, validator.ValidationErrors{{Field: "end_date", Message: ErrInvalidDateRange.Error()}}
	}
	return req, nil
}

type RejectLeaveRequestRequest struct {
	ID         string  `json:"-"`
	RejectedBy string  `json:"-"`
	Reason     *string `json:"reason,omitempty"`
}

type LeaveRequestFilter struct {
	CompanyID  string  `json:"-"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

func (f *LeaveRequestFilter) Validate() error {
	errs := validator.NormalizePagination(&f.Limit, &f.Offset)

	if f.Status != nil {
		s := strings.ToUpper(*f.Status)
		if !LeaveRequestStatus(s).IsValid() {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be PENDING, APPROVED or REJECTED"})
		} else {
			f.Status = &s
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateRange(startStr, endStr string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	start, okStart := validator.ParseDate(startStr)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	end, okEnd := validator.ParseDate(endStr)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrInvalidDateRange.Error()})
	}
	return errs
}

type LeaveRequestResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	CompanyID       string  `json:"company_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Reason          *string `json:"reason,omitempty"`
	Status          string  `json:"status"`
	IsProbation     bool    `json:"is_probation"`
	DeductionDays   int     `json:"deduction_days"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	RejectedBy      *string `json:"rejected_by,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

func ToResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		CompanyID:       r.CompanyID,
		LeaveType:       string(r.LeaveType),
		StartDate:       r.StartDate.Format(DateLayout),
		EndDate:         r.EndDate.Format(DateLayout),
		Reason:          r.Reason,
		Status:          string(r.Status),
		IsProbation:     r.IsProbation,
		DeductionDays:   r.DeductionDays,
		ApprovedBy:      r.ApprovedBy,
		RejectedBy:      r.RejectedBy,
		RejectionReason: r.RejectionReason,
	}
}

// DeductionResponse describes the payroll posting made for a new leave request.
type DeductionResponse struct {
	PayrollRunID    string `json:"payroll_run_id"`
	PayslipID       string `json:"payslip_id"`
	Month           string `json:"month"`
	LeaveDays       int    `json:"leave_days"`
	DeductionPerDay int    `json:"deduction_per_day"`
	TotalDeduction  int    `json:"total_deduction"`
}

type CreateLeaveRequestResponse struct {
	LeaveRequestResponse
	Deduction DeductionResponse `json:"deduction"`
}

type ListLeaveRequestResponse struct {
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
	TotalCount    int64                  `json:"total_count"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}
