package attendance

import (
	"fmt"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/pkg/validator"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// ParseClock parses "HH:MM" or "HH:MM:SS" and places it on date.
func ParseClock(date time.Time, s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if c, err := time.Parse(layout, s); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), c.Second(), 0, date.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid clock time %q", s)
}

func formatClock(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(ClockLayout)
	return &s
}

// ========== CLOCK ==========

type ClockRequest struct {
	EmployeeID string `json:"employee_id"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== CRUD ==========

type CreateAttendanceRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	CheckIn    *string `json:"check_in,omitempty"`
	CheckOut   *string `json:"check_out,omitempty"`
	Status     string  `json:"status,omitempty"`
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	date, ok := validator.ParseDate(r.Date)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}

	if r.Status != "" {
		if _, ok := ParseStatus(r.Status); !ok {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of Present, Absent, HalfDay, WFH, Leave"})
		}
	}

	errs = append(errs, validateClocks(date, r.CheckIn, r.CheckOut)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToAttendance builds the record. Validate must have passed.
func (r *CreateAttendanceRequest) ToAttendance(companyID string) Attendance {
	date, _ := time.Parse(DateLayout, r.Date)
	status := StatusPresent
	if s, ok := ParseStatus(r.Status); ok {
		status = s
	}
	a := Attendance{
		EmployeeID: r.EmployeeID,
		CompanyID:  companyID,
		Date:       date,
		Status:     status,
	}
	if r.CheckIn != nil {
		ci, _ := ParseClock(date, *r.CheckIn)
		a.CheckIn = &ci
	}
	if r.CheckOut != nil {
		co, _ := ParseClock(date, *r.CheckOut)
		a.CheckOut = &co
	}
	return a
}

// UpdateAttendanceRequest is a partial update; nil fields are left unchanged.
type UpdateAttendanceRequest struct {
	ID       string  `json:"-"`
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
	Status   *string `json:"status,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != nil {
		if _, ok := ParseStatus(*r.Status); !ok {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of Present, Absent, HalfDay, WFH, Leave"})
		}
	}
	errs = append(errs, validateClocks(time.Time{}, r.CheckIn, r.CheckOut)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the set fields onto a.
func (r *UpdateAttendanceRequest) Apply(a Attendance) (Attendance, error) {
	if r.CheckIn != nil {
		ci, err := ParseClock(a.Date, *r.CheckIn)
		if err != nil {
			return Attendance{}, validator.ValidationErrors{{Field: "check_in", Message: "check_in must be HH:MM or HH:MM:SS"}}
		}
		a.CheckIn = &ci
	}
	if r.CheckOut != nil {
		co, err := ParseClock(a.Date, *r.CheckOut)
		if err != nil {
			return Attendance{}, validator.ValidationErrors{{Field: "check_out", Message: "check_out must be HH:MM or HH:MM:SS"}}
		}
		a.CheckOut = &co
	}
	if r.Status != nil {
		if s, ok := ParseStatus(*r.Status); ok {
			a.Status = s
		}
	}
	if a.CheckIn != nil && a.CheckOut != nil && a.CheckOut.Before(*a.CheckIn) {
		return Attendance{}, validator.ValidationErrors{{Field: "check_out", Message: "check_out must not be before check_in"}}
	}
	return a, nil
}

func validateClocks(date time.Time, checkIn, checkOut *string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	var ci, co time.Time
	var err error

	if checkIn != nil {
		if ci, err = ParseClock(date, *checkIn); err != nil {
			errs = append(errs, validator.ValidationError{Field: "check_in", Message: "check_in must be HH:MM or HH:MM:SS"})
		}
	}
	if checkOut != nil {
		if co, err = ParseClock(date, *checkOut); err != nil {
			errs = append(errs, validator.ValidationError{Field: "check_out", Message: "check_out must be HH:MM or HH:MM:SS"})
		}
	}
	if len(errs) == 0 && checkIn != nil && checkOut != nil && co.Before(ci) {
		errs = append(errs, validator.ValidationError{Field: "check_out", Message: "check_out must not be before check_in"})
	}
	return errs
}

type AttendanceFilter struct {
	CompanyID  string  `json:"-"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

func (f *AttendanceFilter) Validate() error {
	errs := validator.NormalizePagination(&f.Limit, &f.Offset)

	if f.Status != nil {
		s, ok := ParseStatus(*f.Status)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of Present, Absent, HalfDay, WFH, Leave"})
		} else {
			str := string(s)
			f.Status = &str
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	CompanyID  string  `json:"company_id"`
	Date       string  `json:"date"`
	CheckIn    *string `json:"check_in,omitempty"`
	CheckOut   *string `json:"check_out,omitempty"`
	Status     string  `json:"status"`
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		CompanyID:  a.CompanyID,
		Date:       a.Date.Format(DateLayout),
		CheckIn:    formatClock(a.CheckIn),
		CheckOut:   formatClock(a.CheckOut),
		Status:     string(a.Status),
	}
}

type ListAttendanceResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	TotalCount  int64                `json:"total_count"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// ========== HALF-DAY REPORT ==========

type HalfDayQuery struct {
	EmployeeID string `json:"employee_id,omitempty"`
	CompanyID  string `json:"company_id,omitempty"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (q *HalfDayQuery) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.ParseDate(q.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	end, okEnd := validator.ParseDate(q.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrInvalidDateRange.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range returns the parsed bounds. Validate must have passed.
func (q *HalfDayQuery) Range() (time.Time, time.Time) {
	start, _ := time.Parse(DateLayout, q.StartDate)
	end, _ := time.Parse(DateLayout, q.EndDate)
	return start, end
}

// HalfDayRecordResponse is one half-day, enriched with employee identity.
// The csv tags drive the CSV export.
type HalfDayRecordResponse struct {
	EmployeeID   string  `json:"employee_id" csv:"employee_id"`
	EmployeeCode string  `json:"employee_code" csv:"employee_code"`
	EmployeeName string  `json:"employee_name" csv:"employee_name"`
	Date         string  `json:"date" csv:"date"`
	CheckIn      *string `json:"check_in,omitempty" csv:"check_in"`
	CheckOut     *string `json:"check_out,omitempty" csv:"check_out"`
	Status       string  `json:"status" csv:"status"`
	Reason       string  `json:"reason" csv:"reason"`
}

func ToHalfDayRecordResponse(h HalfDay, code, name string) HalfDayRecordResponse {
	return HalfDayRecordResponse{
		EmployeeID:   h.EmployeeID,
		EmployeeCode: code,
		EmployeeName: name,
		Date:         h.Date.Format(DateLayout),
		CheckIn:      formatClock(h.CheckIn),
		CheckOut:     formatClock(h.CheckOut),
		Status:       string(h.Status),
		Reason:       string(h.Reason),
	}
}

type HalfDayReportResponse struct {
	EmployeeID   string                  `json:"employee_id"`
	EmployeeCode string                  `json:"employee_code"`
	EmployeeName string                  `json:"employee_name"`
	StartDate    string                  `json:"start_date"`
	EndDate      string                  `json:"end_date"`
	HalfDayCount int                     `json:"halfday_count"`
	LeaveCount   int                     `json:"leave_count"`
	Records      []HalfDayRecordResponse `json:"records"`
}

type EmployeeHalfDayTotal struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	EmployeeName string `json:"employee_name"`
	HalfDayCount int    `json:"halfday_count"`
	LeaveCount   int    `json:"leave_count"`
}

type CompanyHalfDayReportResponse struct {
	CompanyID    string                  `json:"company_id"`
	StartDate    string                  `json:"start_date"`
	EndDate      string                  `json:"end_date"`
	HalfDayCount int                     `json:"halfday_count"`
	LeaveCount   int                     `json:"leave_count"`
	Employees    []EmployeeHalfDayTotal  `json:"employees"`
	Records      []HalfDayRecordResponse `json:"records"`
}
