package leave

import "time"

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "ANNUAL"
	LeaveTypeSick      LeaveType = "SICK"
	LeaveTypeCasual    LeaveType = "CASUAL"
	LeaveTypeMaternity LeaveType = "MATERNITY"
	LeaveTypePaternity LeaveType = "PATERNITY"
	LeaveTypeUnpaid    LeaveType = "UNPAID"
)

var leaveTypes = []LeaveType{
	LeaveTypeAnnual, LeaveTypeSick, LeaveTypeCasual,
	LeaveTypeMaternity, LeaveTypePaternity, LeaveTypeUnpaid,
}

func (t LeaveType) IsValid() bool {
	for _, lt := range leaveTypes {
		if lt == t {
			return true
		}
	}
	return false
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "PENDING"
	LeaveRequestStatusApproved LeaveRequestStatus = "APPROVED"
	LeaveRequestStatusRejected LeaveRequestStatus = "REJECTED"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected:
		return true
	}
	return false
}

// LeaveRequest moves PENDING -> APPROVED | REJECTED and never leaves a terminal state.
type LeaveRequest struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	LeaveType       LeaveType
	StartDate       time.Time
	EndDate         time.Time
	Reason          *string
	Status          LeaveRequestStatus
	IsProbation     bool
	DeductionDays   int
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r LeaveRequest) IsPending() bool {
	return r.Status == LeaveRequestStatusPending
}

func (r LeaveRequest) IsApproved() bool {
	return r.Status == LeaveRequestStatusApproved
}
