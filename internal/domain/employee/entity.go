package employee

import (
	"strings"
	"time"
)

// Person holds the identity fields shared by employees and candidates.
type Person struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type Employee struct {
	ID           string
	CompanyID    string
	EmployeeCode string
	Person
	HireDate         time.Time
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "ACTIVE"
	EmploymentStatusInactive   EmploymentStatus = "INACTIVE"
	EmploymentStatusTerminated EmploymentStatus = "TERMINATED"
	EmploymentStatusResigned   EmploymentStatus = "RESIGNED"
)

// IsActive reports whether the employee takes part in payroll runs.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

// Candidate is a recruitment applicant. Only the identity part is modelled here.
type Candidate struct {
	ID        string
	CompanyID string
	Person
	AppliedAt time.Time
}
