package leave

import "time"

const (
	ProbationDays = 90

	// Deduction days posted per leave day. The probation rate is fixed policy.
	ProbationDeductionRate = 2
	RegularDeductionRate   = 1
)

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ProbationEnd is the last day of probation.
func ProbationEnd(hireDate time.Time) time.Time {
	return civilDate(hireDate).AddDate(0, 0, ProbationDays)
}

// IsProbation reports whether a leave starting on startDate falls inside probation.
func IsProbation(hireDate, startDate time.Time) bool {
	return !civilDate(startDate).After(ProbationEnd(hireDate))
}

// LeaveDays counts calendar days in the inclusive range.
func LeaveDays(startDate, endDate time.Time) int {
	return int(civilDate(endDate).Sub(civilDate(startDate)).Hours()/24) + 1
}

func DeductionRate(probation bool) int {
	if probation {
		return ProbationDeductionRate
	}
	return RegularDeductionRate
}

// DeductionDays is the number of deduction units a leave posts to payroll.
func DeductionDays(startDate, endDate time.Time, probation bool) int {
	return LeaveDays(startDate, endDate) * DeductionRate(probation)
}

// PayrollMonth is the "YYYY-MM" period a leave is charged to: its start month.
func PayrollMonth(startDate time.Time) string {
	return startDate.Format("2006-01")
}
