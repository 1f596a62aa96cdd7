package attendance

import (
	"sort"
	"time"
)

const (
	// LateCutoffMinutes is 09:35 expressed in minutes after midnight. Check-ins
	// are compared at minute resolution, so 09:35:59 is still on time.
	LateCutoffMinutes = 9*60 + 35

	// LateStreakLength consecutive late days convert the last of them into a half-day.
	LateStreakLength = 3

	// HalfDaysPerLeave half-days make one leave unit.
	HalfDaysPerLeave = 6
)

type HalfDayReason string

const (
	HalfDayReasonStatus     HalfDayReason = "status"
	HalfDayReasonLateStreak HalfDayReason = "late_streak"
)

// HalfDay is an attendance record that counts as a half-day.
type HalfDay struct {
	Attendance
	Reason HalfDayReason
}

type HalfDaySummary struct {
	EmployeeID   string
	HalfDays     []HalfDay
	HalfDayCount int
	LeaveCount   int
}

type CompanyHalfDaySummary struct {
	Employees    []HalfDaySummary
	HalfDayCount int
	LeaveCount   int
}

// IsLate reports whether a check-in happened after the cutoff.
func IsLate(checkIn time.Time) bool {
	return checkIn.Hour()*60+checkIn.Minute() > LateCutoffMinutes
}

// LeaveUnits converts a half-day count into whole leave units.
func LeaveUnits(halfDays int) int {
	return halfDays / HalfDaysPerLeave
}

// ComputeHalfDays scans one employee's records in date order. A HalfDay status
// counts directly and breaks any late streak; every third consecutive late
// check-in counts and starts a new streak; any other day breaks the streak.
func ComputeHalfDays(employeeID string, records []Attendance) HalfDaySummary {
	sorted := make([]Attendance, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	summary := HalfDaySummary{EmployeeID: employeeID, HalfDays: []HalfDay{}}
	consecutiveLate := 0

	for _, rec := range sorted {
		switch {
		case rec.Status.Is(StatusHalfDay):
			summary.HalfDays = append(summary.HalfDays, HalfDay{Attendance: rec, Reason: HalfDayReasonStatus})
			consecutiveLate = 0
			continue
		case rec.CheckIn != nil && IsLate(*rec.CheckIn):
			consecutiveLate++
		default:
			consecutiveLate = 0
		}

		if consecutiveLate == LateStreakLength {
			summary.HalfDays = append(summary.HalfDays, HalfDay{Attendance: rec, Reason: HalfDayReasonLateStreak})
			consecutiveLate = 0
		}
	}

	summary.HalfDayCount = len(summary.HalfDays)
	summary.LeaveCount = LeaveUnits(summary.HalfDayCount)
	return summary
}

// ComputeCompanyHalfDays groups records by employee and runs the per-employee
// scan on each group. The company leave count is derived from the summed
// half-days, not from the per-employee leave counts.
func ComputeCompanyHalfDays(records []Attendance) CompanyHalfDaySummary {
	grouped := make(map[string][]Attendance)
	var order []string
	for _, rec := range records {
		if _, seen := grouped[rec.EmployeeID]; !seen {
			order = append(order, rec.EmployeeID)
		}
		grouped[rec.EmployeeID] = append(grouped[rec.EmployeeID], rec)
	}
	sort.Strings(order)

	result := CompanyHalfDaySummary{Employees: []HalfDaySummary{}}
	for _, employeeID := range order {
		s := ComputeHalfDays(employeeID, grouped[employeeID])
		result.Employees = append(result.Employees, s)
		result.HalfDayCount += s.HalfDayCount
	}
	result.LeaveCount = LeaveUnits(result.HalfDayCount)
	return result
}
