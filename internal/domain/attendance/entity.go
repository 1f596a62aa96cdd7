package attendance

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusHalfDay Status = "HalfDay"
	StatusWFH     Status = "WFH"
	StatusLeave   Status = "Leave"
)

var statuses = []Status{StatusPresent, StatusAbsent, StatusHalfDay, StatusWFH, StatusLeave}

// ParseStatus matches s against the known statuses ignoring case.
func ParseStatus(s string) (Status, bool) {
	for _, st := range statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// Is compares statuses ignoring case, as stored rows may carry legacy casing.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// Attendance is one employee's record for one calendar day. CheckIn and
// CheckOut carry the record's date with the local clock time.
type Attendance struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AutoCloseMinutes is 18:00, the check-out stamped on sessions left open past their day.
const AutoCloseMinutes = 18 * 60

// AutoCloseTime is the check-out given to an open record once its day is over:
// 18:00 on the record's date, or the check-in itself when that came later.
func AutoCloseTime(a Attendance) time.Time {
	closeAt := a.Date.Add(AutoCloseMinutes * time.Minute)
	if a.CheckIn != nil && a.CheckIn.After(closeAt) {
		return *a.CheckIn
	}
	return closeAt
}
