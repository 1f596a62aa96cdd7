package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestProbationEnd(t *testing.T) {
	assert.Equal(t, date("2024-03-31"), ProbationEnd(date("2024-01-01")))
}

func TestIsProbation_Boundary(t *testing.T) {
	hire := date("2024-01-01")
	assert.True(t, IsProbation(hire, date("2024-01-01")))
	assert.True(t, IsProbation(hire, date("2024-03-31")))
	assert.False(t, IsProbation(hire, date("2024-04-01")))
}

func TestLeaveDays_Inclusive(t *testing.T) {
	assert.Equal(t, 1, LeaveDays(date("2024-02-01"), date("2024-02-01")))
	assert.Equal(t, 3, LeaveDays(date("2024-02-01"), date("2024-02-03")))
	assert.Equal(t, 2, LeaveDays(date("2024-02-28"), date("2024-02-29")))
}

func TestLeaveDays_IgnoresClockAndZone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2024, 3, 9, 23, 0, 0, 0, loc)
	end := time.Date(2024, 3, 11, 1, 0, 0, 0, loc)
	assert.Equal(t, 3, LeaveDays(start, end))
}

func TestDeductionDays(t *testing.T) {
	hire := date("2024-01-01")

	start, end := date("2024-02-01"), date("2024-02-03")
	assert.Equal(t, 6, DeductionDays(start, end, IsProbation(hire, start)))

	start, end = date("2024-06-01"), date("2024-06-02")
	assert.Equal(t, 2, DeductionDays(start, end, IsProbation(hire, start)))
}

func TestPayrollMonth(t *testing.T) {
	assert.Equal(t, "2024-02", PayrollMonth(date("2024-02-27")))
}

func TestCreateLeaveRequestRequest_Validate(t *testing.T) {
	req := CreateLeaveRequestRequest{EmployeeID: "e1", LeaveType: "sick", StartDate: "2024-02-03", EndDate: "2024-02-01"}
	err := req.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "end_date")
	}

	req.EndDate = "2024-02-04"
	assert.NoError(t, req.Validate())
	assert.Equal(t, LeaveTypeSick, req.ToLeaveRequest("c1").LeaveType)

	req.LeaveType = "SABBATICAL"
	assert.Error(t, req.Validate())
}

func TestUpdateLeaveRequestRequest_Apply(t *testing.T) {
	orig := LeaveRequest{StartDate: date("2024-02-01"), EndDate: date("2024-02-03"), LeaveType: LeaveTypeAnnual}

	end := "2024-01-15"
	upd := UpdateLeaveRequestRequest{EndDate: &end}
	_, err := upd.Apply(orig)
	assert.Error(t, err)

	end = "2024-02-05"
	reason := "family"
	upd = UpdateLeaveRequestRequest{EndDate: &end, Reason: &reason}
	got, err := upd.Apply(orig)
	assert.NoError(t, err)
	assert.Equal(t, date("2024-02-05"), got.EndDate)
	assert.Equal(t, LeaveTypeAnnual, got.LeaveType)
	assert.Equal(t, "family", *got.Reason)
}
