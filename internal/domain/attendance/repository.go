package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Create returns ErrAttendanceExists when the employee already has a record for the date.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)

	Update(ctx context.Context, attendance Attendance) (Attendance, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListByEmployeeInRange returns records ordered by date, both bounds inclusive.
	ListByEmployeeInRange(ctx context.Context, employeeID string, start, end time.Time) ([]Attendance, error)

	// ListByCompanyInRange returns records ordered by employee then date.
	ListByCompanyInRange(ctx context.Context, companyID string, start, end time.Time) ([]Attendance, error)

	// ListOpenBefore returns records dated before date that have a check-in
	// but no check-out, ordered by date then employee.
	ListOpenBefore(ctx context.Context, date time.Time) ([]Attendance, error)
}
