package attendance

import "context"

type AttendanceService interface {
	ClockIn(ctx context.Context, req ClockRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, req ClockRequest) (AttendanceResponse, error)

	Create(ctx context.Context, companyID string, req CreateAttendanceRequest) (AttendanceResponse, error)
	GetByID(ctx context.Context, id string) (AttendanceResponse, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (AttendanceResponse, error)
	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	Update(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
	UpdateByEmployeeAndDate(ctx context.Context, employeeID string, date string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, id string) error
	DeleteByEmployeeAndDate(ctx context.Context, employeeID string, date string) error

	EmployeeHalfDays(ctx context.Context, query HalfDayQuery) (HalfDayReportResponse, error)
	CompanyHalfDays(ctx context.Context, query HalfDayQuery) (CompanyHalfDayReportResponse, error)
}
