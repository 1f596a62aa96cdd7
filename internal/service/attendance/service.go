package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	publisher      event.Publisher
	location       *time.Location
	now            func() time.Time
}

// NewAttendanceService builds the service. publisher may be nil; loc is the
// company clock used to decide what "today" is on clock-in and clock-out.
func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	publisher event.Publisher,
	loc *time.Location,
) *AttendanceServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		publisher:      publisher,
		location:       loc,
		now:            time.Now,
	}
}

func (a *AttendanceServiceImpl) publish(ctx context.Context, name event.Name, companyID string, payload map[string]any) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, event.New(name, companyID, payload)); err != nil {
		slog.Warn("failed to publish event", "event", name, "error", err)
	}
}

func attendancePayload(att attendance.Attendance) map[string]any {
	resp := attendance.ToResponse(att)
	return map[string]any{
		"attendance_id": resp.ID,
		"employee_id":   resp.EmployeeID,
		"date":          resp.Date,
		"check_in":      resp.CheckIn,
		"check_out":     resp.CheckOut,
		"status":        resp.Status,
	}
}

// today returns the local wall clock and the civil date it falls on.
func (a *AttendanceServiceImpl) today() (time.Time, time.Time) {
	nowLocal := a.now().In(a.location)
	y, m, d := nowLocal.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	clock := time.Date(y, m, d, nowLocal.Hour(), nowLocal.Minute(), nowLocal.Second(), 0, time.UTC)
	return clock, date
}

func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	clock, date := a.today()
	var result attendance.Attendance

	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := a.attendanceRepo.GetByEmployeeAndDate(txCtx, emp.ID, date)
		switch {
		case errors.Is(err, attendance.ErrAttendanceNotFound):
			result, err = a.attendanceRepo.Create(txCtx, attendance.Attendance{
				EmployeeID: emp.ID,
				CompanyID:  emp.CompanyID,
				Date:       date,
				CheckIn:    &clock,
				Status:     attendance.StatusPresent,
			})
			if err != nil {
				return fmt.Errorf("failed to create attendance: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}

		if existing.CheckIn != nil {
			return attendance.ErrAlreadyCheckedIn
		}
		existing.CheckIn = &clock
		if existing.Status == "" || existing.Status.Is(attendance.StatusAbsent) {
			existing.Status = attendance.StatusPresent
		}
		result, err = a.attendanceRepo.Update(txCtx, existing)
		if err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.publish(ctx, event.AttendanceClockIn, result.CompanyID, attendancePayload(result))
	return attendance.ToResponse(result), nil
}

func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	clock, date := a.today()
	var result attendance.Attendance

	err := a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := a.attendanceRepo.GetByEmployeeAndDate(txCtx, req.EmployeeID, date)
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrNotCheckedIn
		}
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		if existing.CheckIn == nil {
			return attendance.ErrNotCheckedIn
		}
		if existing.CheckOut != nil {
			return attendance.ErrAlreadyCheckedOut
		}

		existing.CheckOut = &clock
		result, err = a.attendanceRepo.Update(txCtx, existing)
		if err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.publish(ctx, event.AttendanceClockOut, result.CompanyID, attendancePayload(result))
	return attendance.ToResponse(result), nil
}

// CloseStaleSessions stamps the auto-close check-out on every record from a
// day before now (in the company clock) that was checked in but never checked
// out. It returns how many records were closed.
func (a *AttendanceServiceImpl) CloseStaleSessions(ctx context.Context, now time.Time) (int, error) {
	local := now.In(a.location)
	y, m, d := local.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var closed []attendance.Attendance
	err := a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		open, err := a.attendanceRepo.ListOpenBefore(txCtx, today)
		if err != nil {
			return fmt.Errorf("failed to list open attendances: %w", err)
		}
		for _, rec := range open {
			checkOut := attendance.AutoCloseTime(rec)
			rec.CheckOut = &checkOut
			updated, err := a.attendanceRepo.Update(txCtx, rec)
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to close attendance %s: %w", rec.ID, err)
			}
			closed = append(closed, updated)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, rec := range closed {
		a.publish(ctx, event.AttendanceAutoClosed, rec.CompanyID, attendancePayload(rec))
	}
	return len(closed), nil
}

func (a *AttendanceServiceImpl) Create(ctx context.Context, companyID string, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if companyID == "" {
		companyID = emp.CompanyID
	}

	created, err := a.attendanceRepo.Create(ctx, req.ToAttendance(companyID))
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	a.publish(ctx, event.AttendanceCreated, created.CompanyID, attendancePayload(created))
	return attendance.ToResponse(created), nil
}

func (a *AttendanceServiceImpl) GetByID(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	att, err := a.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return attendance.ToResponse(att), nil
}

func parseDate(field, s string) (time.Time, error) {
	date, ok := validator.ParseDate(s)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: field, Message: field + " must be in YYYY-MM-DD format"}}
	}
	return date, nil
}

func (a *AttendanceServiceImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, dateStr string) (attendance.AttendanceResponse, error) {
	date, err := parseDate("date", dateStr)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	att, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return attendance.ToResponse(att), nil
}

func (a *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := attendance.ListAttendanceResponse{
		Attendances: make([]attendance.AttendanceResponse, 0, len(records)),
		TotalCount:  total,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	for _, r := range records {
		resp.Attendances = append(resp.Attendances, attendance.ToResponse(r))
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) Update(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var updated attendance.Attendance
	err := a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := a.attendanceRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		updated, err = a.applyUpdate(txCtx, existing, req)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.publish(ctx, event.AttendanceUpdated, updated.CompanyID, attendancePayload(updated))
	return attendance.ToResponse(updated), nil
}

func (a *AttendanceServiceImpl) UpdateByEmployeeAndDate(ctx context.Context, employeeID string, dateStr string, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	date, err := parseDate("date", dateStr)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var updated attendance.Attendance
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := a.attendanceRepo.GetByEmployeeAndDate(txCtx, employeeID, date)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		updated, err = a.applyUpdate(txCtx, existing, req)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.publish(ctx, event.AttendanceUpdated, updated.CompanyID, attendancePayload(updated))
	return attendance.ToResponse(updated), nil
}

func (a *AttendanceServiceImpl) applyUpdate(ctx context.Context, existing attendance.Attendance, req attendance.UpdateAttendanceRequest) (attendance.Attendance, error) {
	patched, err := req.Apply(existing)
	if err != nil {
		return attendance.Attendance{}, err
	}
	updated, err := a.attendanceRepo.Update(ctx, patched)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}
	return updated, nil
}

func (a *AttendanceServiceImpl) Delete(ctx context.Context, id string) error {
	existing, err := a.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get attendance: %w", err)
	}
	return a.delete(ctx, existing)
}

func (a *AttendanceServiceImpl) DeleteByEmployeeAndDate(ctx context.Context, employeeID string, dateStr string) error {
	date, err := parseDate("date", dateStr)
	if err != nil {
		return err
	}
	existing, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return fmt.Errorf("failed to get attendance: %w", err)
	}
	return a.delete(ctx, existing)
}

func (a *AttendanceServiceImpl) delete(ctx context.Context, existing attendance.Attendance) error {
	if err := a.attendanceRepo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	a.publish(ctx, event.AttendanceDeleted, existing.CompanyID, attendancePayload(existing))
	return nil
}
