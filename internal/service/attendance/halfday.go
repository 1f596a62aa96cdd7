package attendance

import (
	"context"
	"fmt"

	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
)

func (a *AttendanceServiceImpl) EmployeeHalfDays(ctx context.Context, query attendance.HalfDayQuery) (attendance.HalfDayReportResponse, error) {
	if err := query.Validate(); err != nil {
		return attendance.HalfDayReportResponse{}, err
	}

	emp, err := a.employeeRepo.GetByID(ctx, query.EmployeeID)
	if err != nil {
		return attendance.HalfDayReportResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	start, end := query.Range()
	records, err := a.attendanceRepo.ListByEmployeeInRange(ctx, emp.ID, start, end)
	if err != nil {
		return attendance.HalfDayReportResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	summary := attendance.ComputeHalfDays(emp.ID, records)

	resp := attendance.HalfDayReportResponse{
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		EmployeeName: emp.FullName(),
		StartDate:    query.StartDate,
		EndDate:      query.EndDate,
		HalfDayCount: summary.HalfDayCount,
		LeaveCount:   summary.LeaveCount,
		Records:      make([]attendance.HalfDayRecordResponse, 0, len(summary.HalfDays)),
	}
	for _, h := range summary.HalfDays {
		resp.Records = append(resp.Records, attendance.ToHalfDayRecordResponse(h, emp.EmployeeCode, emp.FullName()))
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) CompanyHalfDays(ctx context.Context, query attendance.HalfDayQuery) (attendance.CompanyHalfDayReportResponse, error) {
	if err := query.Validate(); err != nil {
		return attendance.CompanyHalfDayReportResponse{}, err
	}

	start, end := query.Range()
	records, err := a.attendanceRepo.ListByCompanyInRange(ctx, query.CompanyID, start, end)
	if err != nil {
		return attendance.CompanyHalfDayReportResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	employees, err := a.employeeRepo.GetByCompanyID(ctx, query.CompanyID)
	if err != nil {
		return attendance.CompanyHalfDayReportResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}
	byID := make(map[string]employee.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	summary := attendance.ComputeCompanyHalfDays(records)

	resp := attendance.CompanyHalfDayReportResponse{
		CompanyID:    query.CompanyID,
		StartDate:    query.StartDate,
		EndDate:      query.EndDate,
		HalfDayCount: summary.HalfDayCount,
		LeaveCount:   summary.LeaveCount,
		Employees:    make([]attendance.EmployeeHalfDayTotal, 0, len(summary.Employees)),
		Records:      []attendance.HalfDayRecordResponse{},
	}
	for _, s := range summary.Employees {
		emp := byID[s.EmployeeID]
		resp.Employees = append(resp.Employees, attendance.EmployeeHalfDayTotal{
			EmployeeID:   s.EmployeeID,
			EmployeeCode: emp.EmployeeCode,
			EmployeeName: emp.FullName(),
			HalfDayCount: s.HalfDayCount,
			LeaveCount:   s.LeaveCount,
		})
		for _, h := range s.HalfDays {
			resp.Records = append(resp.Records, attendance.ToHalfDayRecordResponse(h, emp.EmployeeCode, emp.FullName()))
		}
	}
	return resp, nil
}
