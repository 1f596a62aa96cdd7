package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
	"github.com/bheem-hr/hr-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)

	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	ListByEmployee(w http.ResponseWriter, r *http.Request)
	GetByEmployeeAndDate(w http.ResponseWriter, r *http.Request)
	UpdateByEmployeeAndDate(w http.ResponseWriter, r *http.Request)
	DeleteByEmployeeAndDate(w http.ResponseWriter, r *http.Request)

	EmployeeHalfDays(w http.ResponseWriter, r *http.Request)
	CompanyHalfDays(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// ========== CLOCK ==========

func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), attendance.ClockRequest{EmployeeID: c.EmployeeID})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clocked in successfully", result)
}

func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), attendance.ClockRequest{EmployeeID: c.EmployeeID})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out successfully", result)
}

func (h *attendanceHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	h.list(w, r, c.CompanyID, &c.EmployeeID)
}

// ========== CRUD ==========

func (h *attendanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}

	var req attendance.CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create attendance decode error", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.Create(r.Context(), c.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance record created", result)
}

func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	h.list(w, r, c.CompanyID, optionalQuery(r, "employee_id"))
}

func (h *attendanceHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employee_id")
	h.list(w, r, c.CompanyID, &employeeID)
}

func (h *attendanceHandlerImpl) list(w http.ResponseWriter, r *http.Request, companyID string, employeeID *string) {
	limit, offset, ok := pagination(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.List(r.Context(), attendance.AttendanceFilter{
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Status:     optionalQuery(r, "status"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Attendances, response.NewMeta(result.Limit, result.Offset, result.TotalCount))
}

func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated", result)
}

func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record deleted", nil)
}

// ========== BY EMPLOYEE AND DATE ==========

func (h *attendanceHandlerImpl) GetByEmployeeAndDate(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetByEmployeeAndDate(r.Context(), chi.URLParam(r, "employee_id"), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) UpdateByEmployeeAndDate(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.UpdateByEmployeeAndDate(r.Context(), chi.URLParam(r, "employee_id"), chi.URLParam(r, "date"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated", result)
}

func (h *attendanceHandlerImpl) DeleteByEmployeeAndDate(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.DeleteByEmployeeAndDate(r.Context(), chi.URLParam(r, "employee_id"), chi.URLParam(r, "date")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record deleted", nil)
}

// ========== HALF-DAY REPORTS ==========

func (h *attendanceHandlerImpl) EmployeeHalfDays(w http.ResponseWriter, r *http.Request) {
	query := attendance.HalfDayQuery{
		EmployeeID: chi.URLParam(r, "employee_id"),
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}

	result, err := h.attendanceService.EmployeeHalfDays(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeHalfDaysCSV(w, fmt.Sprintf("halfdays-%s-%s-%s.csv", result.EmployeeCode, query.StartDate, query.EndDate), result.Records)
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) CompanyHalfDays(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}

	query := attendance.HalfDayQuery{
		CompanyID: c.CompanyID,
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.attendanceService.CompanyHalfDays(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeHalfDaysCSV(w, fmt.Sprintf("halfdays-company-%s-%s.csv", query.StartDate, query.EndDate), result.Records)
		return
	}
	response.Success(w, result)
}

func writeHalfDaysCSV(w http.ResponseWriter, filename string, records []attendance.HalfDayRecordResponse) {
	if records == nil {
		records = []attendance.HalfDayRecordResponse{}
	}
	data, err := gocsv.MarshalBytes(&records)
	if err != nil {
		slog.Error("Failed to encode half-day CSV", "error", err)
		response.InternalServerError(w, "Failed to encode CSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
