package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/bheem-hr/hr-backend-go/internal/domain/auth"
	"github.com/bheem-hr/hr-backend-go/internal/handler/http/middleware"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	// FilesDir is served under /files to authorized payroll viewers. Empty disables it.
	FilesDir string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	payrollHandler PayrollHandler,
	eventHandler EventHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers, so the stream also accepts ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired)
			r.With(middleware.RequirePermission(auth.PermissionEventsView)).Get("/events/stream", eventHandler.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/attendance", func(r chi.Router) {
				// Self service
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.With(middleware.RequirePermission(auth.PermissionAttendanceCreate)).Post("/clock-in", attendanceHandler.ClockIn)
					r.With(middleware.RequirePermission(auth.PermissionAttendanceCreate)).Post("/clock-out", attendanceHandler.ClockOut)
					r.With(middleware.RequirePermission(auth.PermissionAttendanceViewOwn)).Get("/me", attendanceHandler.ListMine)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionAttendanceViewAll))
					r.Get("/", attendanceHandler.List)
					r.Get("/{id}", attendanceHandler.Get)
					r.Get("/employees/{employee_id}", attendanceHandler.ListByEmployee)
					r.Get("/employees/{employee_id}/{date}", attendanceHandler.GetByEmployeeAndDate)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionAttendanceManage))
					r.Post("/", attendanceHandler.Create)
					r.Put("/{id}", attendanceHandler.Update)
					r.Delete("/{id}", attendanceHandler.Delete)
					r.Put("/employees/{employee_id}/{date}", attendanceHandler.UpdateByEmployeeAndDate)
					r.Delete("/employees/{employee_id}/{date}", attendanceHandler.DeleteByEmployeeAndDate)
				})

				r.Route("/half-days", func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionReportsView))
					r.Get("/company", attendanceHandler.CompanyHalfDays)
					r.Get("/employees/{employee_id}", attendanceHandler.EmployeeHalfDays)
				})
			})

			r.Route("/leave/requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(auth.PermissionLeaveCreate)).Post("/", leaveHandler.CreateRequest)
				r.With(middleware.RequireEmployee, middleware.RequirePermission(auth.PermissionLeaveViewOwn)).Get("/me", leaveHandler.GetMyRequests)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionLeaveViewAll))
					r.Get("/", leaveHandler.ListRequests)
					r.Get("/{id}", leaveHandler.GetRequest)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionLeaveApprove))
					r.Put("/{id}", leaveHandler.UpdateRequest)
					r.Delete("/{id}", leaveHandler.DeleteRequest)
					r.Post("/{id}/approve", leaveHandler.ApproveRequest)
					r.Post("/{id}/reject", leaveHandler.RejectRequest)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/runs", func(r chi.Router) {
					r.With(middleware.RequirePermission(auth.PermissionPayrollView)).Get("/", payrollHandler.ListRuns)
					r.With(middleware.RequirePermission(auth.PermissionPayrollView)).Get("/{id}", payrollHandler.GetRun)
					r.With(middleware.RequirePermission(auth.PermissionPayrollView)).Get("/{id}/payslips", payrollHandler.ListPayslips)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(auth.PermissionPayrollManage))
						r.Post("/", payrollHandler.CreateRun)
						r.Put("/{id}", payrollHandler.UpdateRun)
						r.Delete("/{id}", payrollHandler.DeleteRun)
					})

					r.With(middleware.RequirePermission(auth.PermissionPayrollProcess)).Post("/{id}/process", payrollHandler.ProcessRun)
				})

				r.Route("/payslips", func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionPayrollView))
					r.Get("/", payrollHandler.ListPayslips)
					r.Get("/{id}", payrollHandler.GetPayslip)
					r.With(middleware.RequirePermission(auth.PermissionPayrollManage)).Post("/{id}/document", payrollHandler.GeneratePayslipDocument)
				})

				r.Route("/salary-structures", func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionSalaryManage))
					r.Get("/", payrollHandler.ListStructures)
					r.Post("/", payrollHandler.CreateStructure)
					r.Get("/{id}", payrollHandler.GetStructure)
					r.Put("/{id}", payrollHandler.UpdateStructure)
					r.Delete("/{id}", payrollHandler.DeleteStructure)
					r.Post("/{id}/components", payrollHandler.AddComponent)
					r.Put("/{id}/components/{component_id}", payrollHandler.UpdateComponent)
					r.Delete("/{id}/components/{component_id}", payrollHandler.DeleteComponent)
				})
			})
		})
	})

	if cfg.FilesDir != "" {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequirePermission(auth.PermissionPayrollView))
			r.Handle("/files/*", http.StripPrefix("/files/", companyFiles(cfg.FilesDir)))
		})
	}

	return r
}
