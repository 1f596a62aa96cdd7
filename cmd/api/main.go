package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/config"
	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/domain/leave"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	appHTTP "github.com/bheem-hr/hr-backend-go/internal/handler/http"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/cron"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/eventbus"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/jwt"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/seed"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/sse"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/storage"
	"github.com/bheem-hr/hr-backend-go/internal/repository/memory"
	"github.com/bheem-hr/hr-backend-go/internal/repository/postgresql"
	attendanceService "github.com/bheem-hr/hr-backend-go/internal/service/attendance"
	leaveService "github.com/bheem-hr/hr-backend-go/internal/service/leave"
	payrollService "github.com/bheem-hr/hr-backend-go/internal/service/payroll"
	"golang.org/x/sync/errgroup"
)

// repositories is the storage backend selected by STORE_DRIVER.
type repositories struct {
	tx          database.Transactor
	employees   employee.EmployeeRepository
	attendances attendance.AttendanceRepository
	leaves      leave.LeaveRequestRepository
	runs        payroll.PayrollRunRepository
	payslips    payroll.PayslipRepository
	structures  payroll.SalaryStructureRepository
	close       func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	g, ctx := errgroup.WithContext(ctx)

	var hub *sse.Hub
	var publisher event.Publisher
	switch cfg.Events.Bus {
	case eventbus.DriverNone:
	case eventbus.DriverLog:
		publisher = eventbus.NewLogPublisher(slog.Default())
	case eventbus.DriverSSE:
		hub = sse.NewHub()
		publisher = eventbus.NewSSEPublisher(hub)
	case eventbus.DriverRedis:
		client, err := eventbus.NewRedisClient(ctx, eventbus.RedisConfig{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
			Channel:  cfg.Events.RedisChannel,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()

		hub = sse.NewHub()
		publisher = eventbus.NewRedisPublisher(client, cfg.Events.RedisChannel)
		g.Go(func() error {
			return eventbus.Relay(ctx, client, cfg.Events.RedisChannel, hub)
		})
	}
	slog.Info("Event bus configured", "driver", cfg.Events.Bus)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}

	payrollSvc := payrollService.NewPayrollService(repos.tx, repos.runs, repos.payslips, repos.structures, repos.employees, fileStorage, publisher)
	salarySvc := payrollService.NewSalaryService(repos.tx, repos.structures, repos.employees, publisher)
	leaveSvc := leaveService.NewLeaveService(repos.tx, repos.leaves, repos.employees, payrollSvc, publisher)
	attendanceSvc := attendanceService.NewAttendanceService(repos.tx, repos.attendances, repos.employees, publisher, cfg.App.Timezone)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			LogLevel:       level,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			FilesDir:       cfg.Storage.BasePath,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewPayrollHandler(payrollSvc, salarySvc),
		appHTTP.NewEventHandler(hub),
	)

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(payrollSvc).RegisterJobs(scheduler, cfg.Payroll.RunJobInterval)
	cron.NewAttendanceJobs(attendanceSvc).RegisterJobs(scheduler, cfg.Attendance.AutoCloseInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down server...")
		if hub != nil {
			slog.Info("Closing event streams", "subscribers", hub.TotalSubscribers(), "dropped_events", hub.Dropped())
			hub.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		slog.Warn("Using in-memory store, data is lost on restart")
		repos := repositories{
			tx:          store,
			employees:   memory.NewEmployeeRepository(store),
			attendances: memory.NewAttendanceRepository(store),
			leaves:      memory.NewLeaveRequestRepository(store),
			runs:        memory.NewPayrollRunRepository(store),
			payslips:    memory.NewPayslipRepository(store),
			structures:  memory.NewSalaryStructureRepository(store),
			close:       func() {},
		}
		if err := seedMemoryStore(ctx, cfg, repos); err != nil {
			return repositories{}, err
		}
		return repos, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return repositories{}, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return repositories{}, fmt.Errorf("error migrating database: %w", err)
	}

	return repositories{
		tx:          postgresql.NewTransactor(db),
		employees:   postgresql.NewEmployeeRepository(db),
		attendances: postgresql.NewAttendanceRepository(db),
		leaves:      postgresql.NewLeaveRequestRepository(db),
		runs:        postgresql.NewPayrollRunRepository(db),
		payslips:    postgresql.NewPayslipRepository(db),
		structures:  postgresql.NewSalaryStructureRepository(db),
		close:       db.Close,
	}, nil
}

// seedMemoryStore fills a fresh memory store with demo data so the API is
// usable without a database, and logs tokens for the seeded company.
func seedMemoryStore(ctx context.Context, cfg *config.Config, repos repositories) error {
	if cfg.Database.SeedEmployees == 0 {
		return nil
	}
	res, err := seed.Run(ctx, seed.Repositories{
		Employees:   repos.employees,
		Attendances: repos.attendances,
		Structures:  repos.structures,
	}, seed.Options{Employees: cfg.Database.SeedEmployees, Days: 30, LateRatio: 0.3})
	if err != nil {
		return fmt.Errorf("error seeding memory store: %w", err)
	}

	tokens, err := seed.IssueTokens(jwt.NewJWTService(cfg.JWT.Secret), res, 24*time.Hour)
	if err != nil {
		return err
	}
	slog.Info("Memory store seeded",
		"company_id", res.CompanyID,
		"employees", len(res.Employees),
		"owner_token", tokens.Owner,
		"employee_code", tokens.EmployeeCode,
		"employee_token", tokens.Employee,
	)
	return nil
}
