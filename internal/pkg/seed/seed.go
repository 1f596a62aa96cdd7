package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
	"github.com/bheem-hr/hr-backend-go/internal/domain/auth"
	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/jwt"
	"github.com/brianvoe/gofakeit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Employees int
	Days      int
	LateRatio float64
	CompanyID string // random when empty
	Now       time.Time
}

// Repositories are the stores demo data is written to. Any driver works.
type Repositories struct {
	Employees   employee.EmployeeRepository
	Attendances attendance.AttendanceRepository
	Structures  payroll.SalaryStructureRepository
}

type Result struct {
	CompanyID string
	Employees []employee.Employee
}

// Run creates fake employees for one company, each with an active monthly
// salary structure and closed weekday attendance for the last opts.Days days.
func Run(ctx context.Context, repos Repositories, opts Options) (Result, error) {
	companyID := opts.CompanyID
	if companyID == "" {
		companyID = uuid.Must(uuid.NewV7()).String()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	gofakeit.Seed(now.UnixNano())

	today := now.UTC().Truncate(24 * time.Hour)
	employees := make([]employee.Employee, 0, opts.Employees)
	for i := 0; i < opts.Employees; i++ {
		phone := gofakeit.Phone()
		emp, err := repos.Employees.Create(ctx, employee.Employee{
			CompanyID:    companyID,
			EmployeeCode: fmt.Sprintf("EMP-%04d", i+1),
			Person: employee.Person{
				FirstName: gofakeit.FirstName(),
				LastName:  gofakeit.LastName(),
				Email:     gofakeit.Email(),
				Phone:     &phone,
			},
			HireDate: gofakeit.DateRange(today.AddDate(-3, 0, 0), today),
		})
		if err != nil {
			return Result{}, fmt.Errorf("failed to create employee %d: %w", i+1, err)
		}
		employees = append(employees, emp)
	}
	slog.Info("Employees seeded", "company_id", companyID, "count", len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, emp := range employees {
		g.Go(func() error {
			if err := seedStructure(gctx, repos.Structures, emp); err != nil {
				return err
			}
			return seedAttendance(gctx, repos.Attendances, emp, today, opts.Days, opts.LateRatio)
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	slog.Info("Salary structures and attendance seeded", "days", opts.Days)

	return Result{CompanyID: companyID, Employees: employees}, nil
}

type Tokens struct {
	Owner        string
	Employee     string // empty when no employees were seeded
	EmployeeCode string
}

// IssueTokens signs an owner token for the seeded company and an employee
// token for its first employee.
func IssueTokens(issuer jwt.Service, res Result, ttl time.Duration) (Tokens, error) {
	var tokens Tokens
	owner, _, err := issuer.IssueAccessToken(auth.Claims{
		UserID:    uuid.Must(uuid.NewV7()).String(),
		CompanyID: res.CompanyID,
		Role:      auth.RoleOwner,
	}, ttl)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to issue owner token: %w", err)
	}
	tokens.Owner = owner

	if len(res.Employees) > 0 {
		first := res.Employees[0]
		tokens.Employee, _, err = issuer.IssueAccessToken(auth.Claims{
			UserID:     uuid.Must(uuid.NewV7()).String(),
			CompanyID:  res.CompanyID,
			EmployeeID: first.ID,
			Role:       auth.RoleEmployee,
		}, ttl)
		if err != nil {
			return Tokens{}, fmt.Errorf("failed to issue employee token: %w", err)
		}
		tokens.EmployeeCode = first.EmployeeCode
	}
	return tokens, nil
}

func seedStructure(ctx context.Context, repo payroll.SalaryStructureRepository, emp employee.Employee) error {
	basic := decimal.NewFromInt(int64(gofakeit.Number(3000, 9000)))
	_, err := repo.Create(ctx, payroll.SalaryStructure{
		EmployeeID:    emp.ID,
		EffectiveDate: emp.HireDate,
		PayType:       payroll.PayTypeMonthly,
		IsActive:      true,
		Components: []payroll.SalaryComponent{
			{Name: "Basic", ComponentType: payroll.ComponentTypeBasic, Amount: basic, Taxable: true},
			{Name: "Housing", ComponentType: payroll.ComponentTypeAllowance, Amount: basic.Div(decimal.NewFromInt(5)).Round(0), Taxable: true},
			{Name: "Provident Fund", ComponentType: payroll.ComponentTypeDeduction, Amount: basic.Div(decimal.NewFromInt(10)).Round(0)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create salary structure for %s: %w", emp.EmployeeCode, err)
	}
	return nil
}

func seedAttendance(ctx context.Context, repo attendance.AttendanceRepository, emp employee.Employee, today time.Time, days int, lateRatio float64) error {
	for d := days; d > 0; d-- {
		date := today.AddDate(0, 0, -d)
		if date.Before(emp.HireDate) || date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}

		minute := gofakeit.Number(0, attendance.LateCutoffMinutes-8*60)
		if gofakeit.Float64Range(0, 1) < lateRatio {
			minute = gofakeit.Number(attendance.LateCutoffMinutes-8*60+1, 180)
		}
		checkIn := date.Add(8*time.Hour + time.Duration(minute)*time.Minute)
		checkOut := checkIn.Add(time.Duration(gofakeit.Number(8*60, 10*60)) * time.Minute)

		_, err := repo.Create(ctx, attendance.Attendance{
			EmployeeID: emp.ID,
			CompanyID:  emp.CompanyID,
			Date:       date,
			CheckIn:    &checkIn,
			CheckOut:   &checkOut,
			Status:     attendance.StatusPresent,
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance for %s on %s: %w", emp.EmployeeCode, date.Format(attendance.DateLayout), err)
		}
	}
	return nil
}
