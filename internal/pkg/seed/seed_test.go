package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/auth"
	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/jwt"
	"github.com/bheem-hr/hr-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PopulatesMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := Repositories{
		Employees:   memory.NewEmployeeRepository(store),
		Attendances: memory.NewAttendanceRepository(store),
		Structures:  memory.NewSalaryStructureRepository(store),
	}
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	res, err := Run(ctx, repos, Options{Employees: 3, Days: 14, LateRatio: 0.5, CompanyID: "company-1", Now: now})
	require.NoError(t, err)
	assert.Equal(t, "company-1", res.CompanyID)
	require.Len(t, res.Employees, 3)

	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, emp := range res.Employees {
		got, err := repos.Employees.GetByID(ctx, emp.ID)
		require.NoError(t, err)
		assert.Equal(t, "company-1", got.CompanyID)

		structure, err := repos.Structures.GetActiveByEmployeeID(ctx, emp.ID)
		require.NoError(t, err)
		assert.Len(t, structure.Components, 3)

		records, err := repos.Attendances.ListByEmployeeInRange(ctx, emp.ID, today.AddDate(0, 0, -14), today)
		require.NoError(t, err)
		for _, rec := range records {
			assert.True(t, rec.Date.Before(today))
			assert.NotEqual(t, time.Saturday, rec.Date.Weekday())
			assert.NotEqual(t, time.Sunday, rec.Date.Weekday())
			assert.NotNil(t, rec.CheckOut)
		}
	}

	open, err := repos.Attendances.ListOpenBefore(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestRun_RandomCompanyWhenEmpty(t *testing.T) {
	store := memory.NewStore()
	res, err := Run(context.Background(), Repositories{
		Employees:   memory.NewEmployeeRepository(store),
		Attendances: memory.NewAttendanceRepository(store),
		Structures:  memory.NewSalaryStructureRepository(store),
	}, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.CompanyID)
	assert.Empty(t, res.Employees)
}

func TestIssueTokens(t *testing.T) {
	issuer := jwt.NewJWTService("seed-secret")
	res := Result{CompanyID: "company-1"}

	tokens, err := IssueTokens(issuer, res, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Owner)
	assert.Empty(t, tokens.Employee)

	res.Employees = append(res.Employees, employeeWithCode("emp-1", "EMP-0001"))
	tokens, err = IssueTokens(issuer, res, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "EMP-0001", tokens.EmployeeCode)

	decoded, err := issuer.JWTAuth().Decode(tokens.Employee)
	require.NoError(t, err)
	m, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	claims, err := auth.ClaimsFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims.EmployeeID)
	assert.Equal(t, "company-1", claims.CompanyID)
	assert.Equal(t, auth.RoleEmployee, claims.Role)
}

func employeeWithCode(id, code string) employee.Employee {
	return employee.Employee{ID: id, CompanyID: "company-1", EmployeeCode: code}
}
