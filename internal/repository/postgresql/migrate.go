package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
)

//go:embed schema.sql
var schema string

// Tables lists every table in schema.sql, children first.
var Tables = []string{
	"salary_components",
	"salary_structures",
	"payslips",
	"payroll_runs",
	"leave_requests",
	"attendances",
	"employees",
}

// Migrate creates any missing table. It is safe to run on every start.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
