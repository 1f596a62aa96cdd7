package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/config"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/jwt"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/seed"
	"github.com/bheem-hr/hr-backend-go/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

type SeedOptions struct {
	Employees int
	Days      int
	LateRatio float64
	TokenTTL  time.Duration
	CompanyID string
}

var sopts SeedOptions

var rootCmd = &cobra.Command{
	Use:   "seed [flags]",
	Short: "Populate the database with fake employees, salary structures and attendance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), sopts)
	},
}

func init() {
	rootCmd.Flags().IntVarP(&sopts.Employees, "employees", "e", 10, "Number of employees to create")
	rootCmd.Flags().IntVarP(&sopts.Days, "days", "d", 30, "Days of attendance history per employee")
	rootCmd.Flags().Float64VarP(&sopts.LateRatio, "late", "l", 0.3, "Share of check-ins after the late cutoff")
	rootCmd.Flags().DurationVarP(&sopts.TokenTTL, "token-ttl", "t", 24*time.Hour, "Lifetime of the printed access tokens")
	rootCmd.Flags().StringVarP(&sopts.CompanyID, "company", "c", "", "Company ID to seed into (random when empty)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error executing command: %s", err)
	}
}

func Run(ctx context.Context, opts SeedOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err := postgresql.Migrate(ctx, db); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	res, err := seed.Run(ctx, seed.Repositories{
		Employees:   postgresql.NewEmployeeRepository(db),
		Attendances: postgresql.NewAttendanceRepository(db),
		Structures:  postgresql.NewSalaryStructureRepository(db),
	}, seed.Options{
		Employees: opts.Employees,
		Days:      opts.Days,
		LateRatio: opts.LateRatio,
		CompanyID: opts.CompanyID,
	})
	if err != nil {
		return err
	}

	tokens, err := seed.IssueTokens(jwt.NewJWTService(cfg.JWT.Secret), res, opts.TokenTTL)
	if err != nil {
		return err
	}
	fmt.Printf("company_id: %s\nowner token: %s\n", res.CompanyID, tokens.Owner)
	if tokens.Employee != "" {
		fmt.Printf("employee %s token: %s\n", tokens.EmployeeCode, tokens.Employee)
	}
	return nil
}
