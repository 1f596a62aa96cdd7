package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MonthlyRunEnsurer creates the current month's Draft payroll run for every company.
type MonthlyRunEnsurer interface {
	EnsureMonthlyRuns(ctx context.Context, now time.Time) (int, error)
}

type PayrollJobs struct {
	payroll MonthlyRunEnsurer
	now     func() time.Time
}

func NewPayrollJobs(payroll MonthlyRunEnsurer) *PayrollJobs {
	return &PayrollJobs{payroll: payroll, now: time.Now}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("ensure_monthly_payroll_runs", interval, j.EnsureMonthlyRuns)
}

func (j *PayrollJobs) EnsureMonthlyRuns(ctx context.Context) error {
	now := j.now().UTC()
	count, err := j.payroll.EnsureMonthlyRuns(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to ensure payroll runs for %s: %w", now.Format("2006-01"), err)
	}
	slog.Info("Cron: Payroll runs ensured", "month", now.Format("2006-01"), "companies", count)
	return nil
}
