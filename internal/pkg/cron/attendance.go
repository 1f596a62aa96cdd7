package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StaleSessionCloser checks out attendance records left open past their day.
type StaleSessionCloser interface {
	CloseStaleSessions(ctx context.Context, now time.Time) (int, error)
}

type AttendanceJobs struct {
	attendance StaleSessionCloser
	now        func() time.Time
}

func NewAttendanceJobs(attendance StaleSessionCloser) *AttendanceJobs {
	return &AttendanceJobs{attendance: attendance, now: time.Now}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("auto_close_stale_attendances", interval, j.AutoCloseStaleAttendances)
}

func (j *AttendanceJobs) AutoCloseStaleAttendances(ctx context.Context) error {
	count, err := j.attendance.CloseStaleSessions(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to auto-close stale attendances: %w", err)
	}
	if count > 0 {
		slog.Info("Cron: Auto-closed stale attendances", "count", count)
	}
	return nil
}
