package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StalePunchCloser is the part of the attendance service the sweep needs.
type StalePunchCloser interface {
	CloseStalePunches(ctx context.Context, now time.Time) (int, error)
}

type AttendanceJobs struct {
	closer   StalePunchCloser
	interval time.Duration
	now      func() time.Time
}

func NewAttendanceJobs(closer StalePunchCloser, interval time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AttendanceJobs{
		closer:   closer,
		interval: interval,
		now:      time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_punches", j.interval, j.AutoCloseStalePunches)
}

// AutoCloseStalePunches closes punch-ins whose shift ended long enough ago.
func (j *AttendanceJobs) AutoCloseStalePunches(ctx context.Context) error {
	closed, err := j.closer.CloseStalePunches(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to close stale punches: %w", err)
	}
	if closed > 0 {
		slog.Info("Cron: Auto-closed stale punches", "count", closed)
	}
	return nil
}
