package executor

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"jobsh/internal/jobs"
)

// Reaper collects child state changes and applies them to the job table.
//
// Drain must only run on the goroutine that owns the command loop. The signal
// side only queues a notification; it never touches the table.
type Reaper struct {
	table  *jobs.Table
	logger *slog.Logger
}

func NewReaper(table *jobs.Table, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reaper{table: table, logger: logger}
}

// Drain polls for any child that exited, was killed, or stopped, until none
// are pending, and returns the reports produced along the way. Notifications
// coalesce, so one call may account for several children.
func (r *Reaper) Drain() []string {
	var reports []string
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			if !errors.Is(err, unix.ECHILD) {
				r.logger.Error("wait4 failed", slog.String("error", err.Error()))
			}
			return reports
		}
		if pid <= 0 {
			return reports
		}
		if report := r.Observe(pid, status); report != "" {
			reports = append(reports, report)
		}
	}
}

// Observe applies one state change for pid and returns the line to show the
// user, or "" when there is nothing to report.
func (r *Reaper) Observe(pid int, status unix.WaitStatus) string {
	job, tracked := r.table.FindByPID(pid)

	switch {
	case status.Exited() || status.Signaled():
		r.logger.Debug("child finished",
			slog.Int("pid", pid),
			slog.Bool("tracked", tracked),
			slog.Int("exit_status", status.ExitStatus()),
		)
		if !tracked {
			// A foreground wait owns this process.
			return ""
		}
		r.table.Remove(pid)
		return fmt.Sprintf("[%d] Done: %s", job.ID, job.Cmd)

	case status.Stopped():
		r.logger.Debug("child stopped",
			slog.Int("pid", pid),
			slog.Bool("tracked", tracked),
			slog.String("signal", status.StopSignal().String()),
		)
		if tracked {
			r.table.SetState(pid, jobs.Stopped)
			return fmt.Sprintf("[%d] Stopped: %s", job.ID, job.Cmd)
		}
		job, err := r.table.Register(pid, jobs.ForegroundPlaceholder, jobs.Stopped)
		if err != nil {
			return fmt.Sprintf("Job table full: stopped process %d is untracked", pid)
		}
		return fmt.Sprintf("[%d] Stopped (use 'fg %d' to resume)", job.ID, job.ID)
	}

	return ""
}
