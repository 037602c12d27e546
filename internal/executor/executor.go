package executor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"jobsh/internal/jobs"
)

// Stdio is the set of files handed to launched children.
type Stdio struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// DefaultStdio wires children to the shell's own terminal.
func DefaultStdio() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Launcher starts external commands and records background ones in the job table.
type Launcher struct {
	table  *jobs.Table
	fg     *Foreground
	reaper *Reaper
	stdio  Stdio
	out    io.Writer
	logger *slog.Logger
}

func NewLauncher(table *jobs.Table, fg *Foreground, reaper *Reaper, stdio Stdio, out io.Writer, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Launcher{
		table:  table,
		fg:     fg,
		reaper: reaper,
		stdio:  stdio,
		out:    out,
		logger: logger,
	}
}

// Launch runs args as an external command. Background commands are placed in
// their own process group, registered, and reported as "[id] pid cmd".
// Foreground commands block until the child exits or stops.
//
// Failures are reported to the output writer and returned; nothing is retried.
func (l *Launcher) Launch(args []string, background bool) error {
	if len(args) == 0 {
		return ErrEmptyCommand
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		fmt.Fprintf(l.out, "Command not found: %s\n", args[0])
		l.logger.Debug("lookup failed", slog.String("cmd", args[0]), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s", ErrCommandNotFound, args[0])
	}

	stdin := l.stdio.Stdin
	if background {
		// Background jobs should not read from the terminal.
		devNull, err := os.Open(os.DevNull)
		if err != nil {
			fmt.Fprintln(l.out, "error opening /dev/null:", err)
			return fmt.Errorf("open %s: %w", os.DevNull, err)
		}
		defer devNull.Close()
		stdin = devNull
	}

	// Signals the shell watches are caught rather than ignored, so exec resets
	// them to their defaults in the child.
	proc, err := os.StartProcess(path, args, &os.ProcAttr{
		Files: []*os.File{stdin, l.stdio.Stdout, l.stdio.Stderr},
		Sys: &syscall.SysProcAttr{
			Setpgid: background,
		},
	})
	if err != nil {
		fmt.Fprintf(l.out, "%s: %v\n", args[0], err)
		l.logger.Error("start failed", slog.String("cmd", args[0]), slog.String("error", err.Error()))
		return fmt.Errorf("start %s: %w", args[0], err)
	}
	pid := proc.Pid
	// The reaper collects the child with wait4; the handle is not needed.
	_ = proc.Release()

	cmd := strings.Join(args, " ")
	l.logger.Debug("process started",
		slog.Int("pid", pid),
		slog.String("cmd", cmd),
		slog.Bool("background", background),
	)

	if background {
		job, err := l.table.Register(pid, cmd, jobs.Running)
		if err != nil {
			fmt.Fprintf(l.out, "Job table full: %d %s running untracked\n", pid, cmd)
			return err
		}
		fmt.Fprintf(l.out, "[%d] %d %s\n", job.ID, pid, cmd)
		return nil
	}

	return l.WaitForeground(pid)
}

// WaitForeground hands pid to the foreground controller and blocks until it
// exits or stops. A stopped process stays in (or joins) the job table; an
// exited one is dropped from it.
func (l *Launcher) WaitForeground(pid int) error {
	status, err := l.fg.Run(pid)
	if err != nil {
		fmt.Fprintln(l.out, "waitpid error:", err)
		return err
	}

	if status.Stopped() {
		if report := l.reaper.Observe(pid, status); report != "" {
			fmt.Fprintf(l.out, "\n%s\n", report)
		}
		return nil
	}

	l.table.Remove(pid)
	return nil
}

// Signal sends sig to a tracked process. A process that is already gone is not
// an error; the reaper will account for it.
func Signal(pid int, sig unix.Signal) error {
	if err := unix.Kill(pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("signal %d: %w", pid, err)
	}
	return nil
}
