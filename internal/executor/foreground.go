package executor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Foreground tracks the one process entitled to terminal-generated signals
// and blocks the command loop while it runs.
type Foreground struct {
	pid    atomic.Int64
	tty    int
	isTTY  bool
	logger *slog.Logger
}

// NewForeground returns a controller for the terminal on tty. tty may be nil
// when the shell is not attached to a terminal.
func NewForeground(tty *os.File, logger *slog.Logger) *Foreground {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f := &Foreground{tty: -1, logger: logger}
	if tty != nil && term.IsTerminal(int(tty.Fd())) {
		f.tty = int(tty.Fd())
		f.isTTY = true
	}
	return f
}

// Current returns the foreground pid, or 0 when unset.
func (f *Foreground) Current() int {
	return int(f.pid.Load())
}

// Relay forwards sig to the foreground process and returns its pid. It
// reports false when there is none, in which case the shell absorbs the signal.
func (f *Foreground) Relay(sig unix.Signal) (int, bool) {
	pid := f.pid.Load()
	if pid <= 0 {
		return 0, false
	}
	if err := unix.Kill(int(pid), sig); err != nil && !errors.Is(err, unix.ESRCH) {
		f.logger.Warn("relay failed",
			slog.Int64("pid", pid),
			slog.String("signal", sig.String()),
			slog.String("error", err.Error()),
		)
	}
	return int(pid), true
}

// Run makes pid the foreground process and waits until it exits or stops.
// The foreground pointer is cleared on return however the wait ended. A pid
// that no longer exists was reaped elsewhere; that is not an error.
func (f *Foreground) Run(pid int) (unix.WaitStatus, error) {
	f.pid.Store(int64(pid))
	defer f.pid.Store(0)

	restore := f.giveTerminal(pid)
	defer restore()

	for {
		var status unix.WaitStatus
		_, err := unix.Wait4(pid, &status, unix.WUNTRACED, nil)
		switch {
		case err == nil:
			return status, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			f.logger.Debug("foreground process already reaped", slog.Int("pid", pid))
			return 0, nil
		default:
			f.logger.Error("wait4 failed", slog.Int("pid", pid), slog.String("error", err.Error()))
			return 0, fmt.Errorf("wait %d: %w", pid, err)
		}
	}
}

// giveTerminal makes pid's process group the terminal's foreground group when
// it differs from the shell's, which is the case for resumed background jobs.
// Freshly launched foreground commands share the shell's group already.
func (f *Foreground) giveTerminal(pid int) func() {
	noop := func() {}
	if !f.isTTY {
		return noop
	}

	shell := unix.Getpgrp()
	owner, err := unix.IoctlGetInt(f.tty, unix.TIOCGPGRP)
	if err != nil || owner != shell {
		return noop
	}
	pgid, err := unix.Getpgid(pid)
	if err != nil || pgid == shell {
		return noop
	}

	if err := unix.IoctlSetPointerInt(f.tty, unix.TIOCSPGRP, pgid); err != nil {
		f.logger.Warn("tcsetpgrp failed", slog.Int("pgid", pgid), slog.String("error", err.Error()))
		return noop
	}

	return func() {
		// Taking the terminal back from a background group raises SIGTTOU.
		// No child is forked while this runs, so none inherits the ignore.
		signal.Ignore(unix.SIGTTOU)
		defer signal.Reset(unix.SIGTTOU)
		if err := unix.IoctlSetPointerInt(f.tty, unix.TIOCSPGRP, shell); err != nil {
			f.logger.Error("reclaim terminal failed", slog.String("error", err.Error()))
		}
	}
}
