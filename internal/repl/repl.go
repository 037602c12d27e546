package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"jobsh/internal/builtins"
	"jobsh/internal/config"
	"jobsh/internal/executor"
	"jobsh/internal/jobs"
	"jobsh/internal/parser"
	"jobsh/internal/style"
)

// Shell is one interactive session: a job table, the components that act on
// it, and the loop that feeds them input lines and child notifications.
type Shell struct {
	prompt string
	banner bool
	styled bool

	in  io.Reader
	out *lockedWriter

	table      *jobs.Table
	fg         *executor.Foreground
	reaper     *executor.Reaper
	dispatcher *builtins.Dispatcher
	logger     *slog.Logger
}

// New builds a shell reading commands from in and writing to out. Children
// inherit stdio.
func New(cfg config.Config, in io.Reader, out io.Writer, stdio executor.Stdio, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &lockedWriter{w: out}
	styled := style.IsTerminal(out)

	table := jobs.NewTable(cfg.Jobs.Capacity, logger.With(slog.String("component", "jobs")))
	fg := executor.NewForeground(stdio.Stdin, logger.With(slog.String("component", "foreground")))
	reaper := executor.NewReaper(table, logger.With(slog.String("component", "reaper")))
	launcher := executor.NewLauncher(table, fg, reaper, stdio, w, logger.With(slog.String("component", "launcher")))

	return &Shell{
		prompt:     cfg.Shell.Prompt,
		banner:     cfg.Shell.Banner,
		styled:     styled,
		in:         in,
		out:        w,
		table:      table,
		fg:         fg,
		reaper:     reaper,
		dispatcher: builtins.NewDispatcher(table, launcher, w, styled, logger),
		logger:     logger,
	}
}

// Jobs exposes the session's job table.
func (s *Shell) Jobs() *jobs.Table {
	return s.table
}

type line struct {
	text string
	err  error
}

// Run executes the command loop until exit, quit, end of input, or ctx is
// cancelled. Terminal interrupt and stop signals are relayed to the
// foreground process and never end the shell.
func (s *Shell) Run(ctx context.Context) error {
	relay := make(chan os.Signal, 4)
	signal.Notify(relay, syscall.SIGINT, syscall.SIGTSTP)
	defer signal.Stop(relay)

	// SIGCHLD notifications coalesce; one pending wake-up is enough because
	// the reaper drains everything each time.
	children := make(chan os.Signal, 1)
	signal.Notify(children, syscall.SIGCHLD)
	defer signal.Stop(children)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	requests := make(chan struct{})
	lines := make(chan line)
	// The reader only reads when asked, so stdin is left alone while a
	// foreground child owns it. It is not part of the group: a read in
	// progress cannot be interrupted.
	go s.read(ctx, requests, lines)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.relay(gctx, relay)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return s.loop(gctx, requests, lines, children)
	})
	return g.Wait()
}

func (s *Shell) loop(ctx context.Context, requests chan<- struct{}, lines <-chan line, children <-chan os.Signal) error {
	if s.banner {
		fmt.Fprintln(s.out, style.Heading("=== Unix Shell Job Scheduler ===", s.styled))
		fmt.Fprint(s.out, "Type 'help' for available commands\n\n")
	}

	for {
		fmt.Fprint(s.out, s.prompt)
		select {
		case requests <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		var next line
	wait:
		for {
			select {
			case <-children:
				if reports := s.reaper.Drain(); len(reports) > 0 {
					fmt.Fprintf(s.out, "\n%s\n%s", strings.Join(reports, "\n"), s.prompt)
				}
			case next = <-lines:
				break wait
			case <-ctx.Done():
				return nil
			}
		}

		if text := strings.TrimSpace(next.text); text != "" {
			// A state change may be pending alongside the line; apply it so
			// fg and bg see what the kernel already reported.
			s.drain()
			tokens, background := parser.Parse(text)
			if s.dispatcher.Handle(tokens, background) {
				s.logger.Debug("exit requested")
				return nil
			}
			// Anything that changed while a foreground command ran is
			// reported before the next prompt.
			s.drain()
		}

		if next.err != nil {
			if !errors.Is(next.err, io.EOF) {
				s.logger.Warn("read failed", slog.String("error", next.err.Error()))
			}
			fmt.Fprintln(s.out)
			return nil
		}
	}
}

func (s *Shell) drain() {
	for _, report := range s.reaper.Drain() {
		fmt.Fprintln(s.out, report)
	}
}

func (s *Shell) read(ctx context.Context, requests <-chan struct{}, lines chan<- line) {
	r := bufio.NewReader(s.in)
	for {
		select {
		case <-requests:
		case <-ctx.Done():
			return
		}

		text, err := r.ReadString('\n')
		select {
		case lines <- line{text: text, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// relay forwards terminal signals to the foreground process. With no
// foreground process the shell absorbs them.
func (s *Shell) relay(ctx context.Context, sigs <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			unixSig, ok := sig.(unix.Signal)
			if !ok {
				continue
			}
			if pid, ok := s.fg.Relay(unixSig); ok {
				s.logger.Debug("signal relayed",
					slog.String("signal", unixSig.String()),
					slog.Int("pid", pid),
				)
				continue
			}
			if unixSig == unix.SIGINT {
				fmt.Fprintln(s.out)
			}
		}
	}
}

// lockedWriter serialises writes from the command loop and the signal relay.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
