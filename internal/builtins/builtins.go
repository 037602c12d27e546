package builtins

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"golang.org/x/sys/unix"

	"jobsh/internal/executor"
	"jobsh/internal/jobs"
	"jobsh/internal/style"
)

// Dispatcher runs builtin commands against the job table and hands anything
// else to the launcher.
type Dispatcher struct {
	table    *jobs.Table
	launcher *executor.Launcher
	out      io.Writer
	styled   bool
	logger   *slog.Logger
}

func NewDispatcher(table *jobs.Table, launcher *executor.Launcher, out io.Writer, styled bool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		table:    table,
		launcher: launcher,
		out:      out,
		styled:   styled,
		logger:   logger,
	}
}

// Handle runs one parsed command and reports whether the shell should exit.
// Builtin names are matched case-sensitively.
func (d *Dispatcher) Handle(tokens []string, background bool) (exit bool) {
	if len(tokens) == 0 {
		return false
	}

	switch tokens[0] {
	case "exit", "quit":
		return true
	case "jobs":
		d.listJobs()
	case "fg":
		d.fg(tokens)
	case "bg":
		d.bg(tokens)
	case "kill":
		d.kill(tokens)
	case "help":
		d.help()
	default:
		if err := d.launcher.Launch(tokens, background); err != nil {
			d.logger.Debug("launch failed", slog.String("cmd", tokens[0]), slog.String("error", err.Error()))
		}
	}
	return false
}

// lookup resolves the job named by tokens[1], printing usage or not-found
// messages itself.
func (d *Dispatcher) lookup(tokens []string) (jobs.Job, bool) {
	if len(tokens) < 2 {
		fmt.Fprintf(d.out, "Usage: %s <job_id>\n", tokens[0])
		return jobs.Job{}, false
	}

	id, err := strconv.Atoi(tokens[1])
	if err != nil {
		fmt.Fprintf(d.out, "Job [%s] not found\n", tokens[1])
		return jobs.Job{}, false
	}
	job, ok := d.table.FindByID(id)
	if !ok {
		fmt.Fprintf(d.out, "Job [%d] not found\n", id)
		return jobs.Job{}, false
	}
	return job, true
}

func (d *Dispatcher) listJobs() {
	list := d.table.List()
	if len(list) == 0 {
		fmt.Fprintln(d.out, "No jobs")
		return
	}

	w := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Job ID\tPID\tState\tCommand")
	fmt.Fprintln(w, "------\t---\t-----\t-------")
	for _, job := range list {
		fmt.Fprintf(w, "[%d]\t%d\t%s\t%s\n", job.ID, job.PID, job.State, job.Cmd)
	}
	_ = w.Flush()
}

// fg resumes a job if it is stopped and waits on it in the foreground. A job
// that stops again stays in the table; one that exits is dropped.
func (d *Dispatcher) fg(tokens []string) {
	job, ok := d.lookup(tokens)
	if !ok {
		return
	}

	if job.State == jobs.Stopped {
		if err := executor.Signal(job.PID, unix.SIGCONT); err != nil {
			fmt.Fprintln(d.out, "fg:", err)
			return
		}
		d.table.SetState(job.PID, jobs.Running)
	}

	fmt.Fprintf(d.out, "Bringing job [%d] to foreground: %s\n", job.ID, job.Cmd)
	_ = d.launcher.WaitForeground(job.PID)
}

func (d *Dispatcher) bg(tokens []string) {
	job, ok := d.lookup(tokens)
	if !ok {
		return
	}

	if job.State != jobs.Stopped {
		fmt.Fprintf(d.out, "Job [%d] is already running\n", job.ID)
		return
	}

	if err := executor.Signal(job.PID, unix.SIGCONT); err != nil {
		fmt.Fprintln(d.out, "bg:", err)
		return
	}
	d.table.SetState(job.PID, jobs.Running)
	fmt.Fprintf(d.out, "Job [%d] continued in background: %s\n", job.ID, job.Cmd)
}

// kill sends SIGKILL and returns at once. The reaper removes the entry when
// it sees the process die.
func (d *Dispatcher) kill(tokens []string) {
	job, ok := d.lookup(tokens)
	if !ok {
		return
	}

	if err := executor.Signal(job.PID, unix.SIGKILL); err != nil {
		fmt.Fprintln(d.out, "kill:", err)
		return
	}
	fmt.Fprintf(d.out, "Job [%d] terminated\n", job.ID)
}

func (d *Dispatcher) help() {
	fmt.Fprintln(d.out, style.Heading("Available commands:", d.styled))
	fmt.Fprint(d.out, helpText)
}

const helpText = `  <command> &     - Run command in background
  jobs            - List all jobs
  fg <job_id>     - Bring job to foreground
  bg <job_id>     - Continue stopped job in background
  kill <job_id>   - Terminate a job
  quit/exit       - Exit shell
  Ctrl+C          - Interrupt foreground job
  Ctrl+Z          - Suspend foreground job
`
