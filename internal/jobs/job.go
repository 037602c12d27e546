package jobs

// State is the lifecycle state of a tracked job.
type State int

const (
	Running State = iota
	Stopped
	// Done is only observed in transition; finished jobs are removed from the table.
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Job is one tracked process.
type Job struct {
	ID    int
	PID   int
	State State
	Cmd   string
}

// ForegroundPlaceholder labels a foreground job that stopped before it was tracked.
const ForegroundPlaceholder = "(foreground job)"
