// Package jobs holds the job table: the record of background and stopped
// processes the shell knows about.
//
// A job exists in the [Table] only while its process is running or stopped.
// Job IDs start at 1, only ever grow, and are never handed out twice within a
// session, even after the job that held one is removed:
//
//	[1] sleep 100 &     registered, Running
//	[2] sleep 200 &     registered, Running
//	kill 1              removed once the reaper sees it exit
//	[3] sleep 300 &     next ID is 3, not 1
//
// The table is bounded. Register reports [ErrTableFull] when it is at
// capacity; the caller decides what to do with the untracked process.
package jobs
