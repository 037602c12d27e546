// Package executor starts external commands and keeps the job table in step
// with what the kernel reports about them.
//
// Three pieces share the table:
//
//   - [Launcher] forks and execs a command, either in the background (own
//     process group, stdin from /dev/null, registered right away) or in the
//     foreground (blocks in [Foreground.Run]).
//   - [Reaper] drains every pending child state change with a non-blocking
//     wait4 and turns each into a table update plus a one-line report.
//   - [Foreground] holds the foreground pid in an atomic so the signal relay
//     can read it from its own goroutine, and performs the blocking wait.
//
// Only the command loop goroutine calls Launch, Drain and Run. The relay
// goroutine only ever reads the foreground pid.
package executor
