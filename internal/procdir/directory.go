// Package procdir provides the OS process-table capabilities the binding
// engine consumes: enumerating live processes, signaling termination, and
// liveness checks. The engine only ever sees the Directory interface so
// tests can run against the in-memory Fake.
package procdir

import "context"

// Entry is one row of the process table, read once at enumeration time.
// Fields other than PID may be empty when the process exited mid-scan or
// denied access.
type Entry struct {
	PID       int32
	Name      string
	Exe       string
	Cmdline   string
	ParentPID int32
	// StartTime is milliseconds since the epoch, 0 when unreadable.
	StartTime int64
}

// Directory enumerates and signals OS processes.
type Directory interface {
	// Enumerate returns a snapshot of the live process table. A partial
	// snapshot is not an error; callers treat missing fields as unknown.
	Enumerate(ctx context.Context) ([]Entry, error)

	// Terminate sends a termination signal to pid. Signaling a process
	// that is already gone is not an error.
	Terminate(ctx context.Context, pid int32) error

	// IsAlive reports whether pid currently refers to a live process.
	IsAlive(ctx context.Context, pid int32) bool
}
