package procdir

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v4/process"
)

// NewOSDirectory returns a Directory backed by the live OS process table.
func NewOSDirectory() Directory {
	return &osDirectory{}
}

type osDirectory struct{}

func (d *osDirectory) Enumerate(ctx context.Context) ([]Entry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(procs))
	for _, p := range procs {
		// Only read the few fields the engine needs; every extra
		// getter is another syscall per process per cycle. Individual
		// field errors are expected for short-lived or privileged
		// processes and leave the field zero.
		entry := Entry{PID: p.Pid}
		entry.Name, _ = p.NameWithContext(ctx)
		entry.Exe, _ = p.ExeWithContext(ctx)
		entry.Cmdline, _ = p.CmdlineWithContext(ctx)
		entry.ParentPID, _ = p.PpidWithContext(ctx)
		entry.StartTime, _ = p.CreateTimeWithContext(ctx)
		entries = append(entries, entry)
	}
	return entries, nil
}

func (d *osDirectory) Terminate(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return err
	}
	return p.TerminateWithContext(ctx)
}

func (d *osDirectory) IsAlive(ctx context.Context, pid int32) bool {
	alive, err := process.PidExistsWithContext(ctx, pid)
	return err == nil && alive
}
