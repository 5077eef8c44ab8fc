package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vrcctl/vrcctl/internal/procdir"
)

// Config tunes the binder. Markers are matched case-insensitively as
// substrings of a process name or executable path.
type Config struct {
	// WorkerMarker identifies the real worker process.
	WorkerMarker string
	// LauncherMarker identifies the intermediary launcher, which is
	// excluded from worker detection even when the markers overlap.
	LauncherMarker string
	// ExtraMarkers are additional names included in the diagnostic dump.
	ExtraMarkers []string

	// MissThreshold is the number of consecutive poll cycles a bound pid
	// may go unobserved before its binding is evicted.
	MissThreshold int

	// StopConfirmAttempts and StopConfirmInterval bound the wait for a
	// signaled process to disappear.
	StopConfirmAttempts int
	StopConfirmInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MissThreshold <= 0 {
		c.MissThreshold = 2
	}
	if c.StopConfirmAttempts <= 0 {
		c.StopConfirmAttempts = 5
	}
	if c.StopConfirmInterval <= 0 {
		c.StopConfirmInterval = 200 * time.Millisecond
	}
	return c
}

// Binder owns the profile-to-pid binding table and its satellite state. One
// Binder is constructed at startup and shared by the monitor loop and the
// foreground operations; every structure carries its own lock, and joint
// reads go through point-in-time snapshots instead of nested locking.
type Binder struct {
	dir     procdir.Directory
	spawner procdir.Spawner
	logger  *slog.Logger
	cfg     Config

	mu    sync.Mutex
	bound map[Profile]int32

	pending  pendingQueue
	misses   missCounter
	stopping suppressionSet
}

// New builds a Binder over the given process directory and spawner.
func New(dir procdir.Directory, spawner procdir.Spawner, logger *slog.Logger, cfg Config) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binder{
		dir:     dir,
		spawner: spawner,
		logger:  logger,
		cfg:     cfg.withDefaults(),
		bound:   map[Profile]int32{},
	}
}

// Launch starts a new instance for profile. The spawned process is the
// short-lived launcher, not the worker; the profile is queued and the
// monitor binds it to the next unlabeled worker it detects.
func (b *Binder) Launch(ctx context.Context, profile Profile) LaunchResult {
	if pid, ok := b.boundPID(profile); ok && b.dir.IsAlive(ctx, pid) {
		return LaunchResult{
			Success:   false,
			Reason:    ReasonAlreadyRunning,
			Message:   fmt.Sprintf("profile %d is already running (pid %d)", profile, pid),
			ProcessID: pid,
		}
	}

	launcherPID, err := b.spawner.Spawn(ctx, uint32(profile))
	if err != nil {
		return LaunchResult{
			Success: false,
			Reason:  ReasonLaunchFailed,
			Message: fmt.Sprintf("failed to start launcher for profile %d: %v", profile, err),
		}
	}

	b.pending.Push(profile)
	b.logger.Info("launcher started, waiting for worker",
		"profile", profile, "launcher_pid", launcherPID)

	return LaunchResult{
		Success:       true,
		Message:       fmt.Sprintf("launched profile %d; monitoring for its worker process", profile),
		ProcessID:     launcherPID,
		WorkerPending: true,
	}
}

// Stop terminates the instance bound to profile. While the stop is in
// flight the profile is suppressed so a concurrent monitor cycle cannot
// reinstate the binding being torn down.
func (b *Binder) Stop(ctx context.Context, profile Profile) StopResult {
	// A launch that has not bound yet is simply canceled.
	b.pending.Remove(profile)

	release := b.stopping.Acquire(profile)
	defer release()

	pid, ok := b.resolveStopTarget(ctx, profile)
	if !ok {
		return StopResult{
			Success: false,
			Reason:  ReasonNotFound,
			Message: fmt.Sprintf("no process found for profile %d", profile),
		}
	}

	if !b.terminateAndConfirm(ctx, pid) {
		// Binding intentionally kept; a retry targets the same pid.
		return StopResult{
			Success: false,
			Reason:  ReasonKillTimedOut,
			Message: fmt.Sprintf("process %d for profile %d did not exit within the confirmation window", pid, profile),
			PID:     pid,
		}
	}

	b.unbind(profile)
	b.logger.Info("stopped profile", "profile", profile, "pid", pid)
	return StopResult{
		Success: true,
		Message: fmt.Sprintf("stopped profile %d (pid %d)", profile, pid),
		PID:     pid,
	}
}

// resolveStopTarget picks the pid to terminate: the stored binding when it
// still looks like a worker process, otherwise a directory scan for a
// command line labeled with exactly this profile. The scan covers workers
// whose binding went stale or was never recorded (pid reuse, restarts).
func (b *Binder) resolveStopTarget(ctx context.Context, profile Profile) (int32, bool) {
	entries, err := b.dir.Enumerate(ctx)
	if err != nil {
		b.logger.Debug("enumeration failed during stop", "profile", profile, "error", err)
		entries = nil
	}

	if stored, ok := b.boundPID(profile); ok {
		for _, e := range entries {
			if e.PID == stored && matchesMarker(e, b.cfg.WorkerMarker) {
				return stored, true
			}
		}
	}

	for _, e := range entries {
		if labeled, ok := ExtractProfile(e.Cmdline); ok && labeled == profile {
			return e.PID, true
		}
	}
	return 0, false
}

// terminateAndConfirm signals pid and waits for it to disappear. The signal
// itself is fire-and-forget; the bounded wait only governs how long the
// caller blocks for confirmation. Each retry consults the directory fresh
// rather than holding any lock.
func (b *Binder) terminateAndConfirm(ctx context.Context, pid int32) bool {
	if err := b.dir.Terminate(ctx, pid); err != nil {
		b.logger.Debug("terminate signal failed", "pid", pid, "error", err)
	}

	for attempt := 0; attempt < b.cfg.StopConfirmAttempts; attempt++ {
		time.Sleep(b.cfg.StopConfirmInterval)
		if !b.dir.IsAlive(ctx, pid) {
			return true
		}
	}
	return false
}

// ListBound returns the bindings whose pids are currently alive. Stale
// entries are filtered from the result, not removed; eviction belongs to
// the monitor's debounced pass.
func (b *Binder) ListBound(ctx context.Context) map[Profile]int32 {
	b.mu.Lock()
	snapshot := make(map[Profile]int32, len(b.bound))
	for profile, pid := range b.bound {
		snapshot[profile] = pid
	}
	b.mu.Unlock()

	result := make(map[Profile]int32, len(snapshot))
	for profile, pid := range snapshot {
		if b.dir.IsAlive(ctx, pid) {
			result[profile] = pid
		}
	}
	return result
}

// DiagnosticDump returns one line per directory entry matching any known
// marker (worker, launcher, extras), sorted for determinism.
func (b *Binder) DiagnosticDump(ctx context.Context) []string {
	entries, err := b.dir.Enumerate(ctx)
	if err != nil {
		b.logger.Debug("enumeration failed during dump", "error", err)
		return nil
	}

	markers := append([]string{b.cfg.WorkerMarker, b.cfg.LauncherMarker}, b.cfg.ExtraMarkers...)

	var lines []string
	for _, e := range entries {
		if !matchesAnyMarker(e, markers) {
			continue
		}
		label := "Profile=none"
		if profile, ok := ExtractProfile(e.Cmdline); ok {
			label = fmt.Sprintf("Profile=%d", profile)
		}
		lines = append(lines, fmt.Sprintf(
			"PID: %d, Name: %s, %s, Parent: %d, StartTime: %d, Exe: %s, Args: %s",
			e.PID, e.Name, label, e.ParentPID, e.StartTime, e.Exe, e.Cmdline))
	}
	sort.Strings(lines)
	return lines
}

// IsLauncherRunning reports whether any process matches the launcher marker.
func (b *Binder) IsLauncherRunning(ctx context.Context) bool {
	entries, err := b.dir.Enumerate(ctx)
	if err != nil {
		b.logger.Debug("enumeration failed during launcher check", "error", err)
		return false
	}
	for _, e := range entries {
		if matchesMarker(e, b.cfg.LauncherMarker) {
			return true
		}
	}
	return false
}

func (b *Binder) boundPID(profile Profile) (int32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pid, ok := b.bound[profile]
	return pid, ok
}

func (b *Binder) unbind(profile Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bound, profile)
}

func matchesMarker(e procdir.Entry, marker string) bool {
	if marker == "" {
		return false
	}
	marker = strings.ToLower(marker)
	return strings.Contains(strings.ToLower(e.Name), marker) ||
		strings.Contains(strings.ToLower(e.Exe), marker)
}

func matchesAnyMarker(e procdir.Entry, markers []string) bool {
	for _, marker := range markers {
		if matchesMarker(e, marker) {
			return true
		}
	}
	return false
}
