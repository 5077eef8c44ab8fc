package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/vrcctl/vrcctl/internal/procdir"
)

// Monitor drives the binder's reconciliation at a fixed interval. It is
// started once and runs until its context is canceled; a failed cycle is
// never fatal, whatever it missed self-heals on the next one.
type Monitor struct {
	binder   *Binder
	interval time.Duration
	logger   *slog.Logger
}

func NewMonitor(binder *Binder, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{binder: binder, interval: interval, logger: logger}
}

// Run reconciles immediately and then once per interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.binder.Reconcile(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// detection is one worker-process observation from a poll cycle.
type detection struct {
	pid     int32
	profile Profile
	labeled bool
}

// Reconcile runs a single poll cycle: enumerate, evict debounced
// disappearances, then bind or rebind detections. Eviction runs before
// assignment so a stale binding cannot mask a same-cycle reassignment.
func (b *Binder) Reconcile(ctx context.Context) {
	entries, err := b.dir.Enumerate(ctx)
	if err != nil {
		// A failed enumeration is not an empty process table; skipping
		// the cycle avoids evicting every binding over a transient
		// directory hiccup.
		b.logger.Debug("enumeration failed, skipping cycle", "error", err)
		return
	}

	detected := b.detectWorkers(entries)
	b.evictMissing(detected)
	b.assignDetections(detected)
}

// detectWorkers filters the snapshot to worker processes and labels each
// with the profile from its command line when present. The launcher shares
// lineage with the workers, so it is excluded explicitly.
func (b *Binder) detectWorkers(entries []procdir.Entry) []detection {
	var detected []detection
	for _, e := range entries {
		if !matchesMarker(e, b.cfg.WorkerMarker) || matchesMarker(e, b.cfg.LauncherMarker) {
			continue
		}
		profile, ok := ExtractProfile(e.Cmdline)
		detected = append(detected, detection{pid: e.PID, profile: profile, labeled: ok})
	}
	return detected
}

// evictMissing advances the miss counters for bound profiles whose pid was
// not observed this cycle and evicts those past the threshold. Profiles
// under a stop lease are left alone entirely.
func (b *Binder) evictMissing(detected []detection) {
	present := make(map[int32]struct{}, len(detected))
	for _, d := range detected {
		present[d.pid] = struct{}{}
	}

	stopping := b.stopping.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	for profile, pid := range b.bound {
		if _, held := stopping[profile]; held {
			continue
		}
		if _, seen := present[pid]; seen {
			b.misses.Reset(profile)
			continue
		}
		if count := b.misses.Miss(profile); count >= b.cfg.MissThreshold {
			delete(b.bound, profile)
			b.misses.Reset(profile)
			b.logger.Info("binding evicted after consecutive misses",
				"profile", profile, "pid", pid, "misses", count)
		}
	}
}

// assignDetections applies this cycle's observations to the table: labeled
// workers bind (or migrate) their own profile; unlabeled workers consume
// the pending queue in FIFO order.
func (b *Binder) assignDetections(detected []detection) {
	stopping := b.stopping.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range detected {
		if d.labeled {
			if _, held := stopping[d.profile]; held {
				b.logger.Debug("ignoring detection for suppressed profile",
					"profile", d.profile, "pid", d.pid)
				continue
			}
			old, ok := b.bound[d.profile]
			switch {
			case ok && old != d.pid:
				// The application replaced its own worker process.
				b.bound[d.profile] = d.pid
				b.logger.Info("worker pid migrated",
					"profile", d.profile, "old_pid", old, "new_pid", d.pid)
			case !ok:
				b.bound[d.profile] = d.pid
				b.logger.Info("bound labeled worker", "profile", d.profile, "pid", d.pid)
			}
			continue
		}

		if b.pidBoundLocked(d.pid) {
			continue
		}

		profile, ok := b.pending.PopAssignable(func(p Profile) bool {
			_, held := stopping[p]
			return held
		})
		if !ok {
			// Nothing usable queued; the pid is reconsidered next cycle.
			continue
		}
		b.bound[profile] = d.pid
		b.logger.Info("bound unlabeled worker from pending queue",
			"profile", profile, "pid", d.pid)
	}
}

func (b *Binder) pidBoundLocked(pid int32) bool {
	for _, bound := range b.bound {
		if bound == pid {
			return true
		}
	}
	return false
}
