package procdir

import (
	"context"
	"sort"
	"sync"
)

// Fake is an in-memory Directory for tests. Mutate the table between
// reconcile cycles to simulate processes appearing and disappearing.
type Fake struct {
	mu           sync.Mutex
	entries      map[int32]Entry
	enumerateErr error
	terminated   []int32
	onTerminate  func(pid int32)
}

func NewFake() *Fake {
	return &Fake{entries: map[int32]Entry{}}
}

// Add inserts or replaces the entry for its PID.
func (f *Fake) Add(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[e.PID] = e
}

// Remove drops pid from the table, simulating process exit.
func (f *Fake) Remove(pid int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, pid)
}

// SetEnumerateError makes Enumerate fail until called again with nil.
func (f *Fake) SetEnumerateError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enumerateErr = err
}

// OnTerminate overrides the default Terminate behavior of removing the
// entry immediately. Pass a no-op to simulate a process that ignores the
// signal.
func (f *Fake) OnTerminate(fn func(pid int32)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onTerminate = fn
}

// Terminated returns the pids that have been signaled, in order.
func (f *Fake) Terminated() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int32{}, f.terminated...)
}

func (f *Fake) Enumerate(_ context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enumerateErr != nil {
		return nil, f.enumerateErr
	}
	entries := make([]Entry, 0, len(f.entries))
	for _, e := range f.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].PID < entries[j].PID })
	return entries, nil
}

func (f *Fake) Terminate(_ context.Context, pid int32) error {
	f.mu.Lock()
	f.terminated = append(f.terminated, pid)
	fn := f.onTerminate
	f.mu.Unlock()

	if fn != nil {
		fn(pid)
		return nil
	}
	f.Remove(pid)
	return nil
}

func (f *Fake) IsAlive(_ context.Context, pid int32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[pid]
	return ok
}
