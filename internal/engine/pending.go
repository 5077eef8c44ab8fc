package engine

import "sync"

// pendingQueue holds profiles that have been launched but whose worker
// process has not been detected yet. Strict FIFO: the next unlabeled worker
// the monitor sees binds to the oldest assignable entry.
type pendingQueue struct {
	mu    sync.Mutex
	queue []Profile
}

// Push appends p unless it is already queued. Reports whether p was added.
func (q *pendingQueue) Push(p Profile) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, queued := range q.queue {
		if queued == p {
			return false
		}
	}
	q.queue = append(q.queue, p)
	return true
}

// Remove drops every occurrence of p, canceling a not-yet-bound launch.
func (q *pendingQueue) Remove(p Profile) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.queue[:0]
	for _, queued := range q.queue {
		if queued != p {
			kept = append(kept, queued)
		}
	}
	q.queue = kept
}

// PopAssignable removes and returns the oldest profile for which skip
// returns false. Skipped entries keep their place at the front of the queue
// so an unrelated stop in flight cannot cost a later launch its turn.
func (q *pendingQueue) PopAssignable(skip func(Profile) bool) (Profile, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, queued := range q.queue {
		if skip(queued) {
			continue
		}
		q.queue = append(q.queue[:i], q.queue[i+1:]...)
		return queued, true
	}
	return 0, false
}

// Snapshot returns the queued profiles in order.
func (q *pendingQueue) Snapshot() []Profile {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Profile{}, q.queue...)
}
