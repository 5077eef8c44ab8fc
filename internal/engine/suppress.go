package engine

import "sync"

// suppressionSet marks profiles that are inside an explicit stop. The
// monitor must not evict, bind, or reassign a suppressed profile; the stop
// operation owns it until the lease is released.
type suppressionSet struct {
	mu      sync.Mutex
	members map[Profile]struct{}
}

// Acquire adds p to the set and returns the release function for the lease.
// Callers defer the release so it runs on every exit path; releasing more
// than once is safe.
func (s *suppressionSet) Acquire(p Profile) func() {
	s.mu.Lock()
	if s.members == nil {
		s.members = map[Profile]struct{}{}
	}
	s.members[p] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.members, p)
			s.mu.Unlock()
		})
	}
}

// Snapshot returns a point-in-time copy of the set. The monitor iterates
// the copy rather than holding this lock alongside the table lock.
func (s *suppressionSet) Snapshot() map[Profile]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[Profile]struct{}, len(s.members))
	for p := range s.members {
		copied[p] = struct{}{}
	}
	return copied
}
