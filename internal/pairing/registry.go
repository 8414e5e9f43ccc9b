package pairing

import "slices"

// Registry holds per-problem pairing state: the ordered sequence of connected sessions
// (waiting and paired alike) and the active-session count.
//
// Entries are created lazily and deleted as soon as they become empty; the sequence
// and the count are cleaned up independently. Registry does no locking of its own.
// The Engine calls it only from inside its critical section.
type Registry struct {
	queues map[string][]*Session
	active map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		queues: make(map[string][]*Session),
		active: make(map[string]int),
	}
}

// EnsureTopic creates an empty sequence for problemID if none exists.
func (r *Registry) EnsureTopic(problemID string) {
	if _, ok := r.queues[problemID]; !ok {
		r.queues[problemID] = []*Session{}
	}
}

// IncrementActive bumps the active count and returns the new value.
func (r *Registry) IncrementActive(problemID string) int {
	r.active[problemID]++
	return r.active[problemID]
}

// DecrementActive lowers the active count and returns the new value. The entry is
// deleted once it reaches zero, so the count is never observed below zero.
func (r *Registry) DecrementActive(problemID string) int {
	n, ok := r.active[problemID]
	if !ok {
		return 0
	}
	n--
	if n <= 0 {
		delete(r.active, problemID)
		return 0
	}
	r.active[problemID] = n
	return n
}

// AppendSession adds s to the end of the problem's sequence.
func (r *Registry) AppendSession(problemID string, s *Session) {
	r.queues[problemID] = append(r.queues[problemID], s)
}

// RemoveSession removes s from the problem's sequence, keeping the order of the
// remaining entries. The sequence is deleted when it becomes empty. It reports whether
// s was present.
func (r *Registry) RemoveSession(problemID string, s *Session) bool {
	queue, ok := r.queues[problemID]
	if !ok {
		return false
	}
	i := slices.Index(queue, s)
	if i < 0 {
		return false
	}
	queue = slices.Delete(queue, i, i+1)
	if len(queue) == 0 {
		delete(r.queues, problemID)
		return true
	}
	r.queues[problemID] = queue
	return true
}

// Sessions returns a copy of the problem's sequence.
func (r *Registry) Sessions(problemID string) []*Session {
	return slices.Clone(r.queues[problemID])
}

// queue returns the live sequence without copying.
func (r *Registry) queue(problemID string) []*Session {
	return r.queues[problemID]
}

// ActiveCount returns the problem's active count, 0 when absent.
func (r *Registry) ActiveCount(problemID string) int {
	return r.active[problemID]
}

// HasQueue reports whether a sequence entry exists for problemID.
func (r *Registry) HasQueue(problemID string) bool {
	_, ok := r.queues[problemID]
	return ok
}

// HasCount reports whether a count entry exists for problemID.
func (r *Registry) HasCount(problemID string) bool {
	_, ok := r.active[problemID]
	return ok
}

// ActiveCounts returns a snapshot of every non-zero count.
func (r *Registry) ActiveCounts() map[string]int {
	counts := make(map[string]int, len(r.active))
	for id, n := range r.active {
		counts[id] = n
	}
	return counts
}

// Reset drops all state.
func (r *Registry) Reset() {
	r.queues = make(map[string][]*Session)
	r.active = make(map[string]int)
}
