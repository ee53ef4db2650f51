package task

import "sort"

// Set is the active-task table: every task currently eligible for alert
// evaluation, keyed by Notion page id. It is owned by the scheduler's loop
// goroutine and is never shared, so it needs no locking.
type Set struct {
	tasks map[string]*Task
}

func NewSet() *Set {
	return &Set{tasks: make(map[string]*Task)}
}

// Reconcile merges a freshly fetched batch into the set. Tasks already
// present keep their fired flags but take every other field from the fetched
// copy, so upstream edits to titles, times and offsets are picked up. Tasks
// whose id is missing from the batch are evicted along with their fired
// history. Reconciling the same batch twice is a no-op the second time.
func (s *Set) Reconcile(fetched []*Task) (added, updated, removed int) {
	next := make(map[string]*Task, len(fetched))
	for _, t := range fetched {
		if prev, ok := s.tasks[t.ID]; ok {
			t.CopyFiredFrom(prev)
			updated++
		} else {
			added++
		}
		next[t.ID] = t
	}
	removed = len(s.tasks) - updated
	s.tasks = next
	return added, updated, removed
}

// Get returns the active task with the given id, or nil.
func (s *Set) Get(id string) *Task {
	return s.tasks[id]
}

func (s *Set) Len() int {
	return len(s.tasks)
}

// Tasks returns the active tasks ordered by start time (ties broken by id)
// so evaluation and logging are deterministic.
func (s *Set) Tasks() []*Task {
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StartTime != nil && b.StartTime != nil && !a.StartTime.Equal(*b.StartTime) {
			return a.StartTime.Before(*b.StartTime)
		}
		return a.ID < b.ID
	})
	return out
}
