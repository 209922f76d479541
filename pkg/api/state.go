package api

import "sync"

// State is the single shared mutable key-value bag visible to every
// step in a workflow. The Workflow owns the State; each step invocation
// is lent the handle for the duration of the call and mutates it only
// through Set, which shallow-merges a partial map.
//
// During nested-workflow execution the parent hands the same State
// object to the child, so mutations made inside the child are visible
// to the parent's later steps.
//
// Individual merges are serialized, but two members of the same
// parallel batch calling Set interleave in completion order; concurrent
// writes to the same key are last-merge-wins by design.
type State struct {
	mu     sync.Mutex
	values map[string]any
}

// NewState builds a State pre-populated with a copy of defaults.
func NewState(defaults map[string]any) *State {
	values := make(map[string]any, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}
	return &State{values: values}
}

// Get returns the value stored under key.
func (s *State) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set shallow-merges partial into the bag. Existing keys are
// overwritten; keys absent from partial are untouched.
func (s *State) Set(partial map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range partial {
		s.values[k] = v
	}
}

// Snapshot returns a copy of the bag's current contents.
func (s *State) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Len returns the number of keys currently stored.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
