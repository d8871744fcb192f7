package session

import "gtodo/internal/service"

// State is a snapshot of the session as seen by front ends.
type State struct {
	// Username is the field value before authentication and the
	// created user afterwards.
	Username    string
	UserCreated bool
	Tasks       []service.Task
	Loading     bool
	Draft       string
	// Notice is a one-line confirmation shown to the operator.
	Notice string
}

// Empty reports whether the known task list is empty.
func (s State) Empty() bool {
	return len(s.Tasks) == 0
}

// CanClear reports whether the bulk-clear control should be offered.
func (s State) CanClear() bool {
	return s.UserCreated && !s.Empty()
}

func (s State) clone() State {
	out := s
	if s.Tasks != nil {
		out.Tasks = make([]service.Task, len(s.Tasks))
		copy(out.Tasks, s.Tasks)
	}
	return out
}
