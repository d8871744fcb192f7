// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"

	"gtodo/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// Call records one invocation of the fake.
type Call struct {
	Method   string
	Username string
	Label    string
	TaskID   int
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	users  map[string]bool
	tasks  map[string][]service.Task // username -> tasks
	owner  map[int]string            // task id -> username
	nextID int
	calls  []Call

	// Error injection for testing
	CreateUserErr error
	ListTasksErr  error
	CreateTaskErr error
	DeleteTaskErr map[int]error // taskID -> error

	// ListHook, if set, runs at the start of ListTasks outside the lock.
	// Tests use it to block or reorder concurrent fetches.
	ListHook func()

	// DeleteHook, if set, runs at the start of DeleteTask outside the lock.
	DeleteHook func(taskID int)
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:         make(map[string]bool),
		tasks:         make(map[string][]service.Task),
		owner:         make(map[int]string),
		nextID:        1,
		DeleteTaskErr: make(map[int]error),
	}
}

// AddUser registers a user directly, bypassing CreateUser.
func (f *FakeService) AddUser(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = true
}

// AddTask seeds a task and returns its ID.
func (f *FakeService) AddTask(username, label string, done bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addTaskLocked(username, label, done)
}

func (f *FakeService) addTaskLocked(username, label string, done bool) int {
	id := f.nextID
	f.nextID++
	f.users[username] = true
	f.tasks[username] = append(f.tasks[username], service.Task{ID: id, Label: label, IsDone: done})
	f.owner[id] = username
	return id
}

// Calls returns a copy of the recorded calls.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many calls were made to method.
func (f *FakeService) CallCount(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Tasks returns the server-side tasks for username.
func (f *FakeService) Tasks(username string) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks[username]))
	copy(out, f.tasks[username])
	return out
}

func (f *FakeService) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

// CreateUser implements service.Service.
func (f *FakeService) CreateUser(ctx context.Context, username string) error {
	f.record(Call{Method: "CreateUser", Username: username})
	if f.CreateUserErr != nil {
		return f.CreateUserErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = true
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, username string) ([]service.Task, error) {
	f.record(Call{Method: "ListTasks", Username: username})
	if f.ListHook != nil {
		f.ListHook()
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.users[username] {
		return nil, ErrNotFound
	}
	out := make([]service.Task, len(f.tasks[username]))
	copy(out, f.tasks[username])
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, username, label string) error {
	f.record(Call{Method: "CreateTask", Username: username, Label: label})
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.users[username] {
		return ErrNotFound
	}
	f.addTaskLocked(username, label, false)
	return nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID int) error {
	f.record(Call{Method: "DeleteTask", TaskID: taskID})
	if f.DeleteHook != nil {
		f.DeleteHook(taskID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DeleteTaskErr[taskID]; err != nil {
		return err
	}

	username, ok := f.owner[taskID]
	if !ok {
		return ErrNotFound
	}
	tasks := f.tasks[username]
	for i, t := range tasks {
		if t.ID == taskID {
			f.tasks[username] = append(tasks[:i:i], tasks[i+1:]...)
			delete(f.owner, taskID)
			return nil
		}
	}
	return ErrNotFound
}
