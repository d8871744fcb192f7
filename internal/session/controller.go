// Package session implements the task client controller: it owns the
// in-memory session state, drives the remote service and reconciles the
// local task list with the server after every mutation.
//
// Operations block until the remote call (and any follow-up fetch) has
// finished, so front ends run them off their event loop. Overlapping
// operations are not serialized; when two fetches overlap, whichever
// completes last determines the displayed list.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"gtodo/internal/logging"
	"gtodo/internal/service"
)

// Controller coordinates the session state machine and remote calls.
// It is safe for concurrent use.
type Controller struct {
	svc service.Service
	log *logging.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// New creates a Controller in the unauthenticated state.
func New(svc service.Service, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Controller{
		svc:  svc,
		log:  logger,
		subs: make(map[int]func(State)),
	}
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Authenticated reports whether a user has been created in this session.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.UserCreated
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn is called from the goroutine that performed the change and must not
// call back into operations that would block on it.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// SetUsername records the create-user field. Ignored once authenticated.
func (c *Controller) SetUsername(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.UserCreated {
		c.state.Username = name
	}
}

// SetDraft records the new-task field.
func (c *Controller) SetDraft(draft string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Draft = draft
}

// update applies fn to the state under the lock, then notifies subscribers
// outside of it.
func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.state.clone()
	subs := make([]func(State), 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

// session returns the username if authenticated.
func (c *Controller) session() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Username, c.state.UserCreated
}

// CreateUser creates username on the remote service and, on success, moves
// the session to the authenticated state and loads the task list.
func (c *Controller) CreateUser(ctx context.Context, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	if _, ok := c.session(); ok {
		return
	}

	if err := c.svc.CreateUser(ctx, username); err != nil {
		c.logFailure("create user", username, err)
		return
	}

	c.log.Info("user created", "username", username)
	c.update(func(s *State) {
		s.Username = username
		s.UserCreated = true
		s.Notice = fmt.Sprintf("User %s created", username)
	})
	c.FetchTasks(ctx)
}

// FetchTasks replaces the task list with the server's current list. On
// failure the previous list is kept. Loading is cleared on every path.
func (c *Controller) FetchTasks(ctx context.Context) {
	username, ok := c.session()
	if !ok {
		return
	}

	c.update(func(s *State) { s.Loading = true })
	defer c.update(func(s *State) { s.Loading = false })

	tasks, err := c.svc.ListTasks(ctx, username)
	if err != nil {
		c.logFailure("list tasks", username, err)
		return
	}
	if tasks == nil {
		tasks = []service.Task{}
	}

	c.update(func(s *State) { s.Tasks = tasks })
}

// AddTask creates a task labelled label and reconciles. The draft is
// cleared only when the remote create succeeds.
func (c *Controller) AddTask(ctx context.Context, label string) {
	username, ok := c.session()
	if !ok || strings.TrimSpace(label) == "" {
		return
	}

	if err := c.svc.CreateTask(ctx, username, label); err != nil {
		c.logFailure("create task", username, err)
		return
	}

	c.update(func(s *State) { s.Draft = "" })
	c.FetchTasks(ctx)
}

// DeleteTask deletes the task with the given ID and reconciles.
func (c *Controller) DeleteTask(ctx context.Context, taskID int) {
	username, ok := c.session()
	if !ok {
		return
	}

	if err := c.svc.DeleteTask(ctx, taskID); err != nil {
		c.logFailure("delete task", username, err, "task_id", taskID)
		return
	}
	c.FetchTasks(ctx)
}

// ClearAllTasks deletes every known task concurrently, waits for all of
// them and then reconciles once. Tasks whose delete failed reappear after
// the fetch; there is no per-item retry.
func (c *Controller) ClearAllTasks(ctx context.Context) {
	c.mu.Lock()
	username, ok := c.state.Username, c.state.UserCreated
	ids := make([]int, len(c.state.Tasks))
	for i, t := range c.state.Tasks {
		ids[i] = t.ID
	}
	c.mu.Unlock()

	if !ok || len(ids) == 0 {
		return
	}

	p := pool.New().WithErrors()
	for _, id := range ids {
		id := id
		p.Go(func() error {
			if err := c.svc.DeleteTask(ctx, id); err != nil {
				c.logFailure("delete task", username, err, "task_id", id)
				return err
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		c.log.Warn("clear all tasks incomplete", "username", username, "requested", len(ids))
	}

	c.FetchTasks(ctx)
}

func (c *Controller) logFailure(op, username string, err error, args ...any) {
	attrs := append([]any{"op", op, "username", username, "error", err}, args...)
	if code := service.StatusCode(err); code != 0 {
		attrs = append(attrs, "status", code)
	} else if service.IsNetwork(err) {
		attrs = append(attrs, "network", true)
	}
	c.log.Error(op+" failed", attrs...)
}
