// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for remote task operations.
// All calls to the remote task service go through this interface.
// The session controller never imports an HTTP client directly.
type Service interface {
	// CreateUser registers a username with the remote service.
	// The client does not distinguish "already exists" from other failures.
	CreateUser(ctx context.Context, username string) error

	// ListTasks returns the user's tasks in server order.
	// No client-side sorting or filtering is applied.
	ListTasks(ctx context.Context, username string) ([]Task, error)

	// CreateTask creates a new, not-done task for the user.
	CreateTask(ctx context.Context, username, label string) error

	// DeleteTask deletes a task by its server-assigned ID.
	DeleteTask(ctx context.Context, taskID int) error
}
