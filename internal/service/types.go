// Package service defines the backend-agnostic interface for task operations.
package service

// Task represents a single task item as owned by the remote service.
type Task struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	IsDone bool   `json:"is_done"`
}

// NewTask is the request body for task creation.
type NewTask struct {
	Label  string `json:"label"`
	IsDone bool   `json:"is_done"`
}

// UserTasks is the list-tasks response body.
type UserTasks struct {
	Name  string `json:"name"`
	Todos []Task `json:"todos"`
}
