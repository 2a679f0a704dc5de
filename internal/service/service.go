// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized is returned when the session is missing, expired or
	// rejected by the task API. Callers send the user back to login.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRequestFailed covers every other network or non-2xx failure.
	ErrRequestFailed = errors.New("request failed")
)

// Service defines the interface for task backend operations.
// The screens and commands never talk HTTP directly.
type Service interface {
	// ListTasks returns every task stored for the signed-in user, in
	// server order. There is no pagination.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns it with its server-assigned ID.
	// Callers validate that title and description are non-empty.
	CreateTask(ctx context.Context, title, description string) (Task, error)

	// UpdateTask replaces a task's title and description and returns the
	// task as accepted by the server.
	UpdateTask(ctx context.Context, id, title, description string) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
