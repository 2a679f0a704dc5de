// Package service defines the backend-agnostic interface for task operations.
package service

// Task represents a single to-do item.
type Task struct {
	ID          string
	Title       string
	Description string
}
