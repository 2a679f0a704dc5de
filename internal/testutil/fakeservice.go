// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"todo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.RWMutex
	tasks []service.Task
	seq   int
	calls map[string]int

	// NextID overrides the identifier of the next created task.
	NextID string

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{calls: make(map[string]int)}
}

// AddTask stores a task directly.
func (f *FakeService) AddTask(id, title, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Description: description})
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns how many times an operation ("list", "create", "update",
// "delete") was invoked.
func (f *FakeService) Calls(op string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[op]
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	f.calls["list"]++
	f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Tasks(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, title, description string) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}

	id := f.NextID
	f.NextID = ""
	if id == "" {
		f.seq++
		id = fmt.Sprintf("task-%d", f.seq)
	}
	t := service.Task{ID: id, Title: title, Description: description}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id, title, description string) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Title = title
			f.tasks[i].Description = description
			return f.tasks[i], nil
		}
	}
	return service.Task{}, fmt.Errorf("%w: update: status 404", service.ErrRequestFailed)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: delete: status 404", service.ErrRequestFailed)
}
