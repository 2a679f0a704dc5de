package commands

import (
	"context"
	"fmt"

	"todo/internal/service"
)

// findTaskByNumber returns the num-th task (1-based) in server order, the
// numbering the list command prints.
func findTaskByNumber(ctx context.Context, svc service.Service, num int) (service.Task, error) {
	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return service.Task{}, err
	}
	if num < 1 || num > len(tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", errTaskNotFound, num)
	}
	return tasks[num-1], nil
}
