package task

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a mutation targets an id that does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrInvalid is returned when a task fails validation.
	ErrInvalid = errors.New("invalid task")
)

// StorageKey is the logical name the task collection is persisted under.
const StorageKey = "kanban-tasks"

// Repository is the persistence port for the task collection. The whole
// collection is read and written as one document.
type Repository interface {
	// Load returns the persisted tasks in insertion order. Missing or
	// malformed data yields an empty slice and no error.
	Load(ctx context.Context) ([]Task, error)

	// Save replaces the persisted collection with tasks.
	Save(ctx context.Context, tasks []Task) error
}
