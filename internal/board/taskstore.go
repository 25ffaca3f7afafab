package board

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/internal/core/logging"
	"github.com/colonyops/taskcal/internal/core/task"
)

// TaskStore owns the task collection. Every mutation rewrites the whole
// collection through the repository and is committed in memory only after
// the write succeeds.
type TaskStore struct {
	mu    sync.Mutex
	repo  task.Repository
	tasks []task.Task
	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

// OpenTaskStore loads the persisted collection, or starts empty.
func OpenTaskStore(ctx context.Context, repo task.Repository, log zerolog.Logger, opts ...Option) (*TaskStore, error) {
	o := buildOptions(opts)
	s := &TaskStore{
		repo:  repo,
		now:   o.now,
		newID: o.taskID,
		log:   logging.Component(log, "task-store"),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory collection with the persisted one.
func (s *TaskStore) Reload(ctx context.Context) error {
	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()

	s.log.Debug().Int("count", len(tasks)).Msg("tasks loaded")
	return nil
}

// Add creates a task in the todo column with medium priority. The title is
// trimmed and must not be blank; due may be empty.
func (s *TaskStore) Add(ctx context.Context, title, description string, due datekey.Key) (task.Task, error) {
	t := task.Task{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      task.StatusTodo,
		Priority:    task.PriorityMedium,
		DueDate:     due,
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.uniqueID()
	if err := task.Validate(t); err != nil {
		return task.Task{}, err
	}

	next := append(slices.Clone(s.tasks), t)
	if err := s.commit(ctx, next); err != nil {
		return task.Task{}, err
	}

	s.log.Debug().Str("id", t.ID).Msg("task added")
	return t, nil
}

// Update merges patch into the task with the given id.
func (s *TaskStore) Update(ctx context.Context, id string, patch task.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(id)
	if idx < 0 {
		return fmt.Errorf("update %s: %w", id, task.ErrNotFound)
	}

	updated := patch.Apply(s.tasks[idx])
	updated.Title = strings.TrimSpace(updated.Title)
	if err := task.Validate(updated); err != nil {
		return err
	}

	next := slices.Clone(s.tasks)
	next[idx] = updated
	return s.commit(ctx, next)
}

// Move changes only the status of a task.
func (s *TaskStore) Move(ctx context.Context, id string, status task.Status) error {
	return s.Update(ctx, id, task.StatusPatch(status))
}

// Delete removes the task with the given id.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(id)
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", id, task.ErrNotFound)
	}

	next := slices.Delete(slices.Clone(s.tasks), idx, idx+1)
	return s.commit(ctx, next)
}

// Replace swaps the whole collection, as after an import. Every task must
// validate and ids must be unique.
func (s *TaskStore) Replace(ctx context.Context, tasks []task.Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		if err := task.Validate(t); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", task.ErrInvalid, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, slices.Clone(tasks))
}

// Get returns the task with the given id.
func (s *TaskStore) Get(id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(id)
	if idx < 0 {
		return task.Task{}, fmt.Errorf("get %s: %w", id, task.ErrNotFound)
	}
	return s.tasks[idx], nil
}

// List returns a copy of the collection in insertion order.
func (s *TaskStore) List() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// ByStatus returns the tasks in one column, in insertion order.
func (s *TaskStore) ByStatus(status task.Status) []task.Task {
	return s.where(func(t task.Task) bool { return t.Status == status })
}

// TasksForDate returns the tasks due on key.
func (s *TaskStore) TasksForDate(key datekey.Key) []task.Task {
	return s.where(func(t task.Task) bool { return t.DueDate == key })
}

func (s *TaskStore) where(keep func(task.Task) bool) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []task.Task{}
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// commit persists next and then installs it. Callers hold mu.
func (s *TaskStore) commit(ctx context.Context, next []task.Task) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("persist tasks: %w", err)
	}
	s.tasks = next
	return nil
}

func (s *TaskStore) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

// uniqueID draws ids until one is unused. Callers hold mu.
func (s *TaskStore) uniqueID() string {
	for {
		id := s.newID()
		if s.index(id) < 0 {
			return id
		}
	}
}
