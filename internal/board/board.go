// Package board combines the task store and the manual booking book into
// the single service the CLI talks to. Reads see tasks and bookings as one
// consistent pair.
package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcal/internal/core/booking"
	"github.com/colonyops/taskcal/internal/core/calendar"
	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/internal/core/filter"
	"github.com/colonyops/taskcal/internal/core/logging"
	"github.com/colonyops/taskcal/internal/core/task"
)

// Column is one Kanban column after filtering.
type Column struct {
	Status task.Status `json:"status"`
	Tasks  []task.Task `json:"tasks"`
}

// Board is the application service over tasks and bookings.
type Board struct {
	mu       sync.RWMutex
	tasks    *TaskStore
	bookings *BookingBook
	now      func() time.Time
	log      zerolog.Logger
}

// Open loads both collections.
func Open(ctx context.Context, tasks task.Repository, bookings booking.Repository, log zerolog.Logger, opts ...Option) (*Board, error) {
	o := buildOptions(opts)

	ts, err := OpenTaskStore(ctx, tasks, log, opts...)
	if err != nil {
		return nil, err
	}
	bb, err := OpenBookingBook(ctx, bookings, log, opts...)
	if err != nil {
		return nil, err
	}

	return &Board{
		tasks:    ts,
		bookings: bb,
		now:      o.now,
		log:      logging.Component(log, "board"),
	}, nil
}

// Reload re-reads both collections from storage.
func (b *Board) Reload(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.tasks.Reload(ctx); err != nil {
		return err
	}
	return b.bookings.Reload(ctx)
}

// Now returns the board's current time.
func (b *Board) Now() time.Time {
	return b.now()
}

// Today is the current local calendar date.
func (b *Board) Today() datekey.Key {
	return datekey.Today(b.now)
}

// Navigator returns a calendar navigator sharing the board's clock.
func (b *Board) Navigator() *calendar.Navigator {
	return calendar.NewNavigator(b.now)
}

// AddTask creates a task in the To Do column with medium priority.
func (b *Board) AddTask(ctx context.Context, title, description string, due datekey.Key) (task.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks.Add(ctx, title, description, due)
}

// UpdateTask applies patch to the task with id. Unknown ids report
// task.ErrNotFound.
func (b *Board) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks.Update(ctx, id, patch)
}

// MoveTask sets the task's status, moving it to another column.
func (b *Board) MoveTask(ctx context.Context, id string, status task.Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks.Move(ctx, id, status)
}

// DeleteTask removes the task with id.
func (b *Board) DeleteTask(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks.Delete(ctx, id)
}

// ReplaceTasks installs an imported collection. An empty import leaves the
// store untouched and reports false.
func (b *Board) ReplaceTasks(ctx context.Context, tasks []task.Task) (bool, error) {
	if len(tasks) == 0 {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.tasks.Replace(ctx, tasks); err != nil {
		return false, err
	}
	b.log.Info().Ctx(ctx).Int("count", len(tasks)).Msg("tasks replaced from import")
	return true, nil
}

// Task returns a copy of the task with id.
func (b *Board) Task(id string) (task.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tasks.Get(id)
}

// Tasks returns a snapshot of every task in insertion order.
func (b *Board) Tasks() []task.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tasks.List()
}

// TasksForDate returns the tasks due on key.
func (b *Board) TasksForDate(key datekey.Key) []task.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tasks.TasksForDate(key)
}

// Filter applies c relative to today.
func (b *Board) Filter(c filter.Criteria) []task.Task {
	return filter.Apply(b.Tasks(), c, b.Today())
}

// Columns groups the filtered tasks by status in board order. Every column
// is present even when empty.
func (b *Board) Columns(c filter.Criteria) []Column {
	filtered := b.Filter(c)

	cols := make([]Column, 0, len(task.Statuses()))
	for _, st := range task.Statuses() {
		col := Column{Status: st, Tasks: []task.Task{}}
		for _, t := range filtered {
			if t.Status == st {
				col.Tasks = append(col.Tasks, t)
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// OverdueCount counts open tasks whose due date has passed.
func (b *Board) OverdueCount() int {
	today := b.Today()
	n := 0
	for _, t := range b.Tasks() {
		if filter.Overdue(t, today) {
			n++
		}
	}
	return n
}

// AddBooking stores a manual booking on date with a generated id.
func (b *Board) AddBooking(ctx context.Context, date datekey.Key, d booking.Draft) (booking.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bookings.Add(ctx, date, d)
}

// UpdateBookingStatus changes a manual booking's status. Task-derived
// bookings are rejected with booking.ErrVirtual; move the task instead.
func (b *Board) UpdateBookingStatus(ctx context.Context, id string, status booking.Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range b.tasks.List() {
		if booking.VirtualID(t.ID) == id && t.HasDueDate() {
			return fmt.Errorf("update booking %s: %w", id, booking.ErrVirtual)
		}
	}
	return b.bookings.UpdateStatus(ctx, id, status)
}

// View merges task-derived and manual bookings. It is recomputed on every
// call.
func (b *Board) View() booking.View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return booking.Merge(b.tasks.List(), b.bookings.Snapshot())
}

// BookingsFor returns the merged bookings on key, ordered by time label.
func (b *Board) BookingsFor(key datekey.Key) []booking.Booking {
	return b.View().For(key)
}

// Stats counts the merged bookings by status.
func (b *Board) Stats() booking.Stats {
	return booking.Statistics(b.View())
}

// Month builds the month grid around anchor.
func (b *Board) Month(anchor datekey.Key) []calendar.Day {
	return calendar.Month(anchor, b.Today(), b.View())
}

// Week builds the week grid around anchor.
func (b *Board) Week(anchor datekey.Key) []calendar.Day {
	return calendar.Week(anchor, b.Today(), b.View())
}
