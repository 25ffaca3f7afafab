// Package task defines the Kanban task domain model and its persistence port.
package task

import (
	"fmt"
	"time"

	"github.com/colonyops/taskcal/internal/core/datekey"
)

// Status is the Kanban column a task sits in.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses returns all statuses in board column order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusDoing, StatusDone}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// ParseStatus converts a user supplied string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: status %q must be one of todo, doing, done", ErrInvalid, s)
	}
	return st, nil
}

// Priority ranks tasks within a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts a user supplied string into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: priority %q must be one of low, medium, high", ErrInvalid, s)
	}
	return p, nil
}

// Task is a single card on the board. The JSON field names match the
// exported "tasks-data.json" document.
type Task struct {
	ID          string      `json:"id"                    validate:"required"`
	Title       string      `json:"title"                 validate:"required"`
	Description string      `json:"description,omitempty"`
	Status      Status      `json:"status"                validate:"oneof=todo doing done"`
	Priority    Priority    `json:"priority"              validate:"oneof=low medium high"`
	DueDate     datekey.Key `json:"dueDate,omitempty"     validate:"omitempty,datekey"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// HasDueDate reports whether the task carries a due date.
func (t Task) HasDueDate() bool {
	return !t.DueDate.IsZero()
}

// Patch is a partial update. Nil fields are left untouched; a non-nil
// DueDate pointing at the empty key clears the due date.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *datekey.Key
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil && p.DueDate == nil
}

// Apply returns a copy of t with the patch merged in. ID and CreatedAt are
// never patched.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	return t
}

// StatusPatch is the patch used by a column move.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}
