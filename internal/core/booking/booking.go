// Package booking models calendar bookings and merges manual bookings with
// bookings derived from task due dates into one date-keyed view.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/taskcal/internal/core/datekey"
)

var (
	// ErrNotFound is returned when no manual booking has the requested id.
	ErrNotFound = errors.New("booking not found")
	// ErrVirtual is returned when a status update targets a task-derived
	// booking. Its status follows the task; move the task instead.
	ErrVirtual = errors.New("booking is derived from a task")
	// ErrInvalid is returned when a draft cannot become a booking.
	ErrInvalid = errors.New("invalid booking")
)

// StorageKey is the logical name manual bookings are persisted under.
const StorageKey = "calendar-bookings"

// AllDay is the time label used for bookings that span the whole day.
const AllDay = "all-day"

// Status is the approval state of a booking.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus converts a user supplied string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: status %q must be one of pending, approved, rejected", ErrInvalid, s)
	}
	return st, nil
}

// Booking is a calendar entry. TaskID is set only on task-derived bookings.
type Booking struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status Status `json:"status"`
	Time   string `json:"time"`
	TaskID string `json:"taskId,omitempty"`
}

// IsVirtual reports whether b was derived from a task.
func (b Booking) IsVirtual() bool {
	return b.TaskID != ""
}

// Draft is a booking before an id has been assigned.
type Draft struct {
	Title  string
	Status Status
	Time   string
}

// Buckets holds bookings grouped by date key.
type Buckets map[datekey.Key][]Booking

// Clone returns a deep copy of b.
func (b Buckets) Clone() Buckets {
	out := make(Buckets, len(b))
	for k, list := range b {
		out[k] = append([]Booking(nil), list...)
	}
	return out
}

// Repository is the persistence port for manual bookings.
type Repository interface {
	// Load returns the persisted manual bookings. Missing or malformed data
	// yields empty buckets and no error.
	Load(ctx context.Context) (Buckets, error)

	// Save replaces the persisted manual bookings.
	Save(ctx context.Context, buckets Buckets) error
}
