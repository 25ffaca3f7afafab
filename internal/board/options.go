package board

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/taskcal/pkg/randid"
)

// Option configures the stores and the board.
type Option func(*options)

type options struct {
	now       func() time.Time
	taskID    func() string
	bookingID func() string
}

func defaultOptions() options {
	return options{
		now:       time.Now,
		bookingID: newBookingID,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.taskID == nil {
		now := o.now
		o.taskID = func() string { return newTaskID(now) }
	}
	return o
}

// WithClock replaces time.Now for creation timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTaskIDs replaces the task id generator.
func WithTaskIDs(fn func() string) Option {
	return func(o *options) { o.taskID = fn }
}

// WithBookingIDs replaces the manual booking id generator.
func WithBookingIDs(fn func() string) Option {
	return func(o *options) { o.bookingID = fn }
}

// newTaskID returns "task-<unix millis>-<9 random chars>".
func newTaskID(now func() time.Time) string {
	return fmt.Sprintf("task-%d-%s", now().UnixMilli(), randid.Generate(9))
}

func newBookingID() string {
	return "booking-" + uuid.NewString()
}
