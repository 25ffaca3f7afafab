package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/colonyops/taskcal/internal/core/booking"
	"github.com/colonyops/taskcal/internal/core/task"
)

var errDiskFull = errors.New("disk full")

// fixedNow is Friday 2024-03-15 10:00 local time.
func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)
}

func counter(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func testOptions() []Option {
	return []Option{
		WithClock(fixedNow),
		WithTaskIDs(counter("")),
		WithBookingIDs(counter("booking-")),
	}
}

type memTaskRepo struct {
	mu      sync.Mutex
	tasks   []task.Task
	saves   int
	failErr error
	loadErr error
}

func (r *memTaskRepo) Load(ctx context.Context) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return slices.Clone(r.tasks), nil
}

func (r *memTaskRepo) Save(ctx context.Context, tasks []task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.saves++
	r.tasks = slices.Clone(tasks)
	return nil
}

type memBookingRepo struct {
	mu      sync.Mutex
	buckets booking.Buckets
	saves   int
	failErr error
}

func (r *memBookingRepo) Load(ctx context.Context) (booking.Buckets, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buckets.Clone(), nil
}

func (r *memBookingRepo) Save(ctx context.Context, b booking.Buckets) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.saves++
	r.buckets = b.Clone()
	return nil
}
