package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/taskcal/internal/core/booking"
	"github.com/colonyops/taskcal/internal/core/kv"
	"github.com/colonyops/taskcal/internal/core/task"
)

// Namespace prefixes every document key the repositories write.
const Namespace = "taskcal"

// TaskRepository persists the task collection as a single JSON array.
type TaskRepository struct {
	docs *kv.TypedKV[[]task.Task]
}

var _ task.Repository = (*TaskRepository)(nil)

func NewTaskRepository(store kv.KV) *TaskRepository {
	return &TaskRepository{docs: kv.Scoped[[]task.Task](store, Namespace)}
}

// Load returns the stored tasks. A missing document and a document that no
// longer decodes both yield an empty collection. Any other read failure is
// returned so the caller never saves over data it could not see.
func (r *TaskRepository) Load(ctx context.Context) ([]task.Task, error) {
	tasks, err := r.docs.GetOr(ctx, task.StorageKey, []task.Task{})
	if isDecodeError(err) {
		log.Warn().Err(err).Str("key", task.StorageKey).Msg("discarding unreadable task data")
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task data: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

func (r *TaskRepository) Save(ctx context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	if err := r.docs.Set(ctx, task.StorageKey, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// BookingRepository persists manual bookings as a date-keyed JSON object.
type BookingRepository struct {
	docs *kv.TypedKV[booking.Buckets]
}

var _ booking.Repository = (*BookingRepository)(nil)

func NewBookingRepository(store kv.KV) *BookingRepository {
	return &BookingRepository{docs: kv.Scoped[booking.Buckets](store, Namespace)}
}

// Load returns the stored bookings, with the same decode policy as
// TaskRepository.Load.
func (r *BookingRepository) Load(ctx context.Context) (booking.Buckets, error) {
	buckets, err := r.docs.GetOr(ctx, booking.StorageKey, booking.Buckets{})
	if isDecodeError(err) {
		log.Warn().Err(err).Str("key", booking.StorageKey).Msg("discarding unreadable booking data")
		return booking.Buckets{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read booking data: %w", err)
	}
	if buckets == nil {
		buckets = booking.Buckets{}
	}
	return buckets, nil
}

func (r *BookingRepository) Save(ctx context.Context, buckets booking.Buckets) error {
	if buckets == nil {
		buckets = booking.Buckets{}
	}
	if err := r.docs.Set(ctx, booking.StorageKey, buckets); err != nil {
		return fmt.Errorf("save bookings: %w", err)
	}
	return nil
}

// isDecodeError reports whether err comes from a stored value that is not the
// JSON shape the repository expects.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
