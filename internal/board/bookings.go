package board

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskcal/internal/core/booking"
	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/internal/core/logging"
)

// BookingBook owns the manual bookings, grouped by date key.
type BookingBook struct {
	mu      sync.Mutex
	repo    booking.Repository
	buckets booking.Buckets
	newID   func() string
	log     zerolog.Logger
}

// OpenBookingBook loads the persisted manual bookings, or starts empty.
func OpenBookingBook(ctx context.Context, repo booking.Repository, log zerolog.Logger, opts ...Option) (*BookingBook, error) {
	o := buildOptions(opts)
	b := &BookingBook{
		repo:  repo,
		newID: o.bookingID,
		log:   logging.Component(log, "booking-book"),
	}
	if err := b.Reload(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload replaces the in-memory bookings with the persisted ones.
func (b *BookingBook) Reload(ctx context.Context) error {
	buckets, err := b.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}
	if buckets == nil {
		buckets = booking.Buckets{}
	}

	b.mu.Lock()
	b.buckets = buckets
	b.mu.Unlock()
	return nil
}

// Add stores a new manual booking under date. A draft without a status is
// pending; one without a time label is all-day.
func (b *BookingBook) Add(ctx context.Context, date datekey.Key, d booking.Draft) (booking.Booking, error) {
	if !date.Valid() {
		return booking.Booking{}, fmt.Errorf("add booking: %w: %q", datekey.ErrInvalidKey, date)
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		return booking.Booking{}, fmt.Errorf("%w: title is blank", booking.ErrInvalid)
	}

	status := d.Status
	if status == "" {
		status = booking.StatusPending
	}
	if !status.IsValid() {
		return booking.Booking{}, fmt.Errorf("%w: status %q", booking.ErrInvalid, status)
	}

	when := strings.TrimSpace(d.Time)
	if when == "" {
		when = booking.AllDay
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bk := booking.Booking{
		ID:     b.newID(),
		Title:  title,
		Status: status,
		Time:   when,
	}

	next := b.buckets.Clone()
	next[date] = append(next[date], bk)
	if err := b.commit(ctx, next); err != nil {
		return booking.Booking{}, err
	}

	b.log.Debug().Str("id", bk.ID).Str("date", date.String()).Msg("booking added")
	return bk, nil
}

// UpdateStatus sets the status of the first manual booking with id.
func (b *BookingBook) UpdateStatus(ctx context.Context, id string, status booking.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: status %q", booking.ErrInvalid, status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key, idx, ok := b.find(id)
	if !ok {
		return fmt.Errorf("update booking %s: %w", id, booking.ErrNotFound)
	}
	if b.buckets[key][idx].IsVirtual() {
		return fmt.Errorf("update booking %s: %w", id, booking.ErrVirtual)
	}

	next := b.buckets.Clone()
	next[key][idx].Status = status
	return b.commit(ctx, next)
}

// Snapshot returns a deep copy of the manual bookings.
func (b *BookingBook) Snapshot() booking.Buckets {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buckets.Clone()
}

// find scans buckets in date order so "first match" is deterministic.
// Callers hold mu.
func (b *BookingBook) find(id string) (datekey.Key, int, bool) {
	for _, key := range booking.View(b.buckets).Keys() {
		for i, bk := range b.buckets[key] {
			if bk.ID == id {
				return key, i, true
			}
		}
	}
	return "", 0, false
}

// commit persists next and then installs it. Callers hold mu.
func (b *BookingBook) commit(ctx context.Context, next booking.Buckets) error {
	if err := b.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("persist bookings: %w", err)
	}
	b.buckets = next
	return nil
}
