package booking

import (
	"slices"
	"sort"

	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/internal/core/task"
)

// VirtualIDPrefix prefixes the id of every task-derived booking.
const VirtualIDPrefix = "task-"

// VirtualID returns the deterministic booking id for a task.
func VirtualID(taskID string) string {
	return VirtualIDPrefix + taskID
}

// StatusFor projects a task status onto a booking status.
func StatusFor(s task.Status) Status {
	if s == task.StatusDone {
		return StatusApproved
	}
	return StatusPending
}

// Virtual derives the booking shown on the calendar for t. The second return
// is false when t has no due date.
func Virtual(t task.Task) (Booking, bool) {
	if !t.HasDueDate() {
		return Booking{}, false
	}
	return Booking{
		ID:     VirtualID(t.ID),
		Title:  t.Title,
		Status: StatusFor(t.Status),
		Time:   AllDay,
		TaskID: t.ID,
	}, true
}

// View is the merged, read-only date-keyed view of all bookings.
type View Buckets

// Merge combines task-derived bookings with manual bookings. Within a bucket
// virtual bookings come first, in task order, followed by manual bookings in
// stored order. Manual entries carrying a TaskID are dropped so a task is
// never represented twice. The inputs are not modified.
func Merge(tasks []task.Task, manual Buckets) View {
	view := make(View)

	for _, t := range tasks {
		b, ok := Virtual(t)
		if !ok {
			continue
		}
		view[t.DueDate] = append(view[t.DueDate], b)
	}

	for key, list := range manual {
		bucket, exists := view[key]
		if !exists {
			bucket = []Booking{}
		}
		for _, b := range list {
			if b.TaskID != "" {
				continue
			}
			bucket = append(bucket, b)
		}
		view[key] = bucket
	}

	return view
}

// For returns the bookings on key sorted by time label. The returned slice
// is a copy.
func (v View) For(key datekey.Key) []Booking {
	out := append([]Booking(nil), v[key]...)
	SortByTime(out)
	return out
}

// Keys returns the date keys present in v in ascending order.
func (v View) Keys() []datekey.Key {
	keys := make([]datekey.Key, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the total number of bookings across all buckets.
func (v View) Len() int {
	n := 0
	for _, list := range v {
		n += len(list)
	}
	return n
}

// SortByTime orders bookings lexicographically by their time label, keeping
// the relative order of equal labels.
func SortByTime(list []Booking) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Time < list[j].Time
	})
}

// Stats counts bookings by status.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Statistics sums bookings by status across every bucket of v.
func Statistics(v View) Stats {
	var s Stats
	for _, list := range v {
		for _, b := range list {
			s.Total++
			switch b.Status {
			case StatusPending:
				s.Pending++
			case StatusApproved:
				s.Approved++
			case StatusRejected:
				s.Rejected++
			}
		}
	}
	return s
}
