// Package calendar lays out merged bookings onto fixed month and week grids.
package calendar

import (
	"time"

	"github.com/colonyops/taskcal/internal/core/booking"
	"github.com/colonyops/taskcal/internal/core/datekey"
)

const (
	// DaysPerWeek is the width of every grid row. Rows start on Sunday.
	DaysPerWeek = 7
	// MonthCells is the size of a month grid: six full weeks, whatever the
	// month length or starting weekday.
	MonthCells = 6 * DaysPerWeek
)

// Day is one cell of a calendar grid.
type Day struct {
	Date           datekey.Key       `json:"date"`
	Bookings       []booking.Booking `json:"bookings"`
	IsCurrentMonth bool              `json:"isCurrentMonth"`
	IsToday        bool              `json:"isToday"`
}

// StartOfWeek returns the Sunday on or before k.
func StartOfWeek(k datekey.Key) datekey.Key {
	return k.AddDays(-int(k.Weekday()))
}

// Month builds the 42-cell grid for anchor's month. The first cell is the
// Sunday on or before the 1st of the month.
func Month(anchor, today datekey.Key, view booking.View) []Day {
	return build(StartOfWeek(anchor.FirstOfMonth()), MonthCells, anchor, today, view)
}

// Week builds the 7-cell grid for the week containing anchor.
func Week(anchor, today datekey.Key, view booking.View) []Day {
	return build(StartOfWeek(anchor), DaysPerWeek, anchor, today, view)
}

func build(start datekey.Key, n int, anchor, today datekey.Key, view booking.View) []Day {
	days := make([]Day, 0, n)
	for i := range n {
		date := start.AddDays(i)
		days = append(days, Day{
			Date:           date,
			Bookings:       append([]booking.Booking{}, view[date]...),
			IsCurrentMonth: date.SameMonth(anchor),
			IsToday:        date == today,
		})
	}
	return days
}

// Navigator tracks the anchor date of a calendar view.
type Navigator struct {
	anchor datekey.Key
	now    func() time.Time
}

// NewNavigator returns a navigator anchored on today.
func NewNavigator(now func() time.Time) *Navigator {
	if now == nil {
		now = time.Now
	}
	n := &Navigator{now: now}
	n.Today()
	return n
}

// Anchor returns the current anchor date.
func (n *Navigator) Anchor() datekey.Key { return n.anchor }

// Set moves the anchor to k.
func (n *Navigator) Set(k datekey.Key) { n.anchor = k }

// Today resets the anchor to the current date.
func (n *Navigator) Today() { n.anchor = datekey.Today(n.now) }

// ShiftMonths moves the anchor by delta months, clamping the day.
func (n *Navigator) ShiftMonths(delta int) { n.anchor = n.anchor.AddMonths(delta) }

// ShiftWeeks moves the anchor by delta weeks.
func (n *Navigator) ShiftWeeks(delta int) { n.anchor = n.anchor.AddDays(delta * DaysPerWeek) }

// Month builds the month grid around the anchor.
func (n *Navigator) Month(view booking.View) []Day {
	return Month(n.anchor, datekey.Today(n.now), view)
}

// Week builds the week grid around the anchor.
func (n *Navigator) Week(view booking.View) []Day {
	return Week(n.anchor, datekey.Today(n.now), view)
}
