// Package datekey canonicalizes calendar dates into stable "YYYY-MM-DD" keys.
//
// A Key always names the local calendar date it was derived from. Keys never
// go through UTC formatting, so a task due "2024-03-15" stays on the 15th no
// matter what time of day or which zone the key was produced in. Arithmetic
// on keys is done on civil days and is not affected by DST transitions.
package datekey

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Layout is the reference layout for keys.
const Layout = "2006-01-02"

// ErrInvalidKey is returned when a string is not a well-formed date key.
var ErrInvalidKey = errors.New("invalid date key")

var keyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Key is a calendar date formatted as "YYYY-MM-DD".
type Key string

// FromTime returns the key for the calendar date of t in t's own location.
func FromTime(t time.Time) Key {
	y, m, d := t.Date()
	return Key(fmt.Sprintf("%04d-%02d-%02d", y, int(m), d))
}

// Today returns the key for the local calendar date of now().
func Today(now func() time.Time) Key {
	if now == nil {
		now = time.Now
	}
	return FromTime(now().Local())
}

// Parse validates s against the fixed-width pattern and the calendar.
// "2024-02-30" and "2024-3-5" are both rejected.
func Parse(s string) (Key, error) {
	if !keyPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	if _, err := time.Parse(Layout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return Key(s), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// String implements fmt.Stringer.
func (k Key) String() string { return string(k) }

// IsZero reports whether k is the empty key.
func (k Key) IsZero() bool { return k == "" }

// Valid reports whether k would be accepted by Parse.
func (k Key) Valid() bool {
	_, err := Parse(string(k))
	return err == nil
}

// Time returns midnight of k in loc.
func (k Key) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, string(k), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, string(k))
	}
	return t, nil
}

// Date returns the year, month and day named by k.
func (k Key) Date() (year int, month time.Month, day int) {
	return k.civil().Date()
}

// Weekday returns the day of the week named by k.
func (k Key) Weekday() time.Weekday {
	return k.civil().Weekday()
}

// AddDays returns the key n days after k (n may be negative).
func (k Key) AddDays(n int) Key {
	return FromTime(k.civil().AddDate(0, 0, n))
}

// AddMonths shifts k by n calendar months. The day is clamped to the last day
// of the target month, so 2024-01-31 plus one month is 2024-02-29.
func (k Key) AddMonths(n int) Key {
	y, m, d := k.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return FromTime(time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC))
}

// FirstOfMonth returns the first day of k's month.
func (k Key) FirstOfMonth() Key {
	y, m, _ := k.Date()
	return FromTime(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC))
}

// SameMonth reports whether k and other fall in the same year and month.
func (k Key) SameMonth(other Key) bool {
	ky, km, _ := k.Date()
	oy, om, _ := other.Date()
	return ky == oy && km == om
}

// Before reports whether k is an earlier date than other.
func (k Key) Before(other Key) bool { return k < other }

// After reports whether k is a later date than other.
func (k Key) After(other Key) bool { return k > other }

// DaysBetween returns the number of whole days from "from" to "to".
// The result is negative when to is earlier than from.
func DaysBetween(from, to Key) int {
	return int(to.civil().Sub(from.civil()).Hours() / 24)
}

// civil interprets k as midnight UTC. Invalid keys yield the zero time.
func (k Key) civil() time.Time {
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
