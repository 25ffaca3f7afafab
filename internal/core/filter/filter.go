// Package filter selects tasks for the board by text, status, priority and a
// due-date window relative to today.
package filter

import (
	"fmt"
	"strings"

	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/internal/core/task"
)

// All matches every value of a status or priority criterion.
const All = "all"

// DueWindow classifies a due date relative to today.
type DueWindow string

const (
	DueAll     DueWindow = "all"
	DueToday   DueWindow = "today"
	DueWeek    DueWindow = "week"
	DueOverdue DueWindow = "overdue"
)

// WeekSpan is the inclusive upper bound, in days from today, of DueWeek.
const WeekSpan = 7

// ParseDueWindow converts a user supplied string into a DueWindow. The empty
// string means DueAll.
func ParseDueWindow(s string) (DueWindow, error) {
	switch w := DueWindow(s); w {
	case "":
		return DueAll, nil
	case DueAll, DueToday, DueWeek, DueOverdue:
		return w, nil
	default:
		return "", fmt.Errorf("invalid due window %q: must be one of all, today, week, overdue", s)
	}
}

// Criteria is the compound predicate applied by Apply. Zero values of
// Status and Priority mean "all".
type Criteria struct {
	Search   string
	Status   string
	Priority string
	Due      DueWindow
}

// Match reports whether t passes every criterion.
func (c Criteria) Match(t task.Task, today datekey.Key) bool {
	return c.matchSearch(t) &&
		matchEnum(c.Status, string(t.Status)) &&
		matchEnum(c.Priority, string(t.Priority)) &&
		c.matchDue(t, today)
}

// Apply returns the tasks that pass c, preserving input order. The input
// slice is not modified.
func Apply(tasks []task.Task, c Criteria, today datekey.Key) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Match(t, today) {
			out = append(out, t)
		}
	}
	return out
}

func (c Criteria) matchSearch(t task.Task) bool {
	if c.Search == "" {
		return true
	}
	term := strings.ToLower(c.Search)
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), term)
}

func matchEnum(want, got string) bool {
	return want == "" || want == All || want == got
}

func (c Criteria) matchDue(t task.Task, today datekey.Key) bool {
	if c.Due == "" || c.Due == DueAll {
		return true
	}
	// A relative window cannot place a dateless task.
	if !t.HasDueDate() {
		return false
	}

	diff := datekey.DaysBetween(today, t.DueDate)
	switch c.Due {
	case DueToday:
		return diff == 0
	case DueWeek:
		return diff >= 0 && diff <= WeekSpan
	case DueOverdue:
		return diff < 0
	}
	return false
}

// Overdue reports whether t is past due and still open.
func Overdue(t task.Task, today datekey.Key) bool {
	return t.HasDueDate() && t.Status != task.StatusDone && t.DueDate.Before(today)
}
