package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/taskcal/internal/board"
	"github.com/colonyops/taskcal/internal/core/booking"
	"github.com/colonyops/taskcal/internal/core/calendar"
	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/internal/core/filter"
	"github.com/colonyops/taskcal/internal/core/styles"
	"github.com/colonyops/taskcal/internal/core/task"
)

const (
	columnWidth = 32
	cellWidth   = 14
	// cellLines is how many bookings fit in a month cell before "+N more".
	cellLines = 2
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var columnTitles = map[task.Status]string{
	task.StatusTodo:  "To Do",
	task.StatusDoing: "In Progress",
	task.StatusDone:  "Done",
}

func taskLine(t task.Task, today datekey.Key) string {
	var b strings.Builder
	b.WriteString(t.ID)
	b.WriteString("  ")
	b.WriteString(styles.Badge(string(t.Status)))
	b.WriteString("  ")
	b.WriteString(styles.Badge(string(t.Priority)))
	b.WriteString("  ")
	b.WriteString(t.Title)
	if t.HasDueDate() {
		due := "due " + t.DueDate.String()
		if filter.Overdue(t, today) {
			due = styles.OverdueStyle.Render(due + " (overdue)")
		}
		b.WriteString("  ")
		b.WriteString(due)
	}
	return b.String()
}

func renderCard(t task.Task, today datekey.Key) string {
	lines := []string{t.Title, styles.Badge(string(t.Priority))}
	if t.HasDueDate() {
		due := t.DueDate.String()
		if filter.Overdue(t, today) {
			due = styles.OverdueStyle.Render(due)
		}
		lines = append(lines, due)
	}
	lines = append(lines, styles.MutedStyle.Render(t.ID))
	return styles.CardStyle.Render(strings.Join(lines, "\n"))
}

// renderBoard lays the columns side by side with the overdue count above.
func renderBoard(cols []board.Column, today datekey.Key, overdue int) string {
	rendered := make([]string, 0, len(cols))
	for _, col := range cols {
		parts := []string{
			styles.ColumnTitleStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[col.Status], len(col.Tasks))),
		}
		for _, t := range col.Tasks {
			parts = append(parts, renderCard(t, today))
		}
		if len(col.Tasks) == 0 {
			parts = append(parts, styles.MutedStyle.Render("empty"))
		}
		rendered = append(rendered, styles.ColumnStyle.Width(columnWidth).Render(strings.Join(parts, "\n")))
	}

	header := styles.HeaderStyle.Render("Board")
	if overdue > 0 {
		header += "  " + styles.OverdueStyle.Render(strconv.Itoa(overdue)+" overdue")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func renderCell(d calendar.Day, lines int) string {
	style := styles.DayStyle
	switch {
	case d.IsToday:
		style = styles.DayTodayStyle
	case !d.IsCurrentMonth:
		style = styles.DayOutsideStyle
	}

	_, _, day := d.Date.Date()
	parts := []string{strconv.Itoa(day)}

	shown := d.Bookings
	if lines >= 0 && len(shown) > lines {
		shown = shown[:lines]
	}
	for _, b := range shown {
		parts = append(parts, styles.BadgeStyles[string(b.Status)].Render(truncate(b.Title, cellWidth-2)))
	}
	if more := len(d.Bookings) - len(shown); more > 0 {
		parts = append(parts, styles.MutedStyle.Render(fmt.Sprintf("+%d more", more)))
	}

	return style.Width(cellWidth).Render(strings.Join(parts, "\n"))
}

func weekdayHeader() string {
	cells := make([]string, 0, len(weekdays))
	for _, w := range weekdays {
		// Day cells carry a border on each side.
		cells = append(cells, styles.WeekdayStyle.Width(cellWidth+2).Render(w))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func renderGrid(title string, days []calendar.Day, lines int) string {
	rows := []string{styles.HeaderStyle.Render(title), weekdayHeader()}
	for start := 0; start < len(days); start += calendar.DaysPerWeek {
		end := min(start+calendar.DaysPerWeek, len(days))
		cells := make([]string, 0, calendar.DaysPerWeek)
		for _, d := range days[start:end] {
			cells = append(cells, renderCell(d, lines))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderMonth(anchor datekey.Key, days []calendar.Day) string {
	return renderGrid(monthLabel(anchor), days, cellLines)
}

func renderWeek(days []calendar.Day) string {
	if len(days) == 0 {
		return ""
	}
	title := fmt.Sprintf("Week of %s", days[0].Date)
	return renderGrid(title, days, -1)
}

func bookingLine(b booking.Booking) string {
	kind := "manual"
	if b.IsVirtual() {
		kind = "task"
	}
	return fmt.Sprintf("%s  %-8s  %s  %s  %s",
		b.ID, b.Time, styles.Badge(string(b.Status)), b.Title, styles.MutedStyle.Render(kind))
}

func renderStats(s booking.Stats) string {
	rows := []struct {
		label string
		value int
	}{
		{"Total", s.Total},
		{"Pending", s.Pending},
		{"Approved", s.Approved},
		{"Rejected", s.Rejected},
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		label := fmt.Sprintf("%-10s", r.label)
		if r.label != "Total" {
			label = styles.BadgeStyles[strings.ToLower(r.label)].Render(label)
		}
		lines = append(lines, fmt.Sprintf("%s %d", label, r.value))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// monthLabel names the month of a key for headers such as "March 2024".
func monthLabel(k datekey.Key) string {
	year, month, _ := k.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}
