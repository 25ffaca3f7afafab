// Package styles provides shared lipgloss styles for the board, calendar and
// forms.
package styles

import (
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

var (
	HeaderStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	DividerStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	SuccessStyle lipgloss.Style

	// Board.
	ColumnStyle      lipgloss.Style
	ColumnTitleStyle lipgloss.Style
	CardStyle        lipgloss.Style
	OverdueStyle     lipgloss.Style

	// Calendar.
	WeekdayStyle    lipgloss.Style
	DayStyle        lipgloss.Style
	DayOutsideStyle lipgloss.Style
	DayTodayStyle   lipgloss.Style

	// Status and priority badges, keyed by their string values.
	BadgeStyles map[string]lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Surface)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)

	ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Padding(0, 1)
	ColumnTitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		MarginBottom(1)
	CardStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		MarginBottom(1)
	OverdueStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)

	WeekdayStyle = lipgloss.NewStyle().Foreground(p.Muted).Bold(true).Align(lipgloss.Center)
	DayStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Border(lipgloss.NormalBorder()).
		BorderForeground(p.Surface)
	DayOutsideStyle = DayStyle.Foreground(p.Muted)
	DayTodayStyle = DayStyle.BorderForeground(p.Primary).Bold(true)

	BadgeStyles = map[string]lipgloss.Style{
		"todo":     lipgloss.NewStyle().Foreground(p.Muted),
		"doing":    lipgloss.NewStyle().Foreground(p.Secondary),
		"done":     lipgloss.NewStyle().Foreground(p.Success),
		"low":      lipgloss.NewStyle().Foreground(p.Muted),
		"medium":   lipgloss.NewStyle().Foreground(p.Warning),
		"high":     lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		"pending":  lipgloss.NewStyle().Foreground(p.Warning),
		"approved": lipgloss.NewStyle().Foreground(p.Success),
		"rejected": lipgloss.NewStyle().Foreground(p.Error),
	}
}

// Badge renders value in its badge color, or plain when it has none.
func Badge(value string) string {
	if s, ok := BadgeStyles[value]; ok {
		return s.Render(value)
	}
	return value
}

// FormTheme returns the huh theme matching the active palette.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()
	p := CurrentPalette

	t.Focused.Title = t.Focused.Title.Foreground(p.Primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(p.Muted)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(p.Error)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(p.Error)
	t.Focused.Base = t.Focused.Base.BorderForeground(p.Primary)
	t.Blurred.Title = t.Blurred.Title.Foreground(p.Muted)

	return t
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
