package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcal/internal/core/calendar"
	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/pkg/iojson"
)

type CalCmd struct {
	flags *Flags

	date  string
	shift int
	week  bool
	json  bool
}

// NewCalCmd creates a new cal command.
func NewCalCmd(flags *Flags) *CalCmd {
	return &CalCmd{flags: flags}
}

// Register adds the cal and stats commands to the application.
func (cmd *CalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "cal",
			Usage:     "Show the booking calendar",
			UsageText: "taskcal cal [--week] [--date <date>] [--shift <n>] [--json]",
			Description: `Shows a six-week month grid, or a single week with --week, holding
manual bookings and bookings derived from task due dates.

--shift moves the anchor by whole months, or whole weeks with --week.
Moving by a month keeps the day of month where possible, so Jan 31 +1
lands on the last day of February.

Examples:
  taskcal cal
  taskcal cal --shift 1
  taskcal cal --week --date "next monday"`,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "anchor date (defaults to today)", Destination: &cmd.date},
				&cli.IntFlag{Name: "shift", Aliases: []string{"n"}, Usage: "months (or weeks) to move the anchor", Destination: &cmd.shift},
				&cli.BoolFlag{Name: "week", Aliases: []string{"w"}, Usage: "show one week", Destination: &cmd.week},
				&cli.BoolFlag{Name: "json", Usage: "print one JSON object per day", Destination: &cmd.json},
			},
			Action: cmd.run,
		},
		&cli.Command{
			Name:  "stats",
			Usage: "Count bookings by status",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "json", Usage: "print as JSON", Destination: &cmd.json},
			},
			Action: cmd.runStats,
		},
	)

	return app
}

func (cmd *CalCmd) run(ctx context.Context, c *cli.Command) error {
	b := cmd.flags.Board
	nav := b.Navigator()

	if cmd.date != "" {
		anchor, err := parseDue(cmd.date, b.Now())
		if err != nil {
			return err
		}
		nav.Set(anchor)
	}

	var days []calendar.Day
	if cmd.week {
		nav.ShiftWeeks(cmd.shift)
		days = b.Week(nav.Anchor())
	} else {
		nav.ShiftMonths(cmd.shift)
		days = b.Month(nav.Anchor())
	}

	w := c.Root().Writer
	if cmd.json {
		for _, d := range days {
			if err := iojson.WriteLine(w, d); err != nil {
				return err
			}
		}
		return nil
	}

	if cmd.week {
		_, _ = fmt.Fprintln(w, renderWeek(days))
	} else {
		_, _ = fmt.Fprintln(w, renderMonth(nav.Anchor(), days))
	}
	return nil
}

func (cmd *CalCmd) runStats(ctx context.Context, c *cli.Command) error {
	stats := cmd.flags.Board.Stats()
	if cmd.json {
		return iojson.WriteLine(c.Root().Writer, stats)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, renderStats(stats))
	return nil
}

// dayArg resolves an optional positional date, defaulting to today.
func dayArg(c *cli.Command, now time.Time) (datekey.Key, error) {
	if c.NArg() < 1 {
		return datekey.FromTime(now), nil
	}
	return parseDue(c.Args().Get(0), now)
}
