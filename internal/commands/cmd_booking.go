package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcal/internal/core/booking"
	"github.com/colonyops/taskcal/pkg/iojson"
)

type BookingCmd struct {
	flags *Flags

	addTitle  string
	addTime   string
	addStatus string
	addDate   string

	lsJSON bool
}

// NewBookingCmd creates a new booking command.
func NewBookingCmd(flags *Flags) *BookingCmd {
	return &BookingCmd{flags: flags}
}

// Register adds the booking command to the application.
func (cmd *BookingCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "booking",
		Aliases: []string{"bk"},
		Usage:   "Manage calendar bookings",
		Description: `Manual bookings sit on the calendar next to the bookings derived from
task due dates. Task-derived bookings follow their task's column and
cannot be approved or rejected directly.`,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a manual booking",
				UsageText: "taskcal booking add --title <title> [--date <date>] [--time <label>] [--status <s>]",
				Description: `Adds a booking on a day. Status defaults to pending and time to all-day.

Examples:
  taskcal booking add --title "Dentist" --date 2024-03-20 --time 09:30
  taskcal booking add --title "Offsite" --date "next friday" --status approved`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "booking title", Required: true, Destination: &cmd.addTitle},
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "day of the booking (defaults to today)", Destination: &cmd.addDate},
					&cli.StringFlag{Name: "time", Usage: "time label, such as 09:30", Value: booking.AllDay, Destination: &cmd.addTime},
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "pending, approved or rejected", Value: string(booking.StatusPending), Destination: &cmd.addStatus},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "status",
				Usage:     "Change the status of a manual booking",
				UsageText:     "taskcal booking status <id> <pending|approved|rejected>",
				ShellComplete: BookingIDCompleter(cmd.flags),
				Action:        cmd.runStatus,
			},
			{
				Name:      "ls",
				Usage:     "List the bookings on a day",
				UsageText: "taskcal booking ls [date] [--json]",
				Description: `Lists manual and task-derived bookings on a day, ordered by time label.

Examples:
  taskcal booking ls
  taskcal booking ls tomorrow --json`,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print one JSON object per line", Destination: &cmd.lsJSON},
				},
				Action: cmd.runList,
			},
		},
	})

	return app
}

func (cmd *BookingCmd) runAdd(ctx context.Context, c *cli.Command) error {
	b := cmd.flags.Board

	date := b.Today()
	if cmd.addDate != "" {
		var err error
		if date, err = parseDue(cmd.addDate, b.Now()); err != nil {
			return err
		}
	}

	status, err := booking.ParseStatus(cmd.addStatus)
	if err != nil {
		return err
	}

	added, err := b.AddBooking(ctx, date, booking.Draft{
		Title:  cmd.addTitle,
		Status: status,
		Time:   cmd.addTime,
	})
	if err != nil {
		return fmt.Errorf("add booking: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, added.ID)
	return nil
}

func (cmd *BookingCmd) runStatus(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: taskcal booking status <id> <pending|approved|rejected>")
	}

	status, err := booking.ParseStatus(c.Args().Get(1))
	if err != nil {
		return err
	}
	if err := cmd.flags.Board.UpdateBookingStatus(ctx, c.Args().Get(0), status); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, string(status))
	return nil
}

func (cmd *BookingCmd) runList(ctx context.Context, c *cli.Command) error {
	b := cmd.flags.Board

	day, err := dayArg(c, b.Now())
	if err != nil {
		return err
	}

	list := b.BookingsFor(day)
	w := c.Root().Writer

	if cmd.lsJSON {
		for _, bk := range list {
			if err := iojson.WriteLine(w, bk); err != nil {
				return err
			}
		}
		return nil
	}

	if len(list) == 0 {
		_, _ = fmt.Fprintf(w, "no bookings on %s\n", day)
		return nil
	}
	for _, bk := range list {
		_, _ = fmt.Fprintln(w, bookingLine(bk))
	}
	return nil
}
