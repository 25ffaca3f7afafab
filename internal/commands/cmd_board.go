package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcal/internal/board"
	"github.com/colonyops/taskcal/internal/core/filter"
	"github.com/colonyops/taskcal/pkg/iojson"
)

type BoardCmd struct {
	flags *Flags

	search   string
	priority string
	due      string
	json     bool
}

// NewBoardCmd creates a new board command.
func NewBoardCmd(flags *Flags) *BoardCmd {
	return &BoardCmd{flags: flags}
}

// Register adds the board command to the application.
func (cmd *BoardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "board",
		Aliases:   []string{"b"},
		Usage:     "Show the Kanban board",
		UsageText: "taskcal board [--search <term>] [--priority <p>] [--due <window>] [--json]",
		Description: `Shows the todo, doing and done columns after filtering, with the
number of open tasks past their due date.

Examples:
  taskcal board
  taskcal board --priority high --due week`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "match title or description", Destination: &cmd.search},
			&cli.StringFlag{Name: "priority", Usage: "low, medium, high or all", Value: filter.All, Destination: &cmd.priority},
			&cli.StringFlag{Name: "due", Usage: "all, today, week or overdue", Value: string(filter.DueAll), Destination: &cmd.due},
			&cli.BoolFlag{Name: "json", Usage: "print one JSON object per column", Destination: &cmd.json},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BoardCmd) run(ctx context.Context, c *cli.Command) error {
	criteria, err := buildCriteria(cmd.search, filter.All, cmd.priority, cmd.due)
	if err != nil {
		return err
	}

	b := cmd.flags.Board
	cols := b.Columns(criteria)
	w := c.Root().Writer

	if cmd.json {
		return writeColumns(w, cols)
	}

	_, _ = fmt.Fprintln(w, renderBoard(cols, b.Today(), b.OverdueCount()))
	return nil
}

func writeColumns(w io.Writer, cols []board.Column) error {
	for _, col := range cols {
		if err := iojson.WriteLine(w, col); err != nil {
			return err
		}
	}
	return nil
}
