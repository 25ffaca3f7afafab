package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/internal/core/filter"
	"github.com/colonyops/taskcal/internal/core/styles"
	"github.com/colonyops/taskcal/internal/core/task"
	"github.com/colonyops/taskcal/pkg/iojson"
)

type TaskCmd struct {
	flags *Flags

	// add flags
	addDesc string
	addDue  string

	// update flags
	updTitle    string
	updDesc     string
	updPriority string
	updDue      string
	updClearDue bool

	// ls flags
	lsSearch   string
	lsStatus   string
	lsPriority string
	lsDue      string
	lsJSON     bool
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags) *TaskCmd {
	return &TaskCmd{flags: flags}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "Manage board tasks",
		Description: `Task commands add, edit and move the cards on the board.

Every change rewrites the stored collection, so a failed write leaves the
board untouched.`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.updateCmd(),
			cmd.moveCmd(),
			cmd.rmCmd(),
			cmd.lsCmd(),
			cmd.showCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task to the todo column",
		UsageText: "taskcal task add <title> [--desc <text>] [--due <date>]",
		Description: `Adds a task with status todo and priority medium.

The due date accepts YYYY-MM-DD or a phrase such as "tomorrow" or
"next friday".

Examples:
  taskcal task add "Buy milk"
  taskcal task add "File taxes" --due 2024-04-15 --desc "Use the **new** form"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "desc",
				Aliases:     []string{"d"},
				Usage:       "description (markdown)",
				Destination: &cmd.addDesc,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date",
				Destination: &cmd.addDue,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) updateCmd() *cli.Command {
	return &cli.Command{
		Name:          "update",
		Usage:         "Edit a task",
		UsageText:     "taskcal task update <id> [--title <t>] [--desc <d>] [--priority <p>] [--due <date> | --clear-due]",
		ShellComplete: TaskIDCompleter(cmd.flags),
		Description: `Updates only the fields that are given.

Examples:
  taskcal task update task-1710496800000-abc123xyz --priority high
  taskcal task update task-1710496800000-abc123xyz --clear-due`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "new title", Destination: &cmd.updTitle},
			&cli.StringFlag{Name: "desc", Aliases: []string{"d"}, Usage: "new description", Destination: &cmd.updDesc},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "low, medium or high", Destination: &cmd.updPriority},
			&cli.StringFlag{Name: "due", Usage: "new due date", Destination: &cmd.updDue},
			&cli.BoolFlag{Name: "clear-due", Usage: "remove the due date", Destination: &cmd.updClearDue},
		},
		Action: cmd.runUpdate,
	}
}

func (cmd *TaskCmd) moveCmd() *cli.Command {
	return &cli.Command{
		Name:          "move",
		Aliases:       []string{"mv"},
		Usage:         "Move a task to another column",
		UsageText:     "taskcal task move <id> <todo|doing|done>",
		ShellComplete: TaskIDCompleter(cmd.flags),
		Action:        cmd.runMove,
	}
}

func (cmd *TaskCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Usage:         "Delete a task",
		UsageText:     "taskcal task rm <id>",
		ShellComplete: TaskIDCompleter(cmd.flags),
		Action:        cmd.runRemove,
	}
}

func (cmd *TaskCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List tasks",
		UsageText: "taskcal task ls [--search <term>] [--status <s>] [--priority <p>] [--due <window>] [--json]",
		Description: `Lists tasks in insertion order after filtering.

The due window is one of all, today, week (today through seven days out)
or overdue.

Examples:
  taskcal task ls --due overdue
  taskcal task ls --search milk --json`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "match title or description", Destination: &cmd.lsSearch},
			&cli.StringFlag{Name: "status", Usage: "todo, doing, done or all", Value: filter.All, Destination: &cmd.lsStatus},
			&cli.StringFlag{Name: "priority", Usage: "low, medium, high or all", Value: filter.All, Destination: &cmd.lsPriority},
			&cli.StringFlag{Name: "due", Usage: "all, today, week or overdue", Value: string(filter.DueAll), Destination: &cmd.lsDue},
			&cli.BoolFlag{Name: "json", Usage: "print one JSON object per line", Destination: &cmd.lsJSON},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:          "show",
		Usage:         "Show a task with its rendered description",
		UsageText:     "taskcal task show <id>",
		ShellComplete: TaskIDCompleter(cmd.flags),
		Action:        cmd.runShow,
	}
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: taskcal task add <title>")
	}

	due, err := parseDue(cmd.addDue, cmd.flags.Board.Now())
	if err != nil {
		return err
	}

	title := strings.Join(c.Args().Slice(), " ")
	t, err := cmd.flags.Board.AddTask(ctx, title, cmd.addDesc, due)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, t.ID)
	return nil
}

func (cmd *TaskCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: taskcal task update <id>")
	}

	var patch task.Patch
	if c.IsSet("title") {
		patch.Title = &cmd.updTitle
	}
	if c.IsSet("desc") {
		patch.Description = &cmd.updDesc
	}
	if c.IsSet("priority") {
		p, err := task.ParsePriority(cmd.updPriority)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	switch {
	case cmd.updClearDue:
		var none datekey.Key
		patch.DueDate = &none
	case c.IsSet("due"):
		due, err := parseDue(cmd.updDue, cmd.flags.Board.Now())
		if err != nil {
			return err
		}
		patch.DueDate = &due
	}

	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update: pass at least one of --title, --desc, --priority, --due, --clear-due")
	}

	if err := cmd.flags.Board.UpdateTask(ctx, c.Args().Get(0), patch); err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "updated")
	return nil
}

func (cmd *TaskCmd) runMove(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: taskcal task move <id> <todo|doing|done>")
	}

	status, err := task.ParseStatus(c.Args().Get(1))
	if err != nil {
		return err
	}
	if err := cmd.flags.Board.MoveTask(ctx, c.Args().Get(0), status); err != nil {
		return fmt.Errorf("move task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "moved")
	return nil
}

func (cmd *TaskCmd) runRemove(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: taskcal task rm <id>")
	}

	if err := cmd.flags.Board.DeleteTask(ctx, c.Args().Get(0)); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	criteria, err := buildCriteria(cmd.lsSearch, cmd.lsStatus, cmd.lsPriority, cmd.lsDue)
	if err != nil {
		return err
	}

	tasks := cmd.flags.Board.Filter(criteria)
	w := c.Root().Writer

	if cmd.lsJSON {
		for _, t := range tasks {
			if err := iojson.WriteLine(w, t); err != nil {
				return err
			}
		}
		return nil
	}

	today := cmd.flags.Board.Today()
	for _, t := range tasks {
		_, _ = fmt.Fprintln(w, taskLine(t, today))
	}
	return nil
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: taskcal task show <id>")
	}

	t, err := cmd.flags.Board.Task(c.Args().Get(0))
	if err != nil {
		return err
	}

	w := c.Root().Writer
	_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render(t.Title))
	_, _ = fmt.Fprintln(w, taskLine(t, cmd.flags.Board.Today()))

	if t.Description == "" {
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(t.Description)
	if err != nil {
		return fmt.Errorf("render description: %w", err)
	}

	_, _ = fmt.Fprint(w, out)
	return nil
}

// parseDue resolves a --due value. Empty means no due date.
func parseDue(s string, now time.Time) (datekey.Key, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return datekey.ParseHuman(s, now)
}

func buildCriteria(search, status, priority, due string) (filter.Criteria, error) {
	if status != "" && status != filter.All {
		if _, err := task.ParseStatus(status); err != nil {
			return filter.Criteria{}, err
		}
	}
	if priority != "" && priority != filter.All {
		if _, err := task.ParsePriority(priority); err != nil {
			return filter.Criteria{}, err
		}
	}
	window, err := filter.ParseDueWindow(due)
	if err != nil {
		return filter.Criteria{}, err
	}

	return filter.Criteria{
		Search:   search,
		Status:   status,
		Priority: priority,
		Due:      window,
	}, nil
}
