package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcal/internal/board"
	"github.com/colonyops/taskcal/internal/board/sweep"
	"github.com/colonyops/taskcal/internal/core/booking"
	"github.com/colonyops/taskcal/internal/core/kv"
	"github.com/colonyops/taskcal/internal/store/jsonfile"
	"github.com/colonyops/taskcal/pkg/iojson"
)

// Snapshot is the summary line watch prints after every reload.
type Snapshot struct {
	Time     time.Time     `json:"time"`
	Source   string        `json:"source"`
	Tasks    int           `json:"tasks"`
	Overdue  int           `json:"overdue"`
	Bookings booking.Stats `json:"bookings"`
}

type WatchCmd struct {
	flags *Flags
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Follow changes to the board",
		UsageText: "taskcal watch",
		Description: `Reloads the board whenever another process changes it and prints one
JSON summary per reload. Expired sign-ins are swept while watching.

With the jsonfile driver changes are picked up from the data file as they
happen. With the sqlite driver the board is polled every sweep interval.

Stop with Ctrl-C.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := cmd.flags.Config
	w := c.Root().Writer

	if sw, ok := cmd.flags.Store.(kv.Sweeper); ok {
		go sweep.Start(ctx, sw, cfg.Watch.SweepInterval)
	}

	if cmd.flags.Files == nil {
		return cmd.poll(ctx, w, cfg.Watch.SweepInterval)
	}
	return cmd.follow(ctx, w, cfg.Watch.Debounce)
}

// follow reloads on every rewrite of the jsonfile document.
func (cmd *WatchCmd) follow(ctx context.Context, w io.Writer, debounce time.Duration) error {
	files := cmd.flags.Files
	dir, name := filepath.Dir(files.Path()), filepath.Base(files.Path())

	watcher, err := jsonfile.NewWatcher(dir, debounce)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer func() { _ = watcher.Close() }()

	events, err := watcher.Watch(ctx, name)
	if err != nil {
		return fmt.Errorf("watch %s: %w", name, err)
	}

	if err := writeSnapshot(w, cmd.flags.Board, "start"); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := files.Reload(); err != nil {
				log.Warn().Ctx(ctx).Err(err).Str("path", ev.Path).Msg("reload data file")
				continue
			}
			if err := cmd.reload(ctx, w, ev.Path); err != nil {
				return err
			}
		}
	}
}

// poll reloads on a fixed interval.
func (cmd *WatchCmd) poll(ctx context.Context, w io.Writer, interval time.Duration) error {
	if err := writeSnapshot(w, cmd.flags.Board, "start"); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := cmd.reload(ctx, w, "poll"); err != nil {
				return err
			}
		}
	}
}

func (cmd *WatchCmd) reload(ctx context.Context, w io.Writer, source string) error {
	if err := cmd.flags.Board.Reload(ctx); err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("reload board")
		return nil
	}
	return writeSnapshot(w, cmd.flags.Board, source)
}

func writeSnapshot(w io.Writer, b *board.Board, source string) error {
	return iojson.WriteLine(w, Snapshot{
		Time:     time.Now(),
		Source:   source,
		Tasks:    len(b.Tasks()),
		Overdue:  b.OverdueCount(),
		Bookings: b.Stats(),
	})
}
