package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests task ids as the
// first positional argument.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(ctx, cmd) || flags.Board == nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range flags.Board.Tasks() {
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ID, t.Title)
		}
	}
}

// BookingIDCompleter suggests the ids of manual bookings. Task-derived
// bookings are left out since their status cannot be changed directly.
func BookingIDCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(ctx, cmd) || flags.Board == nil {
			return
		}

		w := cmd.Root().Writer
		view := flags.Board.View()
		for _, key := range view.Keys() {
			for _, b := range view[key] {
				if b.IsVirtual() {
					continue
				}
				_, _ = fmt.Fprintf(w, "%s:%s %s\n", b.ID, key, b.Title)
			}
		}
	}
}

// completingFlag delegates to the default flag completion when the user is
// typing a flag.
func completingFlag(ctx context.Context, cmd *cli.Command) bool {
	if args := cmd.Args(); args.Present() {
		last := args.Slice()[args.Len()-1]
		if len(last) > 0 && last[0] == '-' {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return true
		}
	}
	return false
}
