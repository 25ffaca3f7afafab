package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies the user and command from the event's context onto
// the log event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if user := GetUser(ctx); user != "" {
		e.Str("user", user)
	}

	if cmd := GetCommand(ctx); cmd != "" {
		e.Str("command", cmd)
	}
}
