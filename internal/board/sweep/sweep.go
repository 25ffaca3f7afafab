// Package sweep periodically purges expired key-value entries, such as a
// sign-in whose session TTL has passed.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/taskcal/internal/core/kv"
)

// Start sweeps s every interval until ctx is cancelled. It sweeps once
// immediately so a long-idle store is cleaned before the first tick.
func Start(ctx context.Context, s kv.Sweeper, interval time.Duration) {
	sweepOnce(ctx, s)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, s)
		}
	}
}

func sweepOnce(ctx context.Context, s kv.Sweeper) {
	if err := s.SweepExpired(ctx); err != nil {
		log.Debug().Err(err).Msg("kv sweep failed")
	}
}
