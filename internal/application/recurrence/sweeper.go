package recurrence

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultSweepBatch = 100

// Sweeper periodically advances every due donation once per tick.
type Sweeper struct {
	Service  *Service
	Interval time.Duration
	Batch    int
}

// Run blocks until ctx is cancelled. A non-positive Interval returns immediately.
func (w *Sweeper) Run(ctx context.Context) {
	if w.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	log.Info().Dur("interval", w.Interval).Msg("recurrence sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("recurrence sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx, w.Service.now()); err != nil {
				log.Error().Err(err).Msg("recurrence sweep failed")
			}
		}
	}
}

// RunOnce advances each donation due at now by one occurrence and returns how many
// successors were created. A failing donation is logged and skipped.
func (w *Sweeper) RunOnce(ctx context.Context, now time.Time) (int, error) {
	batch := w.Batch
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	ids, err := w.Service.DueDonationIDs(ctx, now, batch)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}
		successor, err := w.Service.AdvanceIfDue(ctx, id, now)
		if err != nil {
			log.Error().Err(err).Uint("donation_id", id).Msg("recurrence: advance failed")
			continue
		}
		if successor != nil {
			created++
		}
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("recurrence sweep complete")
	}
	return created, nil
}
