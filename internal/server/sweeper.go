package server

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// SweepInSchedule fires the daily sweep at the configured HH:MM UTC until
// ctx is cancelled. The schedule string doubles as the trigger identity
// the engine checks, so a stray invocation with the wrong trigger is a
// no-op inside the engine as well.
func (s Server) SweepInSchedule(ctx context.Context, schedule string) {
	for {
		next, err := nextSweepTime(time.Now().UTC(), schedule)
		if err != nil {
			s.Logger.Errorf("SweepInSchedule: Invalid sweep schedule: %s, err: %v", schedule, err)
			return
		}
		s.Logger.Infof("SweepInSchedule: Next sweep at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := s.Engine.Sweep(ctx, schedule); err != nil {
				s.Logger.Errorf("SweepInSchedule: Sweep failed, err: %v", err)
			}
		}
	}
}

// nextSweepTime returns the first instant after now matching the "HH:MM"
// UTC schedule.
func nextSweepTime(now time.Time, schedule string) (time.Time, error) {
	at, err := time.Parse("15:04", schedule)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "schedule must be HH:MM, got: %s", schedule)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next, nil
}
