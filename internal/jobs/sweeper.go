package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"studyhub-backend/internal/apperr"
	"studyhub-backend/internal/shared/telemetry"
)

// Sweeper periodically fails jobs that stopped making progress, e.g. after
// a worker crash.
type Sweeper struct {
	store      Store
	staleAfter time.Duration
	cron       *cron.Cron
	now        func() time.Time
}

// NewSweeper schedules Sweep on the given cron spec ("@every 5m", "*/10 * * * *").
func NewSweeper(store Store, staleAfter time.Duration, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		store:      store,
		staleAfter: staleAfter,
		cron:       cron.New(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			telemetry.Error("jobs.sweep.failed", map[string]any{"error": err})
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule; the returned context is done once a running sweep ends.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep marks stale non-terminal jobs failed and returns how many it changed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-s.staleAfter)
	swept := 0
	for _, job := range active {
		if job.UpdatedAt.After(cutoff) {
			continue
		}
		_, err := s.store.Update(ctx, job.ID, func(j *Job) error {
			if j.Status.Terminal() || j.UpdatedAt.After(cutoff) {
				return errSkip
			}
			now := s.now()
			j.Status = StatusFailed
			j.ErrorCode = apperr.CodeTimeout
			j.ErrorMessage = "Processing stalled"
			j.UpdatedAt = now
			j.CompletedAt = &now
			return nil
		})
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			telemetry.Warn("jobs.sweep.update_failed", map[string]any{"job_id": job.ID, "error": err})
			continue
		}
		swept++
		telemetry.Warn("jobs.swept", map[string]any{
			"job_id":     job.ID,
			"status":     string(job.Status),
			"updated_at": job.UpdatedAt,
		})
	}
	return swept, nil
}

var errSkip = errors.New("job changed")
