package jobs

import (
	"context"
	"testing"
	"time"

	"studyhub-backend/internal/apperr"
)

func TestSweepFailsStaleJobs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	_ = store.Create(ctx, Job{ID: "stale", Status: StatusProcessing, UpdatedAt: now.Add(-time.Hour)})
	_ = store.Create(ctx, Job{ID: "fresh", Status: StatusProcessing, UpdatedAt: now.Add(-time.Minute)})
	_ = store.Create(ctx, Job{ID: "done", Status: StatusCompleted, UpdatedAt: now.Add(-2 * time.Hour)})

	s, err := NewSweeper(store, 30*time.Minute, "@every 5m")
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	s.now = func() time.Time { return now }

	n, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept job, got %d", n)
	}
	stale, _ := store.Get(ctx, "stale")
	if stale.Status != StatusFailed || stale.ErrorCode != apperr.CodeTimeout {
		t.Fatalf("unexpected stale job %+v", stale)
	}
	fresh, _ := store.Get(ctx, "fresh")
	if fresh.Status != StatusProcessing {
		t.Fatalf("fresh job must be untouched")
	}
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	if _, err := NewSweeper(NewMemoryStore(), time.Minute, "whenever"); err == nil {
		t.Fatalf("expected schedule error")
	}
}
