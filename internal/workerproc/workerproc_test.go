package workerproc

import (
	"context"
	"errors"
	"testing"

	"studyhub-backend/internal/queue"
)

type runnerFunc func(ctx context.Context, jobID string) error

func (f runnerFunc) Run(ctx context.Context, jobID string) error { return f(ctx, jobID) }

func TestParseMessage(t *testing.T) {
	valid, _ := queue.EncodeMessage(queue.Message{JobID: "job-1", RequestID: "req-1"})
	tests := []struct {
		name          string
		body          string
		unrecoverable bool
		wantErr       bool
	}{
		{"valid", string(valid), false, false},
		{"empty", "   ", true, true},
		{"garbage", "{oops", true, true},
		{"missing id", `{"requestId":"r"}`, true, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			msg, meta, err := ParseMessage(tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if Unrecoverable(err) != tt.unrecoverable {
				t.Fatalf("Unrecoverable = %v", Unrecoverable(err))
			}
			if !tt.wantErr && msg.JobID != "job-1" {
				t.Fatalf("unexpected message %+v", msg)
			}
			if meta.BodyLen != len(tt.body) {
				t.Fatalf("unexpected meta %+v", meta)
			}
		})
	}
}

func TestHandleMessageWrapsRunnerError(t *testing.T) {
	boom := errors.New("boom")
	var gotID string
	runner := runnerFunc(func(ctx context.Context, jobID string) error {
		gotID = jobID
		return boom
	})
	err := HandleMessage(context.Background(), runner, queue.Message{JobID: "job-9", RequestID: "req-9"})
	var procErr ErrProcess
	if !errors.As(err, &procErr) || procErr.JobID != "job-9" || !errors.Is(err, boom) {
		t.Fatalf("unexpected error %v", err)
	}
	if gotID != "job-9" {
		t.Fatalf("runner got %q", gotID)
	}
	if Unrecoverable(err) {
		t.Fatalf("processing errors are not unrecoverable")
	}
}
