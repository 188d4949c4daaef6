package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
)

func fastRetrying(next Completer, retries uint) *RetryingCompleter {
	r := NewRetryingCompleter(next, retries)
	r.newBackOff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	return r
}

func TestRetryRecoversFromTransientAPIError(t *testing.T) {
	fake := &scriptedCompleter{replies: []reply{
		{err: &APIError{Operation: OpAnalyze, Status: 503, Message: "overloaded"}},
		{err: &APIError{Operation: OpAnalyze, Status: 429, Message: "slow down"}},
		{raw: `{"ok":true}`},
	}}
	out, err := fastRetrying(fake, 3).Complete(context.Background(), Request{Operation: OpAnalyze})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected output %q", out)
	}
	if fake.calls() != 3 {
		t.Fatalf("expected 3 calls, got %d", fake.calls())
	}
}

func TestRetryIsBounded(t *testing.T) {
	fake := &scriptedCompleter{replies: []reply{
		{err: &APIError{Operation: OpQuiz, Status: 500, Message: "boom"}},
	}}
	_, err := fastRetrying(fake, 2).Complete(context.Background(), Request{Operation: OpQuiz})
	if !IsAPIError(err) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if fake.calls() != 3 {
		t.Fatalf("expected 3 attempts, got %d", fake.calls())
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "unauthorized", err: &APIError{Operation: OpAnalyze, Status: 401, Message: "bad key"}},
		{name: "not configured", err: ErrNotConfigured},
		{name: "schema", err: &SchemaError{Operation: OpAnalyze, Reason: "invalid JSON"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fake := &scriptedCompleter{replies: []reply{{err: tt.err}}}
			_, err := fastRetrying(fake, 3).Complete(context.Background(), Request{Operation: OpAnalyze})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				t.Fatalf("permanent wrapper leaked: %v", err)
			}
			if fake.calls() != 1 {
				t.Fatalf("expected a single attempt, got %d", fake.calls())
			}
		})
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := &scriptedCompleter{replies: []reply{{err: &APIError{Operation: OpAnalyze, Err: context.Canceled}}}}
	_, err := fastRetrying(fake, 3).Complete(ctx, Request{Operation: OpAnalyze})
	if err == nil {
		t.Fatalf("expected error")
	}
	if fake.calls() > 1 {
		t.Fatalf("expected no retries, got %d calls", fake.calls())
	}
}

func TestAPIErrorTemporary(t *testing.T) {
	cases := map[int]bool{0: true, 400: false, 401: false, 408: true, 429: true, 500: true, 502: true}
	for status, want := range cases {
		if got := (&APIError{Status: status}).Temporary(); got != want {
			t.Fatalf("status %d: expected %v, got %v", status, want, got)
		}
	}
}
