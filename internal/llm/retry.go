package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"studyhub-backend/internal/shared/metrics"
	"studyhub-backend/internal/shared/telemetry"
)

// RetryingCompleter retries transient APIErrors with exponential backoff.
// Schema problems, missing credentials and cancellations are never retried.
type RetryingCompleter struct {
	next       Completer
	maxTries   uint
	newBackOff func() backoff.BackOff
}

// NewRetryingCompleter allows up to maxRetries extra attempts per call.
func NewRetryingCompleter(next Completer, maxRetries uint) *RetryingCompleter {
	return &RetryingCompleter{
		next:     next,
		maxTries: maxRetries + 1,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.Multiplier = 2
			b.MaxInterval = 8 * time.Second
			return b
		},
	}
}

// Ready delegates to the wrapped completer.
func (r *RetryingCompleter) Ready() error {
	return r.next.Ready()
}

// Complete calls the wrapped completer until it succeeds, fails permanently,
// runs out of attempts or ctx ends.
func (r *RetryingCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if r.maxTries <= 1 {
		return r.next.Complete(ctx, req)
	}

	attempt := 0
	out, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		raw, err := r.next.Complete(ctx, req)
		if err == nil {
			return raw, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Temporary() && ctx.Err() == nil {
			return "", err
		}
		return "", backoff.Permanent(err)
	},
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(r.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			metrics.IncGenerationRetry()
			telemetry.Warn("llm.retry", map[string]any{
				"operation": string(req.Operation),
				"attempt":   attempt,
				"wait_ms":   wait.Milliseconds(),
				"error":     err.Error(),
			})
		}),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return out, err
}

var _ Completer = (*RetryingCompleter)(nil)
