package jobs

import (
	"math"
	"sync"
	"time"
)

const (
	defaultPollWindow = time.Second
	// pruneEvery bounds how many Allow calls pass between sweeps of old keys.
	pruneEvery = 1024
)

// pollLimiter admits at most one status poll per user and job per window.
type pollLimiter struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	calls   int
	now     func() time.Time
	window  time.Duration
}

func newPollLimiter(window time.Duration, now func() time.Time) *pollLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = defaultPollWindow
	}
	return &pollLimiter{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

func (l *pollLimiter) Allow(userID, jobID string) bool {
	if l == nil {
		return true
	}
	key := userID + "|" + jobID
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%pruneEvery == 0 {
		for k, t := range l.lastHit {
			if now.Sub(t) >= l.window {
				delete(l.lastHit, k)
			}
		}
	}

	if last, ok := l.lastHit[key]; ok && now.Sub(last) < l.window {
		return false
	}
	l.lastHit[key] = now
	return true
}

func (l *pollLimiter) RetryAfterSeconds() int {
	window := defaultPollWindow
	if l != nil {
		window = l.window
	}
	return int(math.Max(1, math.Ceil(window.Seconds())))
}
