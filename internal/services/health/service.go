package health

import (
	"context"
	"sort"
	"time"
)

const checkTimeout = 2 * time.Second

// CheckFunc reports whether one dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Service runs the registered dependency checks.
type Service struct {
	checks map[string]CheckFunc
}

// NewService constructs a health service with no checks.
func NewService() *Service {
	return &Service{checks: map[string]CheckFunc{}}
}

// Register adds a named check. A nil fn is ignored.
func (s *Service) Register(name string, fn CheckFunc) {
	if fn == nil {
		return
	}
	s.checks[name] = fn
}

// Report is the health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Status runs every check with a short timeout.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true}
	if len(s.checks) == 0 {
		return report
	}
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report.Checks = make(map[string]string, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.checks[name](checkCtx)
		cancel()
		if err != nil {
			report.OK = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
