package llm

import (
	"context"
	"sync"
)

type scriptedCompleter struct {
	mu       sync.Mutex
	ready    error
	replies  []reply
	requests []Request
}

type reply struct {
	raw string
	err error
}

func (s *scriptedCompleter) Ready() error {
	return s.ready
}

func (s *scriptedCompleter) Complete(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return "", &APIError{Operation: req.Operation, Status: 500, Message: "no scripted reply"}
	}
	next := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return next.raw, next.err
}

func (s *scriptedCompleter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
