package study

import (
	"errors"
	"fmt"
	"strings"
)

// Label returns the option text for a correct-answer label, and whether the label is valid.
func (o Options) Label(label string) (string, bool) {
	switch label {
	case "A":
		return o.A, true
	case "B":
		return o.B, true
	case "C":
		return o.C, true
	case "D":
		return o.D, true
	default:
		return "", false
	}
}

// ValidLevel reports whether level names a known difficulty, ignoring case.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Validate checks the fields an analysis must carry.
func (a Analysis) Validate() error {
	if strings.TrimSpace(a.Subject) == "" {
		return errors.New("subject is required")
	}
	if strings.TrimSpace(a.Level) == "" {
		return errors.New("level is required")
	}
	if !ValidLevel(a.Level) {
		return fmt.Errorf("level %q must be one of %s, %s, %s", a.Level, LevelBeginner, LevelIntermediate, LevelAdvanced)
	}
	if len(a.KeyConcepts) == 0 {
		return errors.New("keyConcepts must not be empty")
	}
	for i, c := range a.KeyConcepts {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("keyConcepts[%d].name is required", i)
		}
	}
	return nil
}

// Validate checks the fields a summary must carry.
func (s Summary) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("title is required")
	}
	if len(s.Sections) == 0 {
		return errors.New("sections must not be empty")
	}
	return nil
}

// Validate enforces non-empty question and answer.
func (f Flashcard) Validate() error {
	if strings.TrimSpace(f.Question) == "" {
		return errors.New("question is required")
	}
	if strings.TrimSpace(f.Answer) == "" {
		return errors.New("answer is required")
	}
	return nil
}

// Validate enforces four options and a correct label that references one of them.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question is required")
	}
	for _, label := range []string{"A", "B", "C", "D"} {
		text, _ := q.Options.Label(label)
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("option %s is required", label)
		}
	}
	if _, ok := q.Options.Label(q.CorrectAnswer); !ok {
		return fmt.Errorf("correctAnswer %q must be one of A, B, C, D", q.CorrectAnswer)
	}
	return nil
}
