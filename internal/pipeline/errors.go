package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentTooShort is returned when extracted text is below the minimum length.
	ErrDocumentTooShort = errors.New("document too short")
	// ErrInvalidOptions is returned for out-of-range counts or unknown models.
	ErrInvalidOptions = errors.New("invalid processing options")
)

// Stage names the step that failed.
type Stage string

const (
	StageValidate   Stage = "validate"
	StageExtract    Stage = "extract"
	StageAnalyze    Stage = "analyze"
	StageSummarize  Stage = "summarize"
	StageFlashcards Stage = "flashcards"
	StageQuiz       Stage = "quiz"
	StageMerge      Stage = "merge"
)

// StageError records where a run failed. It unwraps to the original error so
// callers classify by kind with errors.Is / errors.As.
type StageError struct {
	Stage Stage
	Chunk int // 1-based; 0 when not chunk-specific
	Err   error
}

func (e *StageError) Error() string {
	if e.Chunk > 0 {
		return fmt.Sprintf("%s failed on chunk %d: %v", e.Stage, e.Chunk, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}
