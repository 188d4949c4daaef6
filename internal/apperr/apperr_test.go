package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/llm"
	"studyhub-backend/internal/pipeline"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unsupported", fmt.Errorf("%w: image/png", extract.ErrUnsupportedFormat), http.StatusUnsupportedMediaType, CodeUnsupportedFormat},
		{"too large", &pipeline.StageError{Stage: pipeline.StageValidate, Err: extract.ErrFileTooLarge}, http.StatusRequestEntityTooLarge, CodeFileTooLarge},
		{"extraction", fmt.Errorf("%w: broken pdf", extract.ErrExtraction), http.StatusUnprocessableEntity, CodeExtractionFailed},
		{"too short", &pipeline.StageError{Stage: pipeline.StageExtract, Err: pipeline.ErrDocumentTooShort}, http.StatusUnprocessableEntity, CodeDocumentTooShort},
		{"options", fmt.Errorf("%w: bad count", pipeline.ErrInvalidOptions), http.StatusBadRequest, CodeValidation},
		{"not configured", llm.ErrNotConfigured, http.StatusServiceUnavailable, CodeNotConfigured},
		{"schema", &pipeline.StageError{Stage: pipeline.StageQuiz, Chunk: 2, Err: &llm.SchemaError{Operation: llm.OpQuiz, Reason: "x"}}, http.StatusBadGateway, CodeGenerationSchema},
		{"api", &llm.APIError{Status: 500}, http.StatusBadGateway, CodeGenerationFailed},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout},
		{"not found", fmt.Errorf("subject %w", ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"storage", fmt.Errorf("%w: insert", ErrStorage), http.StatusInternalServerError, CodeStorage},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Status != tt.status || got.Code != tt.code {
				t.Fatalf("Classify = %d/%s, want %d/%s", got.Status, got.Code, tt.status, tt.code)
			}
			if got.Message == "" {
				t.Fatalf("expected message")
			}
		})
	}
}
