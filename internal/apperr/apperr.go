// Package apperr maps domain errors to stable API error codes.
package apperr

import (
	"context"
	"errors"
	"net/http"

	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/llm"
	"studyhub-backend/internal/pipeline"
)

const (
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeFileTooLarge      = "FILE_TOO_LARGE"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeDocumentTooShort  = "DOCUMENT_TOO_SHORT"
	CodeNotConfigured     = "NOT_CONFIGURED"
	CodeGenerationFailed  = "GENERATION_FAILED"
	CodeGenerationSchema  = "GENERATION_SCHEMA"
	CodeTimeout           = "TIMEOUT"
	CodeStorage           = "STORAGE_ERROR"
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

var (
	// ErrNotFound is wrapped by every package-level not-found sentinel.
	ErrNotFound = errors.New("not found")
	// ErrValidation is wrapped by request validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrStorage is wrapped by persistence and object store failures.
	ErrStorage = errors.New("storage failure")
)

// Classified is the outward view of an error.
type Classified struct {
	Status  int
	Code    string
	Message string
}

// Classify maps err to an HTTP status, code and client-safe message.
func Classify(err error) Classified {
	var apiErr *llm.APIError
	var schemaErr *llm.SchemaError
	switch {
	case err == nil:
		return Classified{Status: http.StatusOK}
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return Classified{http.StatusUnsupportedMediaType, CodeUnsupportedFormat, "Unsupported file format"}
	case errors.Is(err, extract.ErrFileTooLarge):
		return Classified{http.StatusRequestEntityTooLarge, CodeFileTooLarge, "File is too large"}
	case errors.Is(err, extract.ErrExtraction):
		return Classified{http.StatusUnprocessableEntity, CodeExtractionFailed, "Could not extract text from the file"}
	case errors.Is(err, pipeline.ErrDocumentTooShort):
		return Classified{http.StatusUnprocessableEntity, CodeDocumentTooShort, "Document does not contain enough text"}
	case errors.Is(err, pipeline.ErrInvalidOptions), errors.Is(err, ErrValidation):
		return Classified{http.StatusBadRequest, CodeValidation, err.Error()}
	case errors.Is(err, llm.ErrNotConfigured):
		return Classified{http.StatusServiceUnavailable, CodeNotConfigured, "Generation service is not configured"}
	case errors.As(err, &schemaErr):
		return Classified{http.StatusBadGateway, CodeGenerationSchema, "Generation service returned an invalid response"}
	case errors.As(err, &apiErr):
		return Classified{http.StatusBadGateway, CodeGenerationFailed, "Generation service request failed"}
	case errors.Is(err, context.DeadlineExceeded):
		return Classified{http.StatusGatewayTimeout, CodeTimeout, "Processing timed out"}
	case errors.Is(err, ErrNotFound):
		return Classified{http.StatusNotFound, CodeNotFound, "Resource not found"}
	case errors.Is(err, ErrStorage):
		return Classified{http.StatusInternalServerError, CodeStorage, "Failed to store results"}
	default:
		return Classified{http.StatusInternalServerError, CodeInternal, "Unexpected server error"}
	}
}
