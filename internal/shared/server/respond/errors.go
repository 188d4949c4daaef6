package respond

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/apperr"
	"studyhub-backend/internal/pipeline"
	"studyhub-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// StageDetails names the pipeline step a processing error came from.
type StageDetails struct {
	Stage string `json:"stage"`
	Chunk int    `json:"chunk,omitempty"`
}

// FromError classifies err and sends the matching error response. Internal
// causes are logged, never echoed to the client. Pipeline failures also name
// the failing stage.
func FromError(c *gin.Context, err error) {
	cl := apperr.Classify(err)
	var details interface{}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		d := StageDetails{Stage: string(stageErr.Stage), Chunk: stageErr.Chunk}
		details = d
		if d.Chunk > 0 {
			cl.Message = fmt.Sprintf("%s (stage %s, chunk %d)", cl.Message, d.Stage, d.Chunk)
		} else {
			cl.Message = fmt.Sprintf("%s (stage %s)", cl.Message, d.Stage)
		}
	}
	if cl.Status >= 500 {
		telemetry.Error("http.error.cause", map[string]any{
			"request_id": c.GetString("requestId"),
			"code":       cl.Code,
			"error":      err,
		})
	}
	Error(c, cl.Status, cl.Code, cl.Message, details)
}
