package jobs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/shared/server/middleware"
	"studyhub-backend/internal/shared/server/respond"
)

// JobResponse is the polling view of a job.
type JobResponse struct {
	JobID           string     `json:"jobId"`
	Status          Status     `json:"status"`
	Stage           string     `json:"stage,omitempty"`
	Chunk           int        `json:"chunk,omitempty"`
	TotalChunks     int        `json:"totalChunks,omitempty"`
	FileName        string     `json:"fileName"`
	DocumentID      string     `json:"documentId,omitempty"`
	FlashcardsCount int        `json:"flashcardsCount,omitempty"`
	QuizCount       int        `json:"quizCount,omitempty"`
	Warnings        []string   `json:"warnings,omitempty"`
	Error           *JobError  `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// JobError describes why a job failed.
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// Handler serves job polling.
type Handler struct {
	Svc     *Service
	limiter *pollLimiter
}

// NewHandler constructs a Handler with a per-user poll limit.
func NewHandler(svc *Service, pollWindow time.Duration) *Handler {
	return &Handler{Svc: svc, limiter: newPollLimiter(pollWindow, nil)}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/:id", h.get)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	jobID := c.Param("id")
	c.Set(middleware.JobIDKey, jobID)

	if !h.limiter.Allow(userID, jobID) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Polling too frequently", nil)
		return
	}

	job, err := h.Svc.Get(c.Request.Context(), userID, jobID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	if job.DocumentID != "" {
		c.Set(middleware.DocumentIDKey, job.DocumentID)
	}
	respond.OK(c, toResponse(job))
}

func toResponse(job Job) JobResponse {
	resp := JobResponse{
		JobID:           job.ID,
		Status:          job.Status,
		Stage:           job.Stage,
		Chunk:           job.Chunk,
		TotalChunks:     job.TotalChunks,
		FileName:        job.Request.FileName,
		DocumentID:      job.DocumentID,
		FlashcardsCount: job.FlashcardsCount,
		QuizCount:       job.QuizCount,
		Warnings:        job.Warnings,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
		CompletedAt:     job.CompletedAt,
	}
	if job.Status == StatusFailed {
		resp.Error = &JobError{Code: job.ErrorCode, Message: job.ErrorMessage, Stage: job.FailedStage}
	}
	return resp
}
