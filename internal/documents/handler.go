package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/apperr"
	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/shared/server/middleware"
	"studyhub-backend/internal/shared/server/respond"
)

// multipartOverhead is allowed on top of the file size limit for form fields
// and boundaries.
const multipartOverhead = 1 << 20

// AsyncRunner queues a prepared request for background processing and
// returns the job ID.
type AsyncRunner interface {
	Enqueue(ctx context.Context, req ProcessRequest) (string, error)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	Async          AsyncRunner // optional
	AlwaysAsync    bool
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, async AsyncRunner, alwaysAsync bool, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = extract.DefaultMaxBytes
	}
	return &Handler{Svc: svc, Async: async, AlwaysAsync: alwaysAsync && async != nil, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/stats", h.stats)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.FromError(c, extract.ErrFileTooLarge)
			return
		}
		respond.Error(c, http.StatusBadRequest, apperr.CodeValidation, "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, apperr.CodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, apperr.CodeValidation, "unable to read file", nil)
		return
	}
	if int64(len(data)) > h.MaxUploadBytes {
		respond.FromError(c, fmt.Errorf("%w: limit is %d bytes", extract.ErrFileTooLarge, h.MaxUploadBytes))
		return
	}

	req := ProcessRequest{
		UserID:      userID,
		SubjectID:   strings.TrimSpace(c.PostForm("subjectId")),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Model:       strings.TrimSpace(c.PostForm("model")),
		Data:        data,
	}
	if req.FlashcardCount, err = formInt(c, "flashcardCount"); err != nil {
		respond.FromError(c, err)
		return
	}
	if req.QuizCount, err = formInt(c, "quizCount"); err != nil {
		respond.FromError(c, err)
		return
	}
	async, _ := strconv.ParseBool(c.PostForm("async"))
	async = (async || h.AlwaysAsync) && h.Async != nil

	ctx := c.Request.Context()
	req, err = h.Svc.Prepare(ctx, req)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	if async {
		jobID, err := h.Async.Enqueue(ctx, req)
		if err != nil {
			respond.FromError(c, err)
			return
		}
		c.Set(middleware.JobIDKey, jobID)
		respond.JSON(c, http.StatusAccepted, AcceptedResponse{JobID: jobID, Status: "queued"})
		return
	}

	res, err := h.Svc.ProcessAndSave(ctx, req, nil)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, res.Document.ID)
	respond.JSON(c, http.StatusCreated, toProcessResponse(res))
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), strings.TrimSpace(c.Query("subjectId")))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	c.Set(middleware.DocumentIDKey, c.Param("id"))
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toDetailResponse(doc))
}

func (h *Handler) stats(c *gin.Context) {
	c.Set(middleware.DocumentIDKey, c.Param("id"))
	st, err := h.Svc.Stats(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, StatsResponse{
		Document:       toResponse(st.Document),
		FlashcardCount: st.FlashcardCount,
		QuizCount:      st.QuizCount,
	})
}

func (h *Handler) delete(c *gin.Context) {
	c.Set(middleware.DocumentIDKey, c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		respond.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func formInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidInput, name)
	}
	return n, nil
}
