package quizzes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/shared/server/middleware"
	"studyhub-backend/internal/shared/server/respond"
	"studyhub-backend/internal/study"
)

// QuestionResponse is the outward-facing representation of a quiz question.
type QuestionResponse struct {
	ID            string        `json:"id"`
	SubjectID     string        `json:"subjectId,omitempty"`
	DocumentID    string        `json:"documentId,omitempty"`
	Question      string        `json:"question"`
	Options       study.Options `json:"options"`
	CorrectAnswer string        `json:"correctAnswer"`
	Explanation   string        `json:"explanation,omitempty"`
	Difficulty    string        `json:"difficulty,omitempty"`
	Category      string        `json:"category,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Handler serves quiz question browsing endpoints.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches quiz routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/subjects/:id/quiz-questions", h.bySubject)
	rg.GET("/documents/:id/quiz-questions", h.byDocument)
}

func (h *Handler) bySubject(c *gin.Context) {
	qs, err := h.Repo.ListBySubject(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	h.write(c, qs, err)
}

func (h *Handler) byDocument(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	qs, err := h.Repo.ListByDocument(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	h.write(c, qs, err)
}

func (h *Handler) write(c *gin.Context, qs []Question, err error) {
	if err != nil {
		respond.FromError(c, err)
		return
	}
	resp := make([]QuestionResponse, 0, len(qs))
	for _, q := range qs {
		resp = append(resp, QuestionResponse{
			ID:            q.ID,
			SubjectID:     q.SubjectID,
			DocumentID:    q.DocumentID,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Difficulty:    q.Difficulty,
			Category:      q.Category,
			CreatedAt:     q.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}
