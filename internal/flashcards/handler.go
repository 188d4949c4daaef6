package flashcards

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/shared/server/middleware"
	"studyhub-backend/internal/shared/server/respond"
)

// FlashcardResponse is the outward-facing representation of a flashcard.
type FlashcardResponse struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"subjectId,omitempty"`
	DocumentID string    `json:"documentId,omitempty"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Category   string    `json:"category,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	Concept    string    `json:"concept,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Handler serves flashcard browsing endpoints.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches flashcard routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/subjects/:id/flashcards", h.bySubject)
	rg.GET("/documents/:id/flashcards", h.byDocument)
}

func (h *Handler) bySubject(c *gin.Context) {
	cards, err := h.Repo.ListBySubject(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	h.write(c, cards, err)
}

func (h *Handler) byDocument(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	cards, err := h.Repo.ListByDocument(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	h.write(c, cards, err)
}

func (h *Handler) write(c *gin.Context, cards []Flashcard, err error) {
	if err != nil {
		respond.FromError(c, err)
		return
	}
	resp := make([]FlashcardResponse, 0, len(cards))
	for _, f := range cards {
		resp = append(resp, FlashcardResponse{
			ID:         f.ID,
			SubjectID:  f.SubjectID,
			DocumentID: f.DocumentID,
			Question:   f.Question,
			Answer:     f.Answer,
			Category:   f.Category,
			Difficulty: f.Difficulty,
			Concept:    f.Concept,
			CreatedAt:  f.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}
