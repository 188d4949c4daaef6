package subjects

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/shared/server/middleware"
	"studyhub-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches subject routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/subjects", h.create)
	rg.GET("/subjects", h.list)
	rg.GET("/subjects/:id", h.get)
	rg.DELETE("/subjects/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	subject, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(subject))
}

func (h *Handler) list(c *gin.Context) {
	subjects, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	resp := make([]SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		resp = append(resp, toResponse(s))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	subject, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toResponse(subject))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		respond.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
