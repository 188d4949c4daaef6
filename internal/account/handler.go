package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/apperr"
	"studyhub-backend/internal/shared/server/middleware"
	"studyhub-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/account/claim-guest", h.claimGuest)
}

// claimGuest needs a bearer token for the target account and the previous
// guest identity in X-Guest-Id.
func (h *Handler) claimGuest(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" || middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "login required", nil)
		return
	}

	guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
	if guestID == "" {
		respond.Error(c, http.StatusBadRequest, apperr.CodeValidation, "missing X-Guest-Id header", []map[string]string{
			{"field": "X-Guest-Id", "issue": "required"},
		})
		return
	}

	result, err := h.Svc.ClaimGuest(c.Request.Context(), GuestPrefix+guestID, userID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, result)
}
