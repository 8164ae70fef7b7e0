// internal/api/membership/handler.go
package membership

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"membership-backend/internal/common/auth"
	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) Register(authed *gin.RouterGroup) {
	authed.POST("/memberships", h.Create)
	authed.GET("/memberships/me", h.ListMine)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	m, err := h.service.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": list})
}
