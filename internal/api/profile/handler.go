// internal/api/profile/handler.go
package profile

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
	authed.GET("/profile", h.Get)
	authed.PUT("/profile", h.Update)
	authed.GET("/settings", h.GetSettings)
	authed.PUT("/settings", h.UpdateSettings)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	p, err := h.service.Update(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetSettings(c *gin.Context) {
	st, err := h.service.GetSettings(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	st, err := h.service.UpdateSettings(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
