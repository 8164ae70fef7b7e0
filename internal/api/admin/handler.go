// internal/api/admin/handler.go
package admin

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

func (h *Handler) Register(admin *gin.RouterGroup) {
	admin.GET("/users", h.ListUsers)
	admin.DELETE("/users/:id", h.DeleteUser)

	admin.GET("/memberships", h.ListMemberships)
	admin.GET("/memberships/:id", h.GetMembership)
	admin.PUT("/memberships/:id", h.UpdateMembership)
	admin.DELETE("/memberships/:id", h.DeleteMembership)

	admin.GET("/profiles", h.ListProfiles)
	admin.GET("/profiles/:id", h.GetProfile)
	admin.PUT("/profiles/:id", h.UpdateProfile)
	admin.DELETE("/profiles/:id", h.DeleteProfile)

	admin.POST("/announcements", h.Announce)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListMemberships(c *gin.Context) {
	list, err := h.service.ListMemberships(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": list})
}

func (h *Handler) GetMembership(c *gin.Context) {
	m, err := h.service.GetMembership(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateMembership(c *gin.Context) {
	var req MembershipUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	if err := h.service.UpdateMembership(c.Request.Context(), c.Param("id"), req); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) DeleteMembership(c *gin.Context) {
	if err := h.service.DeleteMembership(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListProfiles(c *gin.Context) {
	list, err := h.service.ListProfiles(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": list})
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.service.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	if err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), req); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) DeleteProfile(c *gin.Context) {
	if err := h.service.DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Announce(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	created, err := h.service.Announce(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
