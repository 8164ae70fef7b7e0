// internal/api/notification/handler.go
package notification

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"membership-backend/internal/common/auth"
	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/common/validation"
)

var createSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"title":      {Type: "string", MinLength: intPtr(1)},
		"message":    {Type: "string", MinLength: intPtr(1)},
		"category":   {Type: "string", Enum: []string{"system", "membership", "event", "admin", "announcement"}},
		"priority":   {Type: "string", Enum: []string{"low", "medium", "high"}},
		"link":       {Type: "string"},
		"image":      {Type: "string"},
		"recipients": {},
	},
	Required:             []string{"title", "message", "recipients"},
	AdditionalProperties: false,
}

// Handler exposes the notification feed over HTTP.
type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register mounts the feed routes. authed requires a valid token; admin
// additionally requires the admin claim.
func (h *Handler) Register(authed, admin *gin.RouterGroup) {
	admin.POST("/notifications", h.Create)
	admin.GET("/notifications/all", h.ListAll)
	admin.DELETE("/notifications/:id", h.Delete)

	authed.GET("/notifications/me", h.ListMine)
	authed.GET("/notifications/unread-count", h.UnreadCount)
	authed.PATCH("/notifications/:id/read", h.MarkRead)
	authed.PATCH("/notifications/mark-all-read", h.MarkAllRead)
}

func (h *Handler) Create(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}
	if result := validation.ValidateInput(raw, createSchema); !result.Valid {
		apierrors.Respond(c, apierrors.NewValidationError(result.Summary()))
		return
	}

	var req CreateRequest
	if err := rebind(raw, &req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid request shape"))
		return
	}

	created, err := h.service.Create(c.Request.Context(), req, auth.UserID(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAdminView(created))
}

func (h *Handler) ListMine(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.service.ListForUser(c.Request.Context(), auth.UserID(c), page, pageSize)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListAll(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.service.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	userID := auth.UserID(c)
	updated, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(updated, userID))
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	affected, err := h.service.MarkAllRead(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": affected})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func pageParams(c *gin.Context) (int, int) {
	page := queryInt(c, "page", defaultPage)
	pageSize := queryInt(c, "pageSize", defaultPageSize)
	return page, pageSize
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	var v int
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fallback
	}
	return v
}

func intPtr(i int) *int { return &i }

// rebind re-decodes the validated raw map into the typed request.
func rebind(raw map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
