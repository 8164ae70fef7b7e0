// internal/api/auth/handler.go
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
)

// Handler exposes the authentication flows over HTTP. All routes here
// are public; token-protected routes live with their own features.
type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) Register(public *gin.RouterGroup) {
	public.POST("/auth/signup", h.Signup)
	public.POST("/auth/login", h.Login)
	public.POST("/auth/verify-account-otp", h.VerifyAccount)
	public.POST("/auth/forgot-password", h.ForgotPassword)
	public.POST("/auth/verify-otp", h.VerifyResetOTP)
	public.POST("/auth/reset-password", h.ResetPassword)
	public.GET("/auth/verify-token", h.VerifyToken)
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "verification code sent",
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) VerifyAccount(c *gin.Context) {
	var req VerifyAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	resp, err := h.service.VerifyAccount(c.Request.Context(), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset code was sent"})
}

func (h *Handler) VerifyResetOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	if err := h.service.VerifyResetOTP(c.Request.Context(), req); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *Handler) VerifyToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" || tokenString == header {
		apierrors.Respond(c, apierrors.NewUnauthorizedError("missing Bearer token"))
		return
	}

	user, err := h.service.VerifyToken(tokenString)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": user})
}
