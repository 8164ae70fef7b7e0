// internal/common/auth/middleware.go
package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "membership-backend/internal/common/errors"
)

// Context keys set by the middleware for downstream handlers.
const (
	ContextUserID  = "userId"
	ContextEmail   = "email"
	ContextIsAdmin = "isAdmin"
)

// Required validates the Bearer token and stores the identity on the
// request context. Requests without a valid token are rejected with 401.
func Required(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Respond(c, apierrors.NewUnauthorizedError("missing Authorization header"))
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			apierrors.Respond(c, apierrors.NewUnauthorizedError("Authorization header must be a Bearer token"))
			return
		}

		claims, err := tm.Verify(tokenString)
		if err != nil {
			apierrors.Respond(c, apierrors.NewUnauthorizedError("invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// AdminRequired rejects requests whose token does not carry the admin claim.
// It must run after Required.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			apierrors.Respond(c, apierrors.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id from the request context.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Email returns the authenticated email from the request context.
func Email(c *gin.Context) string {
	return c.GetString(ContextEmail)
}
