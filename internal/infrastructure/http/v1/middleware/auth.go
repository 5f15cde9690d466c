package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"orderbell/internal/core/apperror"
	appctx "orderbell/internal/core/context"
)

// Authorizer resolves the caller from an Authorization header.
// It returns nil for anonymous callers and never fails.
type Authorizer interface {
	Authorize(ctx context.Context, header string) *appctx.UserContext
}

// Identify attaches the caller, if any, to the request context.
// Anonymous requests pass through untouched.
func Identify(authorizer Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || authorizer == nil {
			c.Next()
			return
		}

		if user := authorizer.Authorize(c.Request.Context(), header); user != nil {
			c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
			c.Set("user_id", user.UserID)
			c.Set("is_admin", user.IsAdmin)
		}

		c.Next()
	}
}

// RequireAdmin rejects callers without a privileged role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appctx.IsAdmin(c.Request.Context()) {
			_ = c.Error(apperror.NewForbidden())
			c.Abort()
			return
		}
		c.Next()
	}
}
