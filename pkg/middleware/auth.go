package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wms-platform/production-service/pkg/errors"
	"github.com/wms-platform/production-service/pkg/logging"
)

// RequireUserAuth ensures the request carries a caller identity. The identity
// is taken from the X-User-ID header (populated by the gateway after token
// verification) and stored in both the gin and request contexts.
func RequireUserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			AbortWithAppError(c, errors.ErrUnauthenticated(""))
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Request = c.Request.WithContext(logging.ContextWithUserID(c.Request.Context(), userID))

		c.Next()
	}
}

// GetUserID extracts the authenticated user ID from the gin context
func GetUserID(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyUserID); exists {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}
