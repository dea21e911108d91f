package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the acting user's ID in the request
// context. Authentication itself lives in front of this service; the GUI
// client identifies the operator through the X-User-ID header.
const userIDKey = contextKey("userID")

// actorHeader is the header carrying the operator identity.
const actorHeader = "X-User-ID"

// ActorMiddleware copies the operator identity from the request header into
// the request context so services can stamp audit fields.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(actorHeader); userID != "" {
			ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal := c.Request.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
