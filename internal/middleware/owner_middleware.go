package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequireOwner rejects requests whose :user_id path segment does not match the
// authenticated subject. It must run after JWTAuthMiddleware and before any
// handler touches the store, so a mismatched request never reaches the database.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(UserIDKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		authenticatedUserID, ok := value.(uuid.UUID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
			return
		}

		pathUserID, err := uuid.Parse(c.Param("user_id"))
		if err != nil || pathUserID != authenticatedUserID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized access to user's tasks"})
			return
		}

		c.Next()
	}
}
