package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"itemvault/internal/config"
	"itemvault/internal/models"
	"itemvault/internal/service"
	"itemvault/internal/store"
)

// CurrentUserKey is the context key JWTAuth stores the authenticated user under.
const CurrentUserKey = "currentUser"

// JWTAuth validates the bearer token and loads the authenticated user
// into the request context. Inactive users are rejected outright.
func JWTAuth(cfg config.Config, userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		userID, err := service.ParseAccessToken(cfg.SecretKey, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		user, err := userStore.GetUser(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Inactive user"})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// RequireSuperuser gates admin-only routes. Must run after JWTAuth.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "The user doesn't have enough privileges"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by JWTAuth for this request.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}
