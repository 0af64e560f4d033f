package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"saaskit_backend/internal/logger"
	"saaskit_backend/internal/models"
	"saaskit_backend/internal/services"
	"saaskit_backend/pkg/contextkeys"
)

const (
	// RenewedTokenHeader carries the rotated token back to the client
	// when a session was renewed during validation.
	RenewedTokenHeader = "X-Renewed-Session-Token"

	sessionKey = "session"
	userKey    = "currentUser"
	userIDKey  = "userID"
)

// AuthMiddleware resolves the bearer token to a session. An absent,
// unknown or expired token aborts with 401; impersonated sessions
// resolve to the target user.
func AuthMiddleware(sessionService services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		db, ok := c.MustGet(string(contextkeys.DBContextKey)).(*gorm.DB)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database unavailable"})
			return
		}

		validation, err := sessionService.Validate(db, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session validation failed"})
			return
		}
		if validation.Session == nil || validation.User == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}
		if validation.NewToken != "" {
			c.Header(RenewedTokenHeader, validation.NewToken)
		}

		ctx := logger.WithUserID(c.Request.Context(), validation.User.ID)
		ctx = logger.WithSessionID(ctx, validation.Session.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Set(sessionKey, validation.Session)
		c.Set(userKey, validation.User)
		c.Set(userIDKey, validation.User.ID)
		c.Next()
	}
}

// RequireAdmin gates a route group to admin users. During
// impersonation the EFFECTIVE user's role applies, so an admin
// impersonating a regular user loses admin routes until they stop.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil || user.Role != models.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient permissions"})
			return
		}
		c.Next()
	}
}

// GetUserID extracts the effective user id set by AuthMiddleware.
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return ""
	}

	id, ok := userID.(string)
	if !ok {
		return ""
	}

	return id
}

// GetUser returns the effective user, nil when unauthenticated.
func GetUser(c *gin.Context) *models.User {
	val, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetSession returns the resolved session, nil when unauthenticated.
func GetSession(c *gin.Context) *models.Session {
	val, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}
	session, ok := val.(*models.Session)
	if !ok {
		return nil
	}
	return session
}
