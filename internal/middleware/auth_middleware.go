package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/service"
)

// ContextUserKey is the gin context key under which RequireAuth stores
// the resolved user record.
const ContextUserKey = "currentUser"

// AuthMiddleware resolves bearer tokens to user records and enforces
// role membership
type AuthMiddleware struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(service service.AuthService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		service: service,
		logger:  logger,
	}
}

// RequireAuth validates the bearer token, resolves it to an active user
// record, and stores the user in the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.logger.Warn("⚠️ [Middleware] Missing Authorization header")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.logger.Warn("⚠️ [Middleware] Invalid Authorization header format")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		user, err := m.service.ResolveUser(parts[1])
		if err != nil {
			if errors.Is(err, service.ErrAccountDeactivated) {
				m.logger.Warn("⚠️ [Middleware] Deactivated account", "error", err)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			} else {
				m.logger.Warn("⚠️ [Middleware] Invalid token", "error", err)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			}
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		m.logger.Debug("✅ [Middleware] Token validated", "user_id", user.ID, "role", user.Role)

		c.Next()
	}
}

// OptionalAuth resolves the bearer token when one is present but never
// rejects the request. Public routes use it so responses can still be
// tailored to the caller.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if user, err := m.service.ResolveUser(parts[1]); err == nil {
				c.Set(ContextUserKey, user)
			}
		}
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		if !allowed[user.Role] {
			m.logger.Warn("⚠️ [Middleware] Insufficient role", "user_id", user.ID, "role", user.Role)
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Access denied",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the user RequireAuth attached to the context, or
// nil when the route did not pass through it.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
