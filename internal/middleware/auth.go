package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ems-api/internal/constants"
	apierrors "github.com/yukikurage/ems-api/internal/errors"
	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/services"
)

// TokenParser verifies bearer tokens
type TokenParser interface {
	Parse(token string) (services.Actor, error)
}

// RequireAuth checks the Authorization bearer token on every request
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		actor, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		// Store the caller in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, actor.ID)
		c.Set(constants.ContextKeyUserRole, actor.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Insufficient permissions")
		c.Abort()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetActor retrieves the authenticated caller from context
func GetActor(c *gin.Context) (services.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return services.Actor{}, false
	}
	role, _ := c.Get(constants.ContextKeyUserRole)
	r, ok := role.(models.UserRole)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: id, Role: r}, true
}
