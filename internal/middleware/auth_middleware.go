package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/service"
)

const (
	// AuthTokenCookieName is the cookie the login handler sets alongside the JSON token.
	AuthTokenCookieName = "auth_token"

	actorKey = "actor"
)

// AuthMiddleware rejects requests without a valid session.
func AuthMiddleware(parser service.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization credentials required"})
			return
		}

		actor, err := parser.ParseToken(token)
		if err != nil {
			message := "invalid or expired token"
			if errors.Is(err, service.ErrUnauthorized) {
				message = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller when a valid token is present
// and lets anonymous requests through otherwise.
func OptionalAuthMiddleware(parser service.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if actor, err := parser.ParseToken(token); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}

// RequirePermission must run after AuthMiddleware.
func RequirePermission(permission authorization.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.ID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization credentials required"})
			return
		}
		if !actor.Can(permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated caller, or the zero Actor for anonymous requests.
func ActorFrom(c *gin.Context) service.Actor {
	if value, ok := c.Get(actorKey); ok {
		if actor, ok := value.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}

func setActor(c *gin.Context, actor service.Actor) {
	c.Set(actorKey, actor)
	c.Set("user_id", actor.ID)
	c.Set("role", actor.Role.String())
}

func extractToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if cookie, err := c.Cookie(AuthTokenCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
