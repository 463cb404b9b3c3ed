package security

import (
	"net/http"
	"strings"

	"procurement/internal/gateway"
	"procurement/pkg/auditlog"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// JWTMiddleware validates the bearer token, resolves the in-memory session and
// attaches the upstream token to the request context.
func JWTMiddleware(issuer *TokenIssuer, registry *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		claims, err := issuer.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		sessionID, _ := claims["sessionID"].(string)
		session, ok := registry.Get(sessionID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "code": "session_expired"})
			return
		}

		c.Set(sessionKey, session)
		c.Set("userID", session.UserID)
		ctx := gateway.WithToken(c.Request.Context(), session.UpstreamToken)
		c.Request = c.Request.WithContext(auditlog.WithUser(ctx, session.UserID))
		c.Next()
	}
}

func CurrentSession(c *gin.Context) (*Session, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*Session)
	return session, ok
}

// SetSession is used by tests and by the CLI to bypass token parsing.
func SetSession(c *gin.Context, session *Session) {
	c.Set(sessionKey, session)
	c.Set("userID", session.UserID)
}

// RequireSession returns the current session or aborts with 401.
func RequireSession(c *gin.Context) (*Session, bool) {
	session, ok := CurrentSession(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return nil, false
	}
	return session, true
}
