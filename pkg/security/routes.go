package security

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"procurement/internal/rate_limiter"
	custom_error "procurement/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginHandler struct {
	auth        Authenticator
	issuer      *TokenIssuer
	registry    *Registry
	rateLimiter *rate_limiter.RateLimiter
	logger      *zap.Logger
}

func NewLoginHandler(auth Authenticator, issuer *TokenIssuer, registry *Registry, rl *rate_limiter.RateLimiter, logger *zap.Logger) *LoginHandler {
	return &LoginHandler{
		auth:        auth,
		issuer:      issuer,
		registry:    registry,
		rateLimiter: rl,
		logger:      logger,
	}
}

func (l *LoginHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth", l.Login)
}

func (l *LoginHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.DELETE("/auth", l.Logout)
}

func (l *LoginHandler) Login(c *gin.Context) {
	clientKey := clientKey(c)
	if !l.rateLimiter.IsAllowed(clientKey) {
		remaining := l.rateLimiter.GetRemainingRequests(clientKey)
		resetAt := time.Now().Add(l.rateLimiter.Window()).Format(time.RFC3339)
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.rateLimiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "Too many login attempts, try again later",
			"remaining": remaining,
			"reset_at":  resetAt,
		})
		return
	}

	var req struct {
		Usuario     string `json:"usuario" binding:"required"`
		Contrasenna string `json:"contrasenna" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := l.auth.Login(c.Request.Context(), req.Usuario, req.Contrasenna)
	if err != nil {
		var gatewayErr *custom_error.GatewayError
		if errors.Is(err, custom_error.ErrNotFound) || errors.As(err, &gatewayErr) && isCredentialError(gatewayErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		l.logger.Error("Login failed", zap.String("usuario", req.Usuario), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Unable to reach authentication service", "details": err.Error()})
		return
	}

	session := l.registry.Open(*result)
	token, err := l.issuer.GenerateJWT(session)
	if err != nil {
		l.registry.Close(session.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	l.logger.Info("User logged in", zap.String("user_id", session.UserID), zap.String("session_id", session.ID))
	c.JSON(http.StatusOK, gin.H{"token": token, "id": result.ID, "usuario": result.Usuario})
}

func (l *LoginHandler) Logout(c *gin.Context) {
	session, ok := CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}

	l.registry.Close(session.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func isCredentialError(err *custom_error.GatewayError) bool {
	message := strings.ToLower(err.Err.Error())
	return strings.Contains(message, "credenciales") || strings.Contains(message, "unauthorized")
}

// clientKey identifies the caller for rate limiting. Private addresses are
// usually a proxy, so the user agent is mixed in.
func clientKey(c *gin.Context) string {
	clientIP := c.GetHeader("X-Forwarded-For")
	if clientIP == "" {
		clientIP = c.GetHeader("X-Real-IP")
	}
	if clientIP == "" {
		clientIP = c.ClientIP()
	}

	if strings.Contains(clientIP, ",") {
		clientIP = strings.TrimSpace(strings.Split(clientIP, ",")[0])
	}

	if isPrivateIP(clientIP) {
		clientIP = clientIP + ":" + c.GetHeader("User-Agent")
	}

	return clientIP
}

func isPrivateIP(ip string) bool {
	privatePrefixes := []string{
		"10.",
		"192.168.",
		"127.",
		"169.254.",
		"::1",
		"fc00::",
		"fe80::",
	}
	for _, prefix := range privatePrefixes {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}

	// 172.16.0.0/12
	if strings.HasPrefix(ip, "172.") {
		parts := strings.SplitN(ip, ".", 3)
		if len(parts) >= 2 {
			second, err := strconv.Atoi(parts[1])
			if err == nil && second >= 16 && second <= 31 {
				return true
			}
		}
	}
	return false
}
