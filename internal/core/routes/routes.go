package routes

import (
	"procurement/internal/core/container"
	"procurement/internal/idempotency"
	"procurement/internal/middleware"
	"procurement/pkg/security"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the ambient middleware chain and every
// route group.
func NewRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(c.Logger),
		middleware.RecoveryMiddleware(c.Logger),
		middleware.CORS(c.Config.CORSOrigins),
		// xlsx files are already zip archives.
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/export"})),
		middleware.TimeoutMiddleware(c.Config.RequestTimeout),
	)

	RegisterUtilityRoutes(router, c)
	RegisterPublicRoutes(router, c)
	RegisterProtectedRoutes(router, c)

	return router
}

func RegisterUtilityRoutes(router *gin.Engine, c *container.Container) {
	router.GET("/health", c.Health.Handler())
}

func RegisterPublicRoutes(router *gin.Engine, c *container.Container) {
	c.LoginHandler.RegisterRoutes(router)
}

func RegisterProtectedRoutes(router *gin.Engine, c *container.Container) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware(c.Issuer, c.Registry))
	if c.Idempotency != nil {
		protectedRoutes.Use(idempotency.Middleware(c.Idempotency, func(ctx *gin.Context) string {
			return ctx.GetString("userID")
		}, c.Logger))
	}

	c.LoginHandler.RegisterProtectedRoutes(protectedRoutes)
	c.RequerimientoHandler.RegisterRoutes(protectedRoutes)
	c.ApprovalHandler.RegisterRoutes(protectedRoutes)
	c.TransferHandler.RegisterRoutes(protectedRoutes)
	c.PurchasingHandler.RegisterRoutes(protectedRoutes)
	c.CatalogHandler.RegisterRoutes(protectedRoutes)
	c.ExportHandler.RegisterRoutes(protectedRoutes)
	if c.AuditLogHandler != nil {
		c.AuditLogHandler.RegisterRoutes(protectedRoutes)
	}
}
