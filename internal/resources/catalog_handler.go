package resources

import (
	"net/http"
	"strconv"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	service *CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(service *CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: logger}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recursos", h.GetRecursos)
	router.GET("/recursos/unidades", h.GetUnidades)
	router.GET("/recursos/:id", h.GetRecurso)
	router.GET("/almacenes", h.GetAlmacenes)
	router.GET("/usuarios", h.GetUsuarios)
}

func (h *CatalogHandler) GetRecursos(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	recursos, err := h.service.Recursos(c.Request.Context(), session.Store, c.Query("search"), refresh(c))
	if err != nil {
		h.abort(c, "Unable to list recursos", err)
		return
	}

	c.JSON(http.StatusOK, recursos)
}

func (h *CatalogHandler) GetRecurso(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	recurso, err := h.service.Recurso(c.Request.Context(), session.Store, c.Param("id"))
	if err != nil {
		h.abort(c, "Unable to get recurso", err)
		return
	}

	c.JSON(http.StatusOK, recurso)
}

func (h *CatalogHandler) GetUnidades(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	unidades, err := h.service.Unidades(c.Request.Context(), session.Store, refresh(c))
	if err != nil {
		h.abort(c, "Unable to list unidades", err)
		return
	}

	c.JSON(http.StatusOK, unidades)
}

func (h *CatalogHandler) GetAlmacenes(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	almacenes, err := h.service.Almacenes(c.Request.Context(), session.Store, refresh(c))
	if err != nil {
		h.abort(c, "Unable to list almacenes", err)
		return
	}

	c.JSON(http.StatusOK, almacenes)
}

func (h *CatalogHandler) GetUsuarios(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	usuarios, err := h.service.Usuarios(c.Request.Context(), session.Store, refresh(c))
	if err != nil {
		h.abort(c, "Unable to list usuarios", err)
		return
	}

	c.JSON(http.StatusOK, usuarios)
}

func refresh(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("refresh"))
	return v
}

func (h *CatalogHandler) abort(c *gin.Context, message string, err error) {
	status, code := custom_error.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message, "details": err.Error(), "code": code})
}
