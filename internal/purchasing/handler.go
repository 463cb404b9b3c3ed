package purchasing

import (
	"errors"
	"net/http"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"
	"procurement/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PurchasingHandler struct {
	service *PurchasingService
	logger  *zap.Logger
}

func NewPurchasingHandler(service *PurchasingService, logger *zap.Logger) *PurchasingHandler {
	return &PurchasingHandler{service: service, logger: logger}
}

func (h *PurchasingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/cotizaciones", h.GetCotizaciones)
	router.POST("/cotizaciones", h.CreateCotizacion)
	router.DELETE("/cotizaciones/:id", h.DeleteCotizacion)
	router.GET("/ordenes-compra", h.GetOrdenesCompra)
	router.POST("/ordenes-compra", h.CreateOrdenCompra)
	router.DELETE("/ordenes-compra/:id", h.DeleteOrdenCompra)
}

func (h *PurchasingHandler) GetCotizaciones(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	cotizaciones, err := h.service.ListCotizaciones(c.Request.Context(), session.Store)
	if err != nil {
		h.abort(c, "Unable to list cotizaciones", err)
		return
	}

	c.JSON(http.StatusOK, cotizaciones)
}

func (h *PurchasingHandler) CreateCotizacion(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.CotizacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	cotizacion, err := h.service.CreateCotizacion(c.Request.Context(), session.Store, session.UserID, req)
	if err != nil {
		h.abort(c, "Unable to create cotizacion", err)
		return
	}

	c.JSON(http.StatusCreated, cotizacion)
}

func (h *PurchasingHandler) DeleteCotizacion(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCotizacion(c.Request.Context(), session.Store, c.Param("id")); err != nil {
		h.abort(c, "Unable to delete cotizacion", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PurchasingHandler) GetOrdenesCompra(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	ordenes, err := h.service.ListOrdenesCompra(c.Request.Context(), session.Store)
	if err != nil {
		h.abort(c, "Unable to list ordenes de compra", err)
		return
	}

	c.JSON(http.StatusOK, ordenes)
}

func (h *PurchasingHandler) CreateOrdenCompra(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.OrdenCompraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	orden, err := h.service.CreateOrdenCompra(c.Request.Context(), session.Store, req)
	if err != nil {
		h.abort(c, "Unable to create orden de compra", err)
		return
	}

	c.JSON(http.StatusCreated, orden)
}

func (h *PurchasingHandler) DeleteOrdenCompra(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	if err := h.service.DeleteOrdenCompra(c.Request.Context(), session.Store, c.Param("id")); err != nil {
		h.abort(c, "Unable to delete orden de compra", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PurchasingHandler) abort(c *gin.Context, message string, err error) {
	status, code := custom_error.Status(err)
	body := gin.H{"error": message, "details": err.Error(), "code": code}

	var partial *custom_error.PartialFailureError
	if errors.As(err, &partial) {
		body["completed"] = partial.Completed
		body["failed"] = partial.Failed
		body["compensated"] = partial.Compensated
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, body)
}
