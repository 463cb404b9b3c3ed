package transfers

import (
	"errors"
	"net/http"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"
	"procurement/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TransferHandler struct {
	service *TransferService
	logger  *zap.Logger
}

func NewTransferHandler(service *TransferService, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{service: service, logger: logger}
}

func (h *TransferHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/requerimientos/:id/reconciliation/preview", h.PreviewTransfer)
	router.POST("/requerimientos/:id/reconciliation/approve", h.ApproveTransfer)
}

func (h *TransferHandler) PreviewTransfer(c *gin.Context) {
	var req struct {
		Lines []models.TransferLineRequest `json:"lines" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), c.Param("id"), req.Lines)
	if err != nil {
		h.abort(c, "Unable to reconcile quantities", err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *TransferHandler) ApproveTransfer(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result, err := h.service.Approve(c.Request.Context(), session.Store, session.UserID, c.Param("id"), req)
	if err != nil {
		var stockErr *StockError
		if errors.As(err, &stockErr) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Stock validation failed", "reasons": stockErr.Reasons, "code": "stock_validation"})
			return
		}

		var partial *custom_error.PartialFailureError
		if errors.As(err, &partial) {
			// A refused final transition keeps its own status (409, 404); upstream
			// failures report 502.
			status, _ := custom_error.Status(partial.Err)
			if status >= http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
			h.logger.Error("Transfer approval aborted", zap.String("requerimiento_id", c.Param("id")), zap.Error(err))
			c.AbortWithStatusJSON(status, gin.H{
				"error":       "Transfer approval failed",
				"details":     err.Error(),
				"code":        "partial_failure",
				"completed":   partial.Completed,
				"failed":      partial.Failed,
				"compensated": partial.Compensated,
			})
			return
		}

		h.abort(c, "Unable to approve transfer", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *TransferHandler) abort(c *gin.Context, message string, err error) {
	status, code := custom_error.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "details": err.Error(), "code": code})
}
