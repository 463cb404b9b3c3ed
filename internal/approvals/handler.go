package approvals

import (
	"errors"
	"net/http"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"
	"procurement/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ApprovalHandler struct {
	service *ApprovalService
	logger  *zap.Logger
}

func NewApprovalHandler(service *ApprovalService, logger *zap.Logger) *ApprovalHandler {
	return &ApprovalHandler{service: service, logger: logger}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/aprobaciones/pools", h.GetPools)
	router.GET("/requerimientos/:id/aprobaciones", h.GetAprobaciones)
	router.POST("/requerimientos/:id/aprobaciones", h.AssignApprover)
	router.POST("/requerimientos/:id/aprobaciones/batch", h.AssignApprovers)
	router.PATCH("/requerimientos/:id/aprobaciones/:aprobacion_id", h.Decide)
	router.DELETE("/requerimientos/:id/aprobaciones/:aprobacion_id", h.UnassignApprover)
}

func (h *ApprovalHandler) GetPools(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	pools, err := h.service.Pools(c.Request.Context(), session.Store)
	if err != nil {
		h.abort(c, "Unable to load approver pools", err)
		return
	}

	c.JSON(http.StatusOK, pools)
}

func (h *ApprovalHandler) GetAprobaciones(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	aprobaciones, err := h.service.List(c.Request.Context(), session.Store, c.Param("id"))
	if err != nil {
		h.abort(c, "Unable to load approvals", err)
		return
	}

	c.JSON(http.StatusOK, aprobaciones)
}

func (h *ApprovalHandler) AssignApprover(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.AssignApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	aprobacion, err := h.service.Assign(c.Request.Context(), session.Store, c.Param("id"), req.UsuarioID, req.Gerarquia)
	if err != nil {
		h.abort(c, "Unable to assign approver", err)
		return
	}

	c.JSON(http.StatusCreated, aprobacion)
}

func (h *ApprovalHandler) AssignApprovers(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.AssignApproversRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.service.AssignMany(c.Request.Context(), session.Store, c.Param("id"), req)
	if err != nil {
		var partial *custom_error.PartialFailureError
		if errors.As(err, &partial) {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error":     "Some approvers could not be assigned",
				"details":   err.Error(),
				"code":      "partial_failure",
				"completed": partial.Completed,
				"failed":    partial.Failed,
				"created":   created,
			})
			return
		}
		h.abort(c, "Unable to assign approvers", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ApprovalHandler) UnassignApprover(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	if err := h.service.Unassign(c.Request.Context(), session.Store, c.Param("id"), c.Param("aprobacion_id")); err != nil {
		h.abort(c, "Unable to remove approver", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ApprovalHandler) Decide(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	aprobacion, err := h.service.Decide(c.Request.Context(), session.Store, c.Param("id"), c.Param("aprobacion_id"), session.UserID, req)
	if err != nil {
		h.abort(c, "Unable to record decision", err)
		return
	}

	c.JSON(http.StatusOK, aprobacion)
}

func (h *ApprovalHandler) abort(c *gin.Context, message string, err error) {
	status, code := custom_error.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "details": err.Error(), "code": code})
}
