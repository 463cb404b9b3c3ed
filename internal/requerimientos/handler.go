package requerimientos

import (
	"net/http"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"
	"procurement/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RequerimientoHandler struct {
	service *RequerimientoService
	logger  *zap.Logger
}

func NewRequerimientoHandler(service *RequerimientoService, logger *zap.Logger) *RequerimientoHandler {
	return &RequerimientoHandler{service: service, logger: logger}
}

func (h *RequerimientoHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/requerimientos", h.GetRequerimientos)
	router.GET("/requerimientos/board", h.GetBoard)
	router.POST("/requerimientos", h.CreateRequerimiento)
	router.GET("/requerimientos/:id", h.GetRequerimiento)
	router.PATCH("/requerimientos/:id", h.UpdateRequerimiento)
	router.GET("/requerimientos/:id/transitions", h.GetTransitions)
	router.POST("/requerimientos/:id/transitions", h.Transition)
	router.GET("/requerimientos/:id/history", h.GetHistory)
	router.GET("/requerimientos/:id/recursos", h.GetRecursos)
	router.GET("/requerimientos/:id/recursos/stock", h.GetRecursosConStock)
	router.POST("/requerimientos/:id/recursos", h.AddRecurso)
	router.PATCH("/requerimientos/:id/recursos/:recurso_id", h.UpdateRecurso)
	router.DELETE("/requerimientos/:id/recursos/:recurso_id", h.DeleteRecurso)
}

func (h *RequerimientoHandler) GetRequerimientos(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	reqs, err := h.service.List(c.Request.Context(), session.Store)
	if err != nil {
		h.abort(c, "Unable to list requerimientos", err)
		return
	}

	c.JSON(http.StatusOK, reqs)
}

func (h *RequerimientoHandler) GetBoard(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	board, err := h.service.Board(c.Request.Context(), session.Store, session.UserID, c.Query("search"))
	if err != nil {
		h.abort(c, "Unable to build board", err)
		return
	}

	c.JSON(http.StatusOK, board)
}

func (h *RequerimientoHandler) GetRequerimiento(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	req, err := h.service.Get(c.Request.Context(), session.Store, c.Param("id"))
	if err != nil {
		h.abort(c, "Unable to get requerimiento", err)
		return
	}

	c.JSON(http.StatusOK, req)
}

func (h *RequerimientoHandler) CreateRequerimiento(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.CreateRequerimientoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	if req.UsuarioID == "" {
		req.UsuarioID = session.UserID
	}

	created, err := h.service.Create(c.Request.Context(), session.Store, req)
	if err != nil {
		h.abort(c, "Unable to create requerimiento", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *RequerimientoHandler) UpdateRequerimiento(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.UpdateRequerimientoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), session.Store, c.Param("id"), req)
	if err != nil {
		h.abort(c, "Unable to update requerimiento", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *RequerimientoHandler) GetTransitions(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	allowed, err := h.service.AllowedTransitions(c.Request.Context(), session.Store, c.Param("id"))
	if err != nil {
		h.abort(c, "Unable to get transitions", err)
		return
	}

	c.JSON(http.StatusOK, allowed)
}

func (h *RequerimientoHandler) Transition(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.service.Transition(c.Request.Context(), session.Store, c.Param("id"), req)
	if err != nil {
		h.abort(c, "Unable to apply transition", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *RequerimientoHandler) GetHistory(c *gin.Context) {
	logs, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abort(c, "Unable to get history", err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *RequerimientoHandler) GetRecursos(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	recursos, err := h.service.ListRecursos(c.Request.Context(), session.Store, c.Param("id"))
	if err != nil {
		h.abort(c, "Unable to list recursos", err)
		return
	}

	c.JSON(http.StatusOK, recursos)
}

func (h *RequerimientoHandler) GetRecursosConStock(c *gin.Context) {
	recursos, err := h.service.RecursosConStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abort(c, "Unable to list recursos with stock", err)
		return
	}

	c.JSON(http.StatusOK, recursos)
}

func (h *RequerimientoHandler) AddRecurso(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.RequerimientoRecursoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.service.AddRecurso(c.Request.Context(), session.Store, session.UserID, c.Param("id"), req)
	if err != nil {
		h.abort(c, "Unable to add recurso", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *RequerimientoHandler) UpdateRecurso(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	var req models.RequerimientoRecursoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.service.UpdateRecurso(c.Request.Context(), session.Store, c.Param("id"), c.Param("recurso_id"), req)
	if err != nil {
		h.abort(c, "Unable to update recurso", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *RequerimientoHandler) DeleteRecurso(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRecurso(c.Request.Context(), session.Store, session.UserID, c.Param("id"), c.Param("recurso_id")); err != nil {
		h.abort(c, "Unable to delete recurso", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RequerimientoHandler) abort(c *gin.Context, message string, err error) {
	status, code := custom_error.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "details": err.Error(), "code": code})
}
