package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"procurement/internal/repository"
	"procurement/pkg/models"
	"procurement/pkg/security"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LogReader interface {
	GetLogs(ctx context.Context, conditions repository.QueryBuilder) ([]models.AuditLog, error)
}

type AuditLogHandler struct {
	reader LogReader
	logger *zap.Logger
}

func NewAuditLogHandler(reader LogReader, logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{reader: reader, logger: logger}
}

func (h *AuditLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/auditlog", h.GetLogs)
}

// GetLogs lists workflow actions newest first. mine=true restricts the feed to
// the caller's own actions.
func (h *AuditLogHandler) GetLogs(c *gin.Context) {
	session, ok := security.RequireSession(c)
	if !ok {
		return
	}

	conditions := repository.NewQueryBuilder()
	conditions.AddCondition("resource_type", c.Query("resource_type"))
	conditions.AddCondition("resource_id", c.Query("resource_id"))
	conditions.AddCondition("action", c.Query("action"))
	conditions.AddCondition("user_id", c.Query("user_id"))
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine {
		conditions.AddCondition("user_id", session.UserID)
	}

	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid since, expected RFC3339", "details": err.Error()})
			return
		}
		conditions.AddCondition("created_at", goqu.Op{"gte": t})
	}

	limit, err := queryUint(c, "limit")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit", "details": err.Error()})
		return
	}
	offset, err := queryUint(c, "offset")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid offset", "details": err.Error()})
		return
	}
	conditions.SetPage(limit, offset)

	logs, err := h.reader.GetLogs(c.Request.Context(), conditions)
	if err != nil {
		h.logger.Error("Unable to list audit logs", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to list audit logs", "details": err.Error(), "code": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, logs)
}

func queryUint(c *gin.Context, key string) (uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	return uint(v), err
}
