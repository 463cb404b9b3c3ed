package export

import (
	"net/http"
	"regexp"

	custom_error "procurement/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type ExportHandler struct {
	logger *zap.Logger
}

func NewExportHandler(logger *zap.Logger) *ExportHandler {
	return &ExportHandler{logger: logger}
}

func (h *ExportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/export/xlsx", h.ExportXLSX)
}

func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	f, err := Build(req)
	if err != nil {
		status, code := custom_error.Status(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Unable to build spreadsheet", zap.Error(err))
		}
		c.AbortWithStatusJSON(status, gin.H{"error": "Unable to build spreadsheet", "details": err.Error(), "code": code})
		return
	}
	defer f.Close()

	filename := unsafeFilename.ReplaceAllString(req.SheetName(), "_") + ".xlsx"
	c.Header("Content-Type", ContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Unable to write spreadsheet", zap.Error(err))
	}
}
