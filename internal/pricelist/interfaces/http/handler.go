package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teleshop/storefront/internal/pricelist/application"
	"github.com/teleshop/storefront/pkg/logger"
	"github.com/teleshop/storefront/pkg/metrics"
)

// Handler 价格表上传 HTTP 处理器
type Handler struct {
	app         *application.Service
	maxFileSize int64
	metrics     *metrics.Metrics
}

// RegisterRoutes 注册上传路由；upload 组应由调用方挂上管理员鉴权中间件。
// m 可为 nil。
func RegisterRoutes(upload *gin.RouterGroup, app *application.Service, maxFileSizeMB int64, m *metrics.Metrics) {
	h := &Handler{
		app:         app,
		maxFileSize: maxFileSizeMB << 20,
		metrics:     m,
	}

	upload.POST("/prices", h.Upload)
	upload.POST("/prices/preview", h.Preview)
}

// Upload 提交价格表；?preview=true 时只做干跑
func (h *Handler) Upload(c *gin.Context) {
	content, ok := h.readContent(c)
	if !ok {
		return
	}

	if c.Query("preview") == "true" {
		h.countUpload("preview")
		preview, err := h.app.PreviewContent(c.Request.Context(), content)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items": preview.Items,
			"count": len(preview.Items),
		})
		return
	}

	h.countUpload("commit")
	result, err := h.app.Apply(c.Request.Context(), content)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.PriceUploadEntriesTotal.WithLabelValues("success").Add(float64(result.Success))
		h.metrics.PriceUploadEntriesTotal.WithLabelValues("failed").Add(float64(result.Failed))
	}
	c.JSON(http.StatusOK, result)
}

// Preview 预览价格表：逐条匹配与价差，附汇总与校验警告，不落库
func (h *Handler) Preview(c *gin.Context) {
	content, ok := h.readContent(c)
	if !ok {
		return
	}

	h.countUpload("preview")
	preview, err := h.app.PreviewContent(c.Request.Context(), content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// readContent 从 multipart 文件字段或 JSON content 字段读取价格表文本
func (h *Handler) readContent(c *gin.Context) (string, bool) {
	if c.ContentType() == "multipart/form-data" {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
			return "", false
		}
		if fileHeader.Size > h.maxFileSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return "", false
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
			return "", false
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
			return "", false
		}
		return string(data), true
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return req.Content, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var validationErr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrEmptyPriceList):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "price list validation failed",
			"validation_errors": validationErr.Warnings,
		})
	default:
		logger.Error(c.Request.Context(), "Price list processing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) countUpload(mode string) {
	if h.metrics != nil {
		h.metrics.PriceUploadsTotal.WithLabelValues(mode).Inc()
	}
}
