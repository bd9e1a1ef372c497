package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teleshop/storefront/internal/auth/application"
)

// Handler 管理后台鉴权 HTTP 处理器
type Handler struct {
	app *application.AuthService
}

// RegisterRoutes 注册登录路由
func RegisterRoutes(group *gin.RouterGroup, app *application.AuthService) {
	h := &Handler{app: app}
	group.POST("/login", h.Login)
}

// Login 管理员登录，返回 Bearer token
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, expiresAt, err := h.app.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}
