package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	authhttp "github.com/teleshop/storefront/internal/auth/interfaces/http"
	"github.com/teleshop/storefront/internal/cart/application"
)

// Handler 购物车 HTTP 处理器
type Handler struct {
	app *application.CartService
}

// RegisterRoutes 注册购物车路由；group 应已挂 Telegram initData 鉴权
func RegisterRoutes(group *gin.RouterGroup, app *application.CartService) {
	h := &Handler{app: app}

	cart := group.Group("/cart")
	{
		cart.GET("", h.Get)
		cart.POST("/items", h.AddItem)
		cart.PATCH("/items/:productID", h.SetQuantity)
		cart.DELETE("/items/:productID", h.RemoveItem)
		cart.DELETE("", h.Clear)
	}
}

// Get 获取当前用户的购物车
func (h *Handler) Get(c *gin.Context) {
	cart, err := h.app.GetCart(c.Request.Context(), authhttp.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// AddItem 加购商品
func (h *Handler) AddItem(c *gin.Context) {
	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.app.AddItem(c.Request.Context(), authhttp.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// SetQuantity 修改条目数量
func (h *Handler) SetQuantity(c *gin.Context) {
	productID, err := parseProductID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.app.SetQuantity(c.Request.Context(), authhttp.UserID(c), productID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// RemoveItem 移除条目
func (h *Handler) RemoveItem(c *gin.Context) {
	productID, err := parseProductID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	cart, err := h.app.RemoveItem(c.Request.Context(), authhttp.UserID(c), productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// Clear 清空购物车
func (h *Handler) Clear(c *gin.Context) {
	if err := h.app.ClearCart(c.Request.Context(), authhttp.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseProductID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("productID"), 10, 32)
	return uint(id), err
}
