package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	authhttp "github.com/teleshop/storefront/internal/auth/interfaces/http"
	"github.com/teleshop/storefront/internal/order/application"
	"github.com/teleshop/storefront/internal/order/domain"
	"github.com/teleshop/storefront/pkg/metrics"
)

// Handler 订单 HTTP 处理器
type Handler struct {
	app     *application.OrderService
	metrics *metrics.Metrics
}

// RegisterRoutes 注册订单路由；user 组挂 Telegram 鉴权，admin 组挂管理员鉴权。
// m 可为 nil。
func RegisterRoutes(user, admin *gin.RouterGroup, app *application.OrderService, m *metrics.Metrics) {
	h := &Handler{app: app, metrics: m}

	orders := user.Group("/orders")
	{
		orders.POST("", h.Checkout)
		orders.GET("", h.ListMine)
		orders.GET("/:id", h.GetMine)
	}

	adminOrders := admin.Group("/orders")
	{
		adminOrders.GET("", h.List)
		adminOrders.GET("/:id", h.Get)
		adminOrders.PATCH("/:id/status", h.UpdateStatus)
	}
}

// Checkout 从购物车下单
func (h *Handler) Checkout(c *gin.Context) {
	var req struct {
		Comment string `json:"comment"`
	}
	// body 可以为空
	_ = c.ShouldBindJSON(&req)

	user := authhttp.User(c)
	order, err := h.app.Checkout(c.Request.Context(), application.CheckoutCommand{
		UserID:   user.ID,
		Username: user.Username,
		Comment:  req.Comment,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, application.ErrEmptyCart) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersCreatedTotal.Inc()
	}
	c.JSON(http.StatusCreated, order)
}

// ListMine 当前用户的订单
func (h *Handler) ListMine(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.app.ListUserOrders(c.Request.Context(), authhttp.UserID(c), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMine 当前用户的单个订单
func (h *Handler) GetMine(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.app.GetOrder(c.Request.Context(), id, authhttp.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// List 管理端订单列表
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.app.ListOrders(c.Request.Context(), domain.Status(c.Query("status")), page, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get 管理端查看订单
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.app.GetOrder(c.Request.Context(), id, 0)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus 管理端迁移订单状态
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req struct {
		Status domain.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.app.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrOrderNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
