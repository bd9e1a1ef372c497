package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	authhttp "github.com/teleshop/storefront/internal/auth/interfaces/http"
	catalogdomain "github.com/teleshop/storefront/internal/catalog/domain"
	"github.com/teleshop/storefront/internal/favorite/application"
)

// Handler 收藏 HTTP 处理器
type Handler struct {
	app *application.FavoriteService
}

// RegisterRoutes 注册收藏路由；group 应已挂 Telegram initData 鉴权
func RegisterRoutes(group *gin.RouterGroup, app *application.FavoriteService) {
	h := &Handler{app: app}

	favorites := group.Group("/favorites")
	{
		favorites.GET("", h.List)
		favorites.POST("/:productID", h.Add)
		favorites.DELETE("/:productID", h.Remove)
	}
}

// List 列出当前用户的收藏
func (h *Handler) List(c *gin.Context) {
	products, err := h.app.List(c.Request.Context(), authhttp.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": products, "count": len(products)})
}

// Add 收藏商品
func (h *Handler) Add(c *gin.Context) {
	productID, err := parseProductID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.app.Add(c.Request.Context(), authhttp.UserID(c), productID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, catalogdomain.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusCreated)
}

// Remove 取消收藏
func (h *Handler) Remove(c *gin.Context) {
	productID, err := parseProductID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.app.Remove(c.Request.Context(), authhttp.UserID(c), productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseProductID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("productID"), 10, 32)
	return uint(id), err
}
