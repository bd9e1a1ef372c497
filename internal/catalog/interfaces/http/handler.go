package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/teleshop/storefront/internal/catalog/application"
	"github.com/teleshop/storefront/internal/catalog/domain"
)

// Handler 商品目录 HTTP 处理器
type Handler struct {
	app *application.CatalogService
}

// RegisterRoutes 注册路由；public 面向 Mini App，admin 面向管理后台
func RegisterRoutes(public, admin *gin.RouterGroup, app *application.CatalogService) {
	h := &Handler{app: app}

	products := public.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/search", h.Search)
		products.GET("/:id", h.Get)
	}

	adminProducts := admin.Group("/products")
	{
		adminProducts.POST("", h.Create)
		adminProducts.PUT("/:id", h.Update)
		adminProducts.DELETE("/:id", h.Delete)
		adminProducts.GET("/:id/price-history", h.PriceHistory)
	}
}

type productRequest struct {
	Article     string          `json:"article" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	InStock     *bool           `json:"in_stock"`
}

// List 分页列出商品
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.app.ListProducts(c.Request.Context(), c.Query("category"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Search 按名称或 SKU 搜索商品
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.app.SearchProducts(c.Request.Context(), query, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get 获取单个商品
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.app.GetProduct(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create 创建商品
func (h *Handler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	product, err := h.app.CreateProduct(c.Request.Context(), application.CreateProductCommand{
		Article:     req.Article,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		InStock:     inStock,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrArticleTaken) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update 更新商品
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	product, err := h.app.UpdateProduct(c.Request.Context(), application.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		InStock:     inStock,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete 删除商品
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.app.DeleteProduct(c.Request.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// PriceHistory 商品价格变更历史
func (h *Handler) PriceHistory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	records, err := h.app.PriceHistory(c.Request.Context(), id, limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records, "count": len(records)})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
