package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teleshop/storefront/internal/catalog/domain"
	"github.com/teleshop/storefront/pkg/logger"
)

// ProductCache 商品读缓存接口，Redis 未启用时传 nil
type ProductCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

const (
	cacheTTL         = 5 * time.Minute
	cacheKeyPattern  = "catalog:*"
	productKeyFormat = "catalog:product:%d"
	listKeyFormat    = "catalog:list:%s:%d:%d"
)

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Article     string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	InStock     bool
}

// UpdateProductCommand 更新商品命令
type UpdateProductCommand struct {
	ID          uint
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	InStock     bool
}

// CatalogService 商品目录应用服务
type CatalogService struct {
	products   domain.ProductRepository
	history    domain.PriceHistoryRepository
	publisher  domain.EventPublisher
	cache      ProductCache
	eventTopic string
}

// NewCatalogService 创建商品目录应用服务
func NewCatalogService(
	products domain.ProductRepository,
	history domain.PriceHistoryRepository,
	publisher domain.EventPublisher,
	cache ProductCache,
	eventTopic string,
) *CatalogService {
	return &CatalogService{
		products:   products,
		history:    history,
		publisher:  publisher,
		cache:      cache,
		eventTopic: eventTopic,
	}
}

// CreateProduct 创建商品
func (s *CatalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	existing, err := s.products.GetByArticle(ctx, cmd.Article)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrArticleTaken
	}

	product := &domain.Product{
		Article:     cmd.Article,
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Category:    cmd.Category,
		ImageURL:    cmd.ImageURL,
		InStock:     cmd.InStock,
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, product.Article, domain.ProductCreatedEvent{
		ProductID: product.ID,
		Article:   product.Article,
		Name:      product.Name,
		Price:     product.Price,
		Category:  product.Category,
		Timestamp: time.Now(),
	})
	s.invalidate(ctx)

	return product, nil
}

// UpdateProduct 更新商品；价格变化时先登记价格历史（记录旧价格）
func (s *CatalogService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if !product.Price.Equal(cmd.Price) {
		if err := s.history.Insert(ctx, &domain.PriceHistory{
			ProductID: product.ID,
			Price:     product.Price,
		}); err != nil {
			return nil, fmt.Errorf("failed to record price history: %w", err)
		}
	}

	product.Name = cmd.Name
	product.Description = cmd.Description
	product.Price = cmd.Price
	product.Category = cmd.Category
	product.ImageURL = cmd.ImageURL
	product.InStock = cmd.InStock

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, product.Article, domain.ProductUpdatedEvent{
		ProductID: product.ID,
		Article:   product.Article,
		Name:      product.Name,
		Price:     product.Price,
		Category:  product.Category,
		Timestamp: time.Now(),
	})
	s.invalidate(ctx)

	return product, nil
}

// GetProduct 获取单个商品，优先读缓存
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	if s.cache != nil {
		var cached domain.Product
		key := fmt.Sprintf(productKeyFormat, id)
		if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, fmt.Sprintf(productKeyFormat, id), product, cacheTTL)
	}
	return product, nil
}

// ListResult 分页商品列表
type ListResult struct {
	Items []*domain.Product `json:"items"`
	Total int64             `json:"total"`
}

// ListProducts 按分类分页列出商品
func (s *CatalogService) ListProducts(ctx context.Context, category string, page, size int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	key := fmt.Sprintf(listKeyFormat, category, page, size)
	if s.cache != nil {
		var cached ListResult
		if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	items, total, err := s.products.List(ctx, category, (page-1)*size, size)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: items, Total: total}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, result, cacheTTL)
	}
	return result, nil
}

// SearchProducts 按名称或 SKU 模糊搜索商品
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	items, total, err := s.products.Search(ctx, query, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// DeleteProduct 删除商品
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// PriceHistory 获取商品的价格变更历史
func (s *CatalogService) PriceHistory(ctx context.Context, productID uint, limit int) ([]*domain.PriceHistory, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.history.ListByProduct(ctx, productID, limit)
}

func (s *CatalogService) publish(ctx context.Context, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.eventTopic, key, event); err != nil {
		logger.Warn(ctx, "Failed to publish catalog event", "key", key, "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cacheKeyPattern); err != nil {
		logger.Warn(ctx, "Failed to invalidate catalog cache", "error", err)
	}
}
