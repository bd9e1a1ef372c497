package postgres

import (
	"context"
	"errors"

	"github.com/teleshop/storefront/internal/catalog/domain"
	"gorm.io/gorm"
)

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储实现
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByArticle SKU 编码大小写不敏感
func (r *productRepository) GetByArticle(ctx context.Context, article string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(article) = LOWER(?)", article).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ListByIDs(ctx context.Context, ids []uint) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []*domain.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) List(ctx context.Context, category string, offset, limit int) ([]*domain.Product, int64, error) {
	var products []*domain.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("id").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepository) Search(ctx context.Context, query string, offset, limit int) ([]*domain.Product, int64, error) {
	var products []*domain.Product
	var total int64

	pattern := "%" + query + "%"
	q := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("name ILIKE ? OR article ILIKE ?", pattern, pattern)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("id").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
