package postgres

import (
	"context"

	"github.com/teleshop/storefront/internal/catalog/domain"
	"gorm.io/gorm"
)

type priceHistoryRepository struct{ db *gorm.DB }

// NewPriceHistoryRepository 创建价格历史仓储实现
func NewPriceHistoryRepository(db *gorm.DB) domain.PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

func (r *priceHistoryRepository) Insert(ctx context.Context, record *domain.PriceHistory) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *priceHistoryRepository) ListByProduct(ctx context.Context, productID uint, limit int) ([]*domain.PriceHistory, error) {
	var records []*domain.PriceHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
