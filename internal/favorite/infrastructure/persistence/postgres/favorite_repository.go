package postgres

import (
	"context"

	"github.com/teleshop/storefront/internal/favorite/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type favoriteRepository struct{ db *gorm.DB }

// NewFavoriteRepository 创建收藏仓储实现
func NewFavoriteRepository(db *gorm.DB) domain.FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID int64, productID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Favorite{UserID: userID, ProductID: productID}).Error
}

func (r *favoriteRepository) Remove(ctx context.Context, userID int64, productID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.Favorite{}).Error
}

func (r *favoriteRepository) ListProductIDs(ctx context.Context, userID int64) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("product_id", &ids).Error
	return ids, err
}
