package domain

import (
	"context"
	"time"
)

// Favorite 用户收藏的商品
type Favorite struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_favorites_user_product"`
	ProductID uint      `gorm:"column:product_id;not null;uniqueIndex:idx_favorites_user_product"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Favorite) TableName() string { return "favorites" }

// FavoriteRepository 收藏仓储接口
type FavoriteRepository interface {
	// Add 添加收藏；重复添加幂等
	Add(ctx context.Context, userID int64, productID uint) error
	Remove(ctx context.Context, userID int64, productID uint) error
	// ListProductIDs 按收藏时间倒序返回商品 id
	ListProductIDs(ctx context.Context, userID int64) ([]uint, error)
}
