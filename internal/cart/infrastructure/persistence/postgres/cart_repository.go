package postgres

import (
	"context"
	"errors"

	"github.com/teleshop/storefront/internal/cart/domain"
	"gorm.io/gorm"
)

type cartRepository struct{ db *gorm.DB }

// NewCartRepository 创建购物车仓储实现
func NewCartRepository(db *gorm.DB) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save 整体替换购物车条目后保存聚合
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cart.ID == 0 {
			return tx.Create(cart).Error
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(cart).Error
	})
}

func (r *cartRepository) Clear(ctx context.Context, userID int64) error {
	var cart domain.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error
}
