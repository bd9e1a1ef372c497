package postgres

import (
	"context"
	"errors"

	"github.com/teleshop/storefront/internal/order/domain"
	"gorm.io/gorm"
)

type orderRepository struct{ db *gorm.DB }

// NewOrderRepository 创建订单仓储实现
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*domain.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{}).Where("user_id = ?", userID)
	return r.list(q, offset, limit)
}

func (r *orderRepository) List(ctx context.Context, status domain.Status, offset, limit int) ([]*domain.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.list(q, offset, limit)
}

func (r *orderRepository) list(q *gorm.DB, offset, limit int) ([]*domain.Order, int64, error) {
	var orders []*domain.Order
	var total int64

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}
