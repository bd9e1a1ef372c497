package domain

import (
	"context"
	"errors"
)

// ErrOrderNotFound 订单不存在
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*Order, int64, error)
	// List 管理端列表；status 为空时不过滤
	List(ctx context.Context, status Status, offset, limit int) ([]*Order, int64, error)
}
