package domain

import "context"

// CartRepository 购物车仓储接口
type CartRepository interface {
	// GetByUserID 获取用户购物车；不存在则返回一个空购物车（不落库）
	GetByUserID(ctx context.Context, userID int64) (*Cart, error)
	// Save 保存整个购物车聚合（含条目替换）
	Save(ctx context.Context, cart *Cart) error
	// Clear 删除用户购物车的全部条目
	Clear(ctx context.Context, userID int64) error
}
