package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventPublisher 订单事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

// OrderCreatedEvent 订单创建事件，notifier 据此向管理员发送 Telegram 通知
type OrderCreatedEvent struct {
	OrderID   uint             `json:"order_id"`
	Number    string           `json:"number"`
	UserID    int64            `json:"user_id"`
	Username  string           `json:"username,omitempty"`
	Total     decimal.Decimal  `json:"total"`
	Comment   string           `json:"comment,omitempty"`
	Items     []OrderEventItem `json:"items"`
	Timestamp time.Time        `json:"timestamp"`
}

// OrderEventItem 事件中的订单条目摘要
type OrderEventItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderID   uint      `json:"order_id"`
	Number    string    `json:"number"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}
