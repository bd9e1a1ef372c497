package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status 订单状态
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions 允许的状态迁移
var transitions = map[Status][]Status{
	StatusNew:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order 订单聚合
type Order struct {
	gorm.Model
	Number   string          `gorm:"column:number;type:varchar(32);uniqueIndex;not null"`
	UserID   int64           `gorm:"column:user_id;index;not null"`
	Username string          `gorm:"column:username;type:varchar(128)"`
	Status   Status          `gorm:"column:status;type:varchar(16);index;not null"`
	Total    decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null"`
	Comment  string          `gorm:"column:comment;type:text"`
	Items    []OrderItem     `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单条目，下单时从目录快照名称和价格
type OrderItem struct {
	gorm.Model
	OrderID   uint            `gorm:"column:order_id;index;not null"`
	ProductID uint            `gorm:"column:product_id;not null"`
	Article   string          `gorm:"column:article;type:varchar(64)"`
	Name      string          `gorm:"column:name;type:varchar(255);not null"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
}

func (OrderItem) TableName() string { return "order_items" }

// NewOrder 创建新订单并计算总价
func NewOrder(userID int64, username, comment string, items []OrderItem) *Order {
	order := &Order{
		Number:   newOrderNumber(),
		UserID:   userID,
		Username: username,
		Status:   StatusNew,
		Comment:  comment,
		Items:    items,
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.Total = total

	return order
}

// Transition 迁移订单状态；非法迁移返回错误
func (o *Order) Transition(next Status) error {
	for _, allowed := range transitions[o.Status] {
		if allowed == next {
			o.Status = next
			return nil
		}
	}
	return fmt.Errorf("cannot transition order from %q to %q", o.Status, next)
}

// newOrderNumber 生成人类可读的短订单号
func newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + id[:10]
}
