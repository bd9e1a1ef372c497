package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart 购物车，每个 Telegram 用户一份
type Cart struct {
	gorm.Model
	UserID int64      `gorm:"column:user_id;uniqueIndex;not null"`
	Items  []CartItem `gorm:"foreignKey:CartID"`
}

func (Cart) TableName() string { return "carts" }

// CartItem 购物车条目；Price 是加购时的快照价格
type CartItem struct {
	gorm.Model
	CartID    uint            `gorm:"column:cart_id;index;not null"`
	ProductID uint            `gorm:"column:product_id;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
}

func (CartItem) TableName() string { return "cart_items" }

// Total 购物车总价
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// AddItem 加购；商品已在购物车中则累加数量
func (c *Cart) AddItem(productID uint, qty int, price decimal.Decimal) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			c.Items[i].Price = price
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: qty, Price: price})
}

// SetQuantity 设置数量；qty <= 0 时移除该条目。商品不在购物车则返回 false。
func (c *Cart) SetQuantity(productID uint, qty int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if qty <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = qty
			}
			return true
		}
	}
	return false
}

// RemoveItem 移除条目；不存在时返回 false
func (c *Cart) RemoveItem(productID uint) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear 清空购物车
func (c *Cart) Clear() {
	c.Items = nil
}

// IsEmpty 购物车是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
