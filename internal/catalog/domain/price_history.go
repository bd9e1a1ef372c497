package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceHistory 价格变更审计记录，只追加，记录覆盖前的旧价格
type PriceHistory struct {
	ID        uint            `gorm:"primaryKey"`
	ProductID uint            `gorm:"column:product_id;index;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;index"`
}

func (PriceHistory) TableName() string { return "price_history" }
