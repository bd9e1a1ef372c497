package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 商品目录中的商品；Article 是店内唯一的 SKU 编码
type Product struct {
	gorm.Model
	Article     string          `gorm:"column:article;type:varchar(64);uniqueIndex;not null"`
	Name        string          `gorm:"column:name;type:varchar(255);not null"`
	Description string          `gorm:"column:description;type:text"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
	Category    string          `gorm:"column:category;type:varchar(100);index"`
	ImageURL    string          `gorm:"column:image_url;type:varchar(512)"`
	InStock     bool            `gorm:"column:in_stock;not null;default:true"`
}

func (Product) TableName() string { return "products" }
