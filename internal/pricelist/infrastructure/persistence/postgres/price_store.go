package postgres

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/teleshop/storefront/internal/catalog/domain"
	"github.com/teleshop/storefront/internal/pricelist/domain"
	"github.com/teleshop/storefront/pkg/db"
	"gorm.io/gorm"
)

// PriceStore 价格表管线对商品表的读写实现。
// 读路径实现 domain.Catalog，写路径实现 domain.PriceWriter。
type PriceStore struct {
	db *db.DB
}

// NewPriceStore 创建 PriceStore
func NewPriceStore(database *db.DB) *PriceStore {
	return &PriceStore{db: database}
}

var (
	_ domain.Catalog     = (*PriceStore)(nil)
	_ domain.PriceWriter = (*PriceStore)(nil)
)

// ByArticle SKU 编码精确匹配，大小写不敏感；无匹配返回 (nil, nil)
func (s *PriceStore) ByArticle(ctx context.Context, article string) (*domain.CatalogProduct, error) {
	var p catalogdomain.Product
	err := s.db.WithContext(ctx).
		Where("LOWER(article) = LOWER(?)", article).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toCatalogProduct(&p), nil
}

// ByNameLike 名称子串匹配，双向包含，大小写不敏感。
// 多个候选时取名称最短者，再按 id 升序，结果确定。
func (s *PriceStore) ByNameLike(ctx context.Context, name string) (*domain.CatalogProduct, error) {
	var p catalogdomain.Product
	pattern := "%" + name + "%"
	err := s.db.WithContext(ctx).
		Where("name ILIKE ? OR ? ILIKE CONCAT('%', name, '%')", pattern, name).
		Order("LENGTH(name) ASC, id ASC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toCatalogProduct(&p), nil
}

// ApplyPrice 在一个事务里先登记价格历史（覆盖前的旧价格），再更新商品价格
func (s *PriceStore) ApplyPrice(ctx context.Context, productID uint, previous, next decimal.Decimal) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&catalogdomain.PriceHistory{
			ProductID: productID,
			Price:     previous,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&catalogdomain.Product{}).
			Where("id = ?", productID).
			Update("price", next).Error
	})
}

func toCatalogProduct(p *catalogdomain.Product) *domain.CatalogProduct {
	return &domain.CatalogProduct{
		ID:      p.ID,
		Article: p.Article,
		Name:    p.Name,
		Price:   p.Price,
	}
}
