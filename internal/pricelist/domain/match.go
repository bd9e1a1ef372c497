package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CatalogProduct 匹配所需的商品视图
type CatalogProduct struct {
	ID      uint
	Article string
	Name    string
	Price   decimal.Decimal
}

// Catalog 商品目录的只读端口。两个方法在无匹配时返回 (nil, nil)。
type Catalog interface {
	// ByArticle 按 SKU 编码精确查找，大小写不敏感
	ByArticle(ctx context.Context, article string) (*CatalogProduct, error)
	// ByNameLike 按名称子串查找（双向包含，大小写不敏感）。
	// 多个候选时取名称最短者，再按 id 升序，保证结果确定。
	ByNameLike(ctx context.Context, name string) (*CatalogProduct, error)
}

// PriceWriter 价格落库端口：在一个事务里登记旧价格并写入新价格
type PriceWriter interface {
	ApplyPrice(ctx context.Context, productID uint, previous, next decimal.Decimal) error
}

// MatchResult 一条价格表条目对商品目录的解析结果。
// Found 为 true 时 ProductID、CurrentPrice 与 Delta 有效。
type MatchResult struct {
	Entry        Entry
	ProductID    uint
	ProductName  string
	CurrentPrice decimal.Decimal
	Delta        decimal.Decimal
	Found        bool
}

// Matcher 把价格表条目解析到至多一个商品。无副作用，可重复调用。
type Matcher struct {
	catalog Catalog
}

// NewMatcher 创建匹配器
func NewMatcher(catalog Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// Match 按固定顺序匹配：先 SKU 编码精确匹配，未命中再按名称子串匹配
func (m *Matcher) Match(ctx context.Context, entry Entry) (MatchResult, error) {
	result := MatchResult{Entry: entry}

	var product *CatalogProduct
	var err error

	if entry.Article != "" {
		product, err = m.catalog.ByArticle(ctx, entry.Article)
		if err != nil {
			return result, err
		}
	}

	if product == nil && entry.Name != "" {
		product, err = m.catalog.ByNameLike(ctx, entry.Name)
		if err != nil {
			return result, err
		}
	}

	if product == nil {
		return result, nil
	}

	result.Found = true
	result.ProductID = product.ID
	result.ProductName = product.Name
	result.CurrentPrice = product.Price
	result.Delta = entry.Price.Sub(product.Price)
	return result, nil
}
