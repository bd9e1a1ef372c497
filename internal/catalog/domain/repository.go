package domain

import "context"

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetByArticle(ctx context.Context, article string) (*Product, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*Product, error)
	List(ctx context.Context, category string, offset, limit int) ([]*Product, int64, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*Product, int64, error)
	Delete(ctx context.Context, id uint) error
}

// PriceHistoryRepository 价格历史仓储接口；记录只插入，不更新不删除
type PriceHistoryRepository interface {
	Insert(ctx context.Context, record *PriceHistory) error
	ListByProduct(ctx context.Context, productID uint, limit int) ([]*PriceHistory, error)
}
