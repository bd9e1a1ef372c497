package application

import (
	"context"

	catalogdomain "github.com/teleshop/storefront/internal/catalog/domain"
	"github.com/teleshop/storefront/internal/favorite/domain"
)

// FavoriteService 收藏应用服务
type FavoriteService struct {
	favorites domain.FavoriteRepository
	products  catalogdomain.ProductRepository
}

// NewFavoriteService 创建收藏应用服务
func NewFavoriteService(favorites domain.FavoriteRepository, products catalogdomain.ProductRepository) *FavoriteService {
	return &FavoriteService{favorites: favorites, products: products}
}

// Add 收藏商品；商品必须存在
func (s *FavoriteService) Add(ctx context.Context, userID int64, productID uint) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.favorites.Add(ctx, userID, productID)
}

// Remove 取消收藏
func (s *FavoriteService) Remove(ctx context.Context, userID int64, productID uint) error {
	return s.favorites.Remove(ctx, userID, productID)
}

// List 列出用户收藏的商品，保持收藏时间倒序
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]*catalogdomain.Product, error) {
	ids, err := s.favorites.ListProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*catalogdomain.Product{}, nil
	}

	products, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// ListByIDs 不保序，按收藏顺序重排
	byID := make(map[uint]*catalogdomain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]*catalogdomain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}
