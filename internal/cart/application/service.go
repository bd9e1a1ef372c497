package application

import (
	"context"
	"fmt"

	catalogdomain "github.com/teleshop/storefront/internal/catalog/domain"
	"github.com/teleshop/storefront/internal/cart/domain"
)

// CartService 购物车应用服务
type CartService struct {
	carts    domain.CartRepository
	products catalogdomain.ProductRepository
}

// NewCartService 创建购物车应用服务
func NewCartService(carts domain.CartRepository, products catalogdomain.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetCart 获取用户购物车
func (s *CartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.carts.GetByUserID(ctx, userID)
}

// AddItem 加购商品，价格取商品当前目录价作为快照
func (s *CartService) AddItem(ctx context.Context, userID int64, productID uint, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock {
		return nil, fmt.Errorf("product %q is out of stock", product.Name)
	}

	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.AddItem(product.ID, qty, product.Price)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity 修改条目数量；0 视为移除
func (s *CartService) SetQuantity(ctx context.Context, userID int64, productID uint, qty int) (*domain.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.SetQuantity(productID, qty) {
		return nil, fmt.Errorf("product %d is not in the cart", productID)
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem 移除条目
func (s *CartService) RemoveItem(ctx context.Context, userID int64, productID uint) (*domain.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.RemoveItem(productID) {
		return nil, fmt.Errorf("product %d is not in the cart", productID)
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart 清空购物车
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	return s.carts.Clear(ctx, userID)
}
