package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	cartdomain "github.com/teleshop/storefront/internal/cart/domain"
	catalogdomain "github.com/teleshop/storefront/internal/catalog/domain"
	"github.com/teleshop/storefront/internal/order/domain"
	"github.com/teleshop/storefront/pkg/logger"
)

// ErrEmptyCart 购物车为空，无法下单
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutCommand 下单命令
type CheckoutCommand struct {
	UserID   int64
	Username string
	Comment  string
}

// OrderService 订单应用服务
type OrderService struct {
	orders    domain.OrderRepository
	carts     cartdomain.CartRepository
	products  catalogdomain.ProductRepository
	publisher domain.EventPublisher
	topic     string
}

// NewOrderService 创建订单应用服务；publisher 可为 nil
func NewOrderService(
	orders domain.OrderRepository,
	carts cartdomain.CartRepository,
	products catalogdomain.ProductRepository,
	publisher domain.EventPublisher,
	topic string,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		products:  products,
		publisher: publisher,
		topic:     topic,
	}
}

// Checkout 从购物车创建订单。条目价格以下单时的目录价为准（不是加购快照），
// 成功后清空购物车并发布订单创建事件。
func (s *OrderService) Checkout(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error) {
	cart, err := s.carts.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		product, err := s.products.GetByID(ctx, cartItem.ProductID)
		if err != nil {
			if errors.Is(err, catalogdomain.ErrProductNotFound) {
				return nil, fmt.Errorf("product %d is no longer available", cartItem.ProductID)
			}
			return nil, err
		}
		if !product.InStock {
			return nil, fmt.Errorf("product %q is out of stock", product.Name)
		}

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Article:   product.Article,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  cartItem.Quantity,
		})
	}

	order := domain.NewOrder(cmd.UserID, cmd.Username, cmd.Comment, items)
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, cmd.UserID); err != nil {
		logger.Warn(ctx, "Failed to clear cart after checkout",
			"user_id", cmd.UserID,
			"order", order.Number,
			"error", err,
		)
	}

	s.publishCreated(ctx, order)

	logger.Info(ctx, "Order created",
		"order", order.Number,
		"user_id", cmd.UserID,
		"total", order.Total,
	)
	return order, nil
}

// GetOrder 获取订单；userID 非零时校验归属
func (s *OrderService) GetOrder(ctx context.Context, id uint, userID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != 0 && order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListResult 分页订单列表
type ListResult struct {
	Items []*domain.Order `json:"items"`
	Total int64           `json:"total"`
}

// ListUserOrders 用户自己的订单
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, page, size int) (*ListResult, error) {
	offset, limit := paginate(page, size)
	items, total, err := s.orders.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// ListOrders 管理端订单列表
func (s *OrderService) ListOrders(ctx context.Context, status domain.Status, page, size int) (*ListResult, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown order status %q", status)
	}
	offset, limit := paginate(page, size)
	items, total, err := s.orders.List(ctx, status, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// UpdateStatus 管理端迁移订单状态
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, next domain.Status) (*domain.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown order status %q", next)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if err := order.Transition(next); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order.Number, domain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		Number:    order.Number,
		OldStatus: previous,
		NewStatus: next,
		Timestamp: time.Now(),
	})
	return order, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *domain.Order) {
	eventItems := make([]domain.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		eventItems = append(eventItems, domain.OrderEventItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	s.publishEvent(ctx, order.Number, domain.OrderCreatedEvent{
		OrderID:   order.ID,
		Number:    order.Number,
		UserID:    order.UserID,
		Username:  order.Username,
		Total:     order.Total,
		Comment:   order.Comment,
		Items:     eventItems,
		Timestamp: time.Now(),
	})
}

func (s *OrderService) publishEvent(ctx context.Context, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, key, event); err != nil {
		logger.Warn(ctx, "Failed to publish order event", "key", key, "error", err)
	}
}

func paginate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}
