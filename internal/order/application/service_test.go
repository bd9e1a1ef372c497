package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/teleshop/storefront/internal/cart/domain"
	catalogdomain "github.com/teleshop/storefront/internal/catalog/domain"
	"github.com/teleshop/storefront/internal/order/domain"
)

type fakeOrderRepo struct {
	orders map[uint]*domain.Order
	nextID uint
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint]*domain.Order), nextID: 1}
}

func (f *fakeOrderRepo) Save(_ context.Context, order *domain.Order) error {
	if order.ID == 0 {
		order.ID = f.nextID
		f.nextID++
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uint) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]*domain.Order, int64, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) List(_ context.Context, status domain.Status, _, _ int) ([]*domain.Order, int64, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

type fakeCartRepo struct {
	carts   map[int64]*cartdomain.Cart
	cleared []int64
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[int64]*cartdomain.Cart)}
}

func (f *fakeCartRepo) GetByUserID(_ context.Context, userID int64) (*cartdomain.Cart, error) {
	if cart, ok := f.carts[userID]; ok {
		return cart, nil
	}
	return &cartdomain.Cart{UserID: userID}, nil
}

func (f *fakeCartRepo) Save(_ context.Context, cart *cartdomain.Cart) error {
	f.carts[cart.UserID] = cart
	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, userID int64) error {
	f.cleared = append(f.cleared, userID)
	delete(f.carts, userID)
	return nil
}

type stubProductRepo struct {
	products map[uint]*catalogdomain.Product
}

func (f *stubProductRepo) GetByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, catalogdomain.ErrProductNotFound
}

func (f *stubProductRepo) Save(context.Context, *catalogdomain.Product) error { return nil }
func (f *stubProductRepo) GetByArticle(context.Context, string) (*catalogdomain.Product, error) {
	return nil, catalogdomain.ErrProductNotFound
}
func (f *stubProductRepo) ListByIDs(context.Context, []uint) ([]*catalogdomain.Product, error) {
	return nil, nil
}
func (f *stubProductRepo) List(context.Context, string, int, int) ([]*catalogdomain.Product, int64, error) {
	return nil, 0, nil
}
func (f *stubProductRepo) Search(context.Context, string, int, int) ([]*catalogdomain.Product, int64, error) {
	return nil, 0, nil
}
func (f *stubProductRepo) Delete(context.Context, uint) error { return nil }

func newCheckoutFixture() (*OrderService, *fakeOrderRepo, *fakeCartRepo, *stubProductRepo) {
	orders := newFakeOrderRepo()
	carts := newFakeCartRepo()
	products := &stubProductRepo{products: map[uint]*catalogdomain.Product{}}

	iphone := &catalogdomain.Product{
		Article: "IPHONE15PRO",
		Name:    "iPhone 15 Pro",
		Price:   decimal.NewFromInt(125000),
		InStock: true,
	}
	iphone.ID = 1
	products.products[1] = iphone

	svc := NewOrderService(orders, carts, products, nil, "")
	return svc, orders, carts, products
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("creates order from cart at current catalog price", func(t *testing.T) {
		svc, _, carts, _ := newCheckoutFixture()

		cart := &cartdomain.Cart{UserID: 42}
		// 快照价格已过时，下单时应取目录价
		cart.AddItem(1, 2, decimal.NewFromInt(130000))
		require.NoError(t, carts.Save(ctx, cart))

		order, err := svc.Checkout(ctx, CheckoutCommand{UserID: 42, Username: "ivan"})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusNew, order.Status)
		require.Len(t, order.Items, 1)
		assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(125000)))
		assert.True(t, order.Total.Equal(decimal.NewFromInt(250000)))
		assert.Equal(t, []int64{42}, carts.cleared)
	})

	t.Run("empty cart", func(t *testing.T) {
		svc, _, _, _ := newCheckoutFixture()
		_, err := svc.Checkout(ctx, CheckoutCommand{UserID: 7})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("vanished product fails checkout", func(t *testing.T) {
		svc, _, carts, _ := newCheckoutFixture()

		cart := &cartdomain.Cart{UserID: 42}
		cart.AddItem(99, 1, decimal.NewFromInt(100))
		require.NoError(t, carts.Save(ctx, cart))

		_, err := svc.Checkout(ctx, CheckoutCommand{UserID: 42})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no longer available")
		assert.Empty(t, carts.cleared)
	})

	t.Run("out of stock fails checkout", func(t *testing.T) {
		svc, _, carts, products := newCheckoutFixture()
		products.products[1].InStock = false

		cart := &cartdomain.Cart{UserID: 42}
		cart.AddItem(1, 1, decimal.NewFromInt(125000))
		require.NoError(t, carts.Save(ctx, cart))

		_, err := svc.Checkout(ctx, CheckoutCommand{UserID: 42})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of stock")
	})
}

func TestGetOrderOwnership(t *testing.T) {
	ctx := context.Background()
	svc, orders, _, _ := newCheckoutFixture()

	order := domain.NewOrder(42, "ivan", "", nil)
	require.NoError(t, orders.Save(ctx, order))

	t.Run("owner sees order", func(t *testing.T) {
		got, err := svc.GetOrder(ctx, order.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, order.Number, got.Number)
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, order.ID, 7)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("admin passes zero user id", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, order.ID, 0)
		assert.NoError(t, err)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, orders, _, _ := newCheckoutFixture()

	order := domain.NewOrder(42, "", "", nil)
	require.NoError(t, orders.Save(ctx, order))

	updated, err := svc.UpdateStatus(ctx, order.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, domain.StatusNew)
	assert.Error(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, domain.Status("shipped"))
	assert.Error(t, err)
}

func TestListOrdersStatusFilter(t *testing.T) {
	ctx := context.Background()
	svc, orders, _, _ := newCheckoutFixture()

	a := domain.NewOrder(1, "", "", nil)
	require.NoError(t, orders.Save(ctx, a))
	b := domain.NewOrder(2, "", "", nil)
	b.Status = domain.StatusConfirmed
	require.NoError(t, orders.Save(ctx, b))

	all, err := svc.ListOrders(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	confirmed, err := svc.ListOrders(ctx, domain.StatusConfirmed, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), confirmed.Total)

	_, err = svc.ListOrders(ctx, domain.Status("bogus"), 1, 20)
	assert.Error(t, err)
}
