package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleshop/storefront/internal/cart/domain"
	catalogdomain "github.com/teleshop/storefront/internal/catalog/domain"
)

type memCartRepo struct {
	carts map[int64]*domain.Cart
}

func (m *memCartRepo) GetByUserID(_ context.Context, userID int64) (*domain.Cart, error) {
	if cart, ok := m.carts[userID]; ok {
		return cart, nil
	}
	return &domain.Cart{UserID: userID}, nil
}

func (m *memCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	m.carts[cart.UserID] = cart
	return nil
}

func (m *memCartRepo) Clear(_ context.Context, userID int64) error {
	delete(m.carts, userID)
	return nil
}

type memProductRepo struct {
	products map[uint]*catalogdomain.Product
}

func (m *memProductRepo) GetByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, catalogdomain.ErrProductNotFound
}

func (m *memProductRepo) Save(context.Context, *catalogdomain.Product) error { return nil }
func (m *memProductRepo) GetByArticle(context.Context, string) (*catalogdomain.Product, error) {
	return nil, catalogdomain.ErrProductNotFound
}
func (m *memProductRepo) ListByIDs(context.Context, []uint) ([]*catalogdomain.Product, error) {
	return nil, nil
}
func (m *memProductRepo) List(context.Context, string, int, int) ([]*catalogdomain.Product, int64, error) {
	return nil, 0, nil
}
func (m *memProductRepo) Search(context.Context, string, int, int) ([]*catalogdomain.Product, int64, error) {
	return nil, 0, nil
}
func (m *memProductRepo) Delete(context.Context, uint) error { return nil }

func newCartFixture() (*CartService, *memProductRepo) {
	products := &memProductRepo{products: map[uint]*catalogdomain.Product{}}
	p := &catalogdomain.Product{Name: "Чехол", Price: decimal.NewFromInt(1800), InStock: true}
	p.ID = 1
	products.products[1] = p

	return NewCartService(&memCartRepo{carts: map[int64]*domain.Cart{}}, products), products
}

func TestCartAddItemSnapshotsCatalogPrice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCartFixture()

	cart, err := svc.AddItem(ctx, 42, 1, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Price.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartAddItemErrors(t *testing.T) {
	ctx := context.Background()
	svc, products := newCartFixture()

	_, err := svc.AddItem(ctx, 42, 1, 0)
	assert.Error(t, err)

	_, err = svc.AddItem(ctx, 42, 99, 1)
	assert.ErrorIs(t, err, catalogdomain.ErrProductNotFound)

	products.products[1].InStock = false
	_, err = svc.AddItem(ctx, 42, 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of stock")
}

func TestCartSetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCartFixture()

	_, err := svc.AddItem(ctx, 42, 1, 1)
	require.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, 42, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	_, err = svc.SetQuantity(ctx, 42, 99, 1)
	assert.Error(t, err)

	cart, err = svc.RemoveItem(ctx, 42, 1)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	_, err = svc.RemoveItem(ctx, 42, 1)
	assert.Error(t, err)
}

func TestCartIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCartFixture()

	_, err := svc.AddItem(ctx, 42, 1, 1)
	require.NoError(t, err)

	other, err := svc.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}
