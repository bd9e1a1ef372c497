package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleshop/storefront/internal/catalog/domain"
)

type fakeProductRepo struct {
	products map[uint]*domain.Product
	nextID   uint
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint]*domain.Product), nextID: 1}
}

func (f *fakeProductRepo) Save(_ context.Context, product *domain.Product) error {
	if product.ID == 0 {
		product.ID = f.nextID
		f.nextID++
	}
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id uint) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) GetByArticle(_ context.Context, article string) (*domain.Product, error) {
	for _, p := range f.products {
		if strings.EqualFold(p.Article, article) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeProductRepo) ListByIDs(_ context.Context, ids []uint) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) List(_ context.Context, category string, offset, limit int) ([]*domain.Product, int64, error) {
	var out []*domain.Product
	for _, p := range f.products {
		if category == "" || p.Category == category {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductRepo) Search(_ context.Context, query string, offset, limit int) ([]*domain.Product, int64, error) {
	var out []*domain.Product
	lower := strings.ToLower(query)
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), lower) {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uint) error {
	delete(f.products, id)
	return nil
}

type fakeHistoryRepo struct {
	records []*domain.PriceHistory
}

func (f *fakeHistoryRepo) Insert(_ context.Context, record *domain.PriceHistory) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistoryRepo) ListByProduct(_ context.Context, productID uint, _ int) ([]*domain.PriceHistory, error) {
	var out []*domain.PriceHistory
	for _, r := range f.records {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

type spyCache struct {
	data     map[string][]byte
	deleted  []string
	disabled bool
}

func newSpyCache() *spyCache { return &spyCache{data: make(map[string][]byte)} }

func (c *spyCache) GetJSON(_ context.Context, key string, _ interface{}) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

func (c *spyCache) SetJSON(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	c.data[key] = []byte("x")
	return nil
}

func (c *spyCache) DeletePattern(_ context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	for k := range c.data {
		delete(c.data, k)
	}
	return nil
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	history := &fakeHistoryRepo{}
	svc := NewCatalogService(repo, history, nil, nil, "")

	product, err := svc.CreateProduct(ctx, CreateProductCommand{
		Article: "IPHONE15PRO",
		Name:    "iPhone 15 Pro",
		Price:   decimal.NewFromInt(130000),
		InStock: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)

	t.Run("duplicate article rejected", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, CreateProductCommand{
			Article: "iphone15pro",
			Name:    "Другой товар",
			Price:   decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, domain.ErrArticleTaken)
	})
}

func TestUpdateProductRecordsHistory(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	history := &fakeHistoryRepo{}
	svc := NewCatalogService(repo, history, nil, nil, "")

	product, err := svc.CreateProduct(ctx, CreateProductCommand{
		Article: "CASE-SIL",
		Name:    "Чехол",
		Price:   decimal.NewFromInt(2000),
		InStock: true,
	})
	require.NoError(t, err)

	t.Run("price change writes previous price", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{
			ID:      product.ID,
			Name:    "Чехол",
			Price:   decimal.NewFromInt(1800),
			InStock: true,
		})
		require.NoError(t, err)
		require.Len(t, history.records, 1)
		assert.Equal(t, product.ID, history.records[0].ProductID)
		assert.True(t, history.records[0].Price.Equal(decimal.NewFromInt(2000)))

		updated, err := svc.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.True(t, updated.Price.Equal(decimal.NewFromInt(1800)))
	})

	t.Run("same price skips history", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{
			ID:      product.ID,
			Name:    "Чехол обновлённый",
			Price:   decimal.NewFromInt(1800),
			InStock: true,
		})
		require.NoError(t, err)
		assert.Len(t, history.records, 1)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{ID: 999, Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestCatalogCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	history := &fakeHistoryRepo{}
	cache := newSpyCache()
	svc := NewCatalogService(repo, history, nil, cache, "")

	product, err := svc.CreateProduct(ctx, CreateProductCommand{
		Article: "PIXEL8",
		Name:    "Pixel 8",
		Price:   decimal.NewFromInt(70000),
		InStock: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, cache.deleted)

	// 第一次读填充缓存
	_, err = svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, cache.data)

	// 更新后缓存整体失效
	before := len(cache.deleted)
	_, err = svc.UpdateProduct(ctx, UpdateProductCommand{
		ID:      product.ID,
		Name:    "Pixel 8",
		Price:   decimal.NewFromInt(65000),
		InStock: true,
	})
	require.NoError(t, err)
	assert.Greater(t, len(cache.deleted), before)
	assert.Empty(t, cache.data)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	svc := NewCatalogService(repo, &fakeHistoryRepo{}, nil, nil, "")

	product, err := svc.CreateProduct(ctx, CreateProductCommand{
		Article: "DEL-1",
		Name:    "Удаляемый",
		Price:   decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	_, err = svc.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
