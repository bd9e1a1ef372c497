package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleshop/storefront/internal/pricelist/domain"
)

type fakeProduct struct {
	id      uint
	article string
	name    string
	price   decimal.Decimal
}

type historyRow struct {
	productID uint
	price     decimal.Decimal
}

// fakeStore 内存版目录与价格写入器，语义对齐 postgres 适配器
type fakeStore struct {
	products   []*fakeProduct
	history    []historyRow
	writeError error
}

func (f *fakeStore) ByArticle(_ context.Context, article string) (*domain.CatalogProduct, error) {
	for _, p := range f.products {
		if strings.EqualFold(p.article, article) {
			return f.view(p), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ByNameLike(_ context.Context, name string) (*domain.CatalogProduct, error) {
	lower := strings.ToLower(name)
	var candidates []*fakeProduct
	for _, p := range f.products {
		pl := strings.ToLower(p.name)
		if strings.Contains(pl, lower) || strings.Contains(lower, pl) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].name) != len(candidates[j].name) {
			return len(candidates[i].name) < len(candidates[j].name)
		}
		return candidates[i].id < candidates[j].id
	})
	return f.view(candidates[0]), nil
}

func (f *fakeStore) ApplyPrice(_ context.Context, productID uint, previous, next decimal.Decimal) error {
	if f.writeError != nil {
		return f.writeError
	}
	for _, p := range f.products {
		if p.id == productID {
			f.history = append(f.history, historyRow{productID: productID, price: previous})
			p.price = next
			return nil
		}
	}
	return errors.New("product not found")
}

func (f *fakeStore) view(p *fakeProduct) *domain.CatalogProduct {
	return &domain.CatalogProduct{ID: p.id, Article: p.article, Name: p.name, Price: p.price}
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	events []publishedEvent
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, event any) error {
	f.events = append(f.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

type fakeInvalidator struct {
	patterns []string
}

func (f *fakeInvalidator) DeletePattern(_ context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	return nil
}

func newTestStore() *fakeStore {
	return &fakeStore{products: []*fakeProduct{
		{id: 1, article: "IPHONE15PRO", name: "iPhone 15 Pro", price: decimal.NewFromInt(130000)},
		{id: 2, article: "CASE-SIL", name: "Чехол силиконовый", price: decimal.NewFromInt(2000)},
	}}
}

func TestServiceApply(t *testing.T) {
	ctx := context.Background()

	t.Run("partial success keeps earlier updates", func(t *testing.T) {
		store := newTestStore()
		publisher := &fakePublisher{}
		cache := &fakeInvalidator{}
		svc := NewService(store, store, publisher, cache, "storefront.prices")

		result, err := svc.Apply(ctx, "IPHONE15PRO;iPhone 15 Pro;125000\nUNKNOWN-SKU;Ghost;999")
		require.NoError(t, err)

		assert.Equal(t, 1, result.Success)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 2, result.Errors[0].Line)
		assert.Equal(t, "UNKNOWN-SKU", result.Errors[0].Article)
		assert.Equal(t, "product not found", result.Errors[0].Reason)

		// 成功条目已落库：历史里是旧价格，商品价格是新价格
		require.Len(t, store.history, 1)
		assert.Equal(t, uint(1), store.history[0].productID)
		assert.True(t, store.history[0].price.Equal(decimal.NewFromInt(130000)))
		assert.True(t, store.products[0].price.Equal(decimal.NewFromInt(125000)))

		// 事件与缓存失效只针对成功条目
		require.Len(t, publisher.events, 1)
		event, ok := publisher.events[0].event.(domain.PriceUpdatedEvent)
		require.True(t, ok)
		assert.Equal(t, uint(1), event.ProductID)
		assert.True(t, event.OldPrice.Equal(decimal.NewFromInt(130000)))
		assert.True(t, event.NewPrice.Equal(decimal.NewFromInt(125000)))
		assert.Equal(t, []string{"catalog:*"}, cache.patterns)
	})

	t.Run("empty content", func(t *testing.T) {
		store := newTestStore()
		svc := NewService(store, store, nil, nil, "")

		_, err := svc.Apply(ctx, "привет\nкак дела")
		assert.ErrorIs(t, err, ErrEmptyPriceList)
	})

	t.Run("validation warnings block commit", func(t *testing.T) {
		store := newTestStore()
		svc := NewService(store, store, nil, nil, "")

		_, err := svc.Apply(ctx, "IPHONE15PRO;iPhone;125000\niphone15pro;iPhone дубль;126000")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Len(t, vErr.Warnings, 1)
		assert.Contains(t, vErr.Warnings[0], "duplicate entry")

		// 整个批次未触碰数据
		assert.Empty(t, store.history)
		assert.True(t, store.products[0].price.Equal(decimal.NewFromInt(130000)))
	})

	t.Run("write failure recorded per entry", func(t *testing.T) {
		store := newTestStore()
		store.writeError = errors.New("connection reset")
		svc := NewService(store, store, nil, nil, "")

		result, err := svc.Apply(ctx, "IPHONE15PRO;iPhone 15 Pro;125000")
		require.NoError(t, err)
		assert.Equal(t, 0, result.Success)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, "connection reset", result.Errors[0].Reason)
	})

	t.Run("name-only entries match by substring", func(t *testing.T) {
		store := newTestStore()
		svc := NewService(store, store, nil, nil, "")

		result, err := svc.Apply(ctx, "Чехол силиконовый: 1800₽")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Success)
		assert.True(t, store.products[1].price.Equal(decimal.NewFromInt(1800)))
	})
}

func TestServicePreview(t *testing.T) {
	ctx := context.Background()

	t.Run("does not touch data", func(t *testing.T) {
		store := newTestStore()
		publisher := &fakePublisher{}
		cache := &fakeInvalidator{}
		svc := NewService(store, store, publisher, cache, "storefront.prices")

		preview, err := svc.PreviewContent(ctx, "IPHONE15PRO;iPhone 15 Pro;125000\nUNKNOWN-SKU;Ghost;999")
		require.NoError(t, err)

		assert.Equal(t, 2, preview.Summary.Total)
		assert.Equal(t, 1, preview.Summary.Found)
		assert.Equal(t, 1, preview.Summary.NotFound)
		assert.Equal(t, 1, preview.Summary.PriceDecreased)

		require.Len(t, preview.Items, 2)
		first := preview.Items[0]
		assert.True(t, first.Found)
		assert.Equal(t, uint(1), first.ProductID)
		require.NotNil(t, first.CurrentPrice)
		assert.True(t, first.CurrentPrice.Equal(decimal.NewFromInt(130000)))
		require.NotNil(t, first.PriceChange)
		assert.True(t, first.PriceChange.Equal(decimal.NewFromInt(-5000)))
		assert.False(t, preview.Items[1].Found)

		assert.Empty(t, store.history)
		assert.Empty(t, publisher.events)
		assert.Empty(t, cache.patterns)
		assert.True(t, store.products[0].price.Equal(decimal.NewFromInt(130000)))
	})

	t.Run("warnings are informational", func(t *testing.T) {
		store := newTestStore()
		svc := NewService(store, store, nil, nil, "")

		preview, err := svc.PreviewContent(ctx, "IPHONE15PRO;iPhone;125000\nIPHONE15PRO;дубль;126000")
		require.NoError(t, err)
		require.Len(t, preview.ValidationErrors, 1)
		assert.Contains(t, preview.ValidationErrors[0], "duplicate entry")
		assert.Equal(t, 2, preview.Summary.Total)
	})

	t.Run("matches agree with apply", func(t *testing.T) {
		content := "IPHONE15PRO;iPhone 15 Pro;125000\nЧехол силиконовый: 1800₽\nUNKNOWN;Ghost;999"

		previewStore := newTestStore()
		previewSvc := NewService(previewStore, previewStore, nil, nil, "")
		preview, err := previewSvc.PreviewContent(ctx, content)
		require.NoError(t, err)

		applyStore := newTestStore()
		applySvc := NewService(applyStore, applyStore, nil, nil, "")
		result, err := applySvc.Apply(ctx, content)
		require.NoError(t, err)

		assert.Equal(t, preview.Summary.Found, result.Success)
		assert.Equal(t, preview.Summary.NotFound, result.Failed)
	})

	t.Run("empty content", func(t *testing.T) {
		store := newTestStore()
		svc := NewService(store, store, nil, nil, "")

		_, err := svc.PreviewContent(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyPriceList)
	})
}
