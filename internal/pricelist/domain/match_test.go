package domain

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog 内存目录，匹配语义与 postgres 适配器一致
type fakeCatalog struct {
	products []CatalogProduct
}

func (f *fakeCatalog) ByArticle(_ context.Context, article string) (*CatalogProduct, error) {
	for i := range f.products {
		if strings.EqualFold(f.products[i].Article, article) {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ByNameLike(_ context.Context, name string) (*CatalogProduct, error) {
	lower := strings.ToLower(name)
	var candidates []CatalogProduct
	for _, p := range f.products {
		pl := strings.ToLower(p.Name)
		if strings.Contains(pl, lower) || strings.Contains(lower, pl) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].Name) != len(candidates[j].Name) {
			return len(candidates[i].Name) < len(candidates[j].Name)
		}
		return candidates[i].ID < candidates[j].ID
	})
	return &candidates[0], nil
}

func TestMatcher(t *testing.T) {
	catalog := &fakeCatalog{products: []CatalogProduct{
		{ID: 1, Article: "IPHONE15PRO", Name: "iPhone 15 Pro", Price: decimal.NewFromInt(130000)},
		{ID: 2, Article: "CASE-SIL", Name: "Чехол силиконовый", Price: decimal.NewFromInt(2000)},
		{ID: 3, Article: "CASE-LTH", Name: "Чехол кожаный", Price: decimal.NewFromInt(3500)},
	}}
	matcher := NewMatcher(catalog)
	ctx := context.Background()

	t.Run("article exact match ignores case", func(t *testing.T) {
		result, err := matcher.Match(ctx, Entry{Article: "iphone15pro", Price: decimal.NewFromInt(125000)})
		require.NoError(t, err)
		require.True(t, result.Found)
		assert.Equal(t, uint(1), result.ProductID)
		assert.True(t, result.Delta.Equal(decimal.NewFromInt(-5000)))
	})

	t.Run("article takes priority over name", func(t *testing.T) {
		result, err := matcher.Match(ctx, Entry{Article: "CASE-SIL", Name: "Чехол кожаный", Price: decimal.NewFromInt(1800)})
		require.NoError(t, err)
		require.True(t, result.Found)
		assert.Equal(t, uint(2), result.ProductID)
	})

	t.Run("name substring entry in product", func(t *testing.T) {
		result, err := matcher.Match(ctx, Entry{Name: "iPhone 15", Price: decimal.NewFromInt(125000)})
		require.NoError(t, err)
		require.True(t, result.Found)
		assert.Equal(t, "iPhone 15 Pro", result.ProductName)
	})

	t.Run("name substring product in entry", func(t *testing.T) {
		result, err := matcher.Match(ctx, Entry{Name: "Чехол кожаный premium", Price: decimal.NewFromInt(3700)})
		require.NoError(t, err)
		require.True(t, result.Found)
		assert.Equal(t, uint(3), result.ProductID)
	})

	t.Run("ambiguous name takes shortest candidate", func(t *testing.T) {
		result, err := matcher.Match(ctx, Entry{Name: "Чехол", Price: decimal.NewFromInt(1000)})
		require.NoError(t, err)
		require.True(t, result.Found)
		// "Чехол кожаный" короче "Чехол силиконовый"
		assert.Equal(t, uint(3), result.ProductID)
	})

	t.Run("no match", func(t *testing.T) {
		result, err := matcher.Match(ctx, Entry{Article: "UNKNOWN-SKU", Name: "Ghost", Price: decimal.NewFromInt(999)})
		require.NoError(t, err)
		assert.False(t, result.Found)
	})

	t.Run("idempotent", func(t *testing.T) {
		entry := Entry{Article: "CASE-SIL", Price: decimal.NewFromInt(1800)}
		first, err := matcher.Match(ctx, entry)
		require.NoError(t, err)
		second, err := matcher.Match(ctx, entry)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
