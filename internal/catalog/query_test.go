package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFinder implements ProductFinder for testing.
type fakeFinder struct {
	products       []domain.Product
	err            error
	receivedSearch string
	receivedBase   ProductFilter
	calls          int
}

func (f *fakeFinder) FindProducts(_ context.Context, base ProductFilter, search string) ([]domain.Product, error) {
	f.calls++
	f.receivedBase = base
	f.receivedSearch = search
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func productAt(name string, price float64, createdAt time.Time) domain.Product {
	return domain.Product{Name: name, Price: price, CreatedAt: createdAt}
}

func TestRun_NoFilters_ReturnsAllWithTotal(t *testing.T) {
	// Arrange
	now := time.Now().UTC()
	finder := &fakeFinder{products: []domain.Product{
		productAt("a", 10, now),
		productAt("b", 20, now),
		productAt("c", 30, now),
	}}
	engine := NewQueryEngine(finder)

	// Act
	result, err := engine.Run(context.Background(), ListingQuery{}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "a", result.Items[0].Name)
	assert.Equal(t, "b", result.Items[1].Name)
	assert.Equal(t, "c", result.Items[2].Name)
}

func TestRun_Pagination_SecondPage(t *testing.T) {
	// Arrange
	now := time.Now().UTC()
	products := make([]domain.Product, 0, 25)
	for i := 0; i < 25; i++ {
		products = append(products, productAt(string(rune('a'+i)), float64(i), now))
	}
	finder := &fakeFinder{products: products}
	engine := NewQueryEngine(finder)

	// Act
	result, err := engine.Run(context.Background(), ListingQuery{Page: 2, PageSize: 10}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 25, result.TotalCount)
	require.Len(t, result.Items, 10)
	assert.Equal(t, products[10].Name, result.Items[0].Name)
	assert.Equal(t, products[19].Name, result.Items[9].Name)
}

func TestRun_Pagination_PageBeyondEnd(t *testing.T) {
	// Arrange
	now := time.Now().UTC()
	finder := &fakeFinder{products: []domain.Product{productAt("a", 1, now)}}
	engine := NewQueryEngine(finder)

	// Act
	result, err := engine.Run(context.Background(), ListingQuery{Page: 5, PageSize: 10}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	assert.Empty(t, result.Items)
}

func TestRun_SearchText_Trimmed(t *testing.T) {
	// Arrange
	finder := &fakeFinder{}
	engine := NewQueryEngine(finder)

	// Act
	_, err := engine.Run(context.Background(), ListingQuery{SearchText: "  mango  "}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "mango", finder.receivedSearch)
}

func TestRun_SearchText_WhitespaceOnlyTreatedAsAbsent(t *testing.T) {
	// Arrange
	finder := &fakeFinder{}
	engine := NewQueryEngine(finder)

	// Act
	_, err := engine.Run(context.Background(), ListingQuery{SearchText: "   "}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, finder.receivedSearch)
}

func TestRun_BaseFilterPassedThrough(t *testing.T) {
	// Arrange
	finder := &fakeFinder{}
	engine := NewQueryEngine(finder)
	status := domain.ProductStatusApproved

	// Act
	_, err := engine.Run(context.Background(), ListingQuery{}, ProductFilter{Status: &status})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, finder.receivedBase.Status)
	assert.Equal(t, domain.ProductStatusApproved, *finder.receivedBase.Status)
	assert.Equal(t, 1, finder.calls)
}

func TestRun_DateFilter_ExcludesZeroCreatedAt(t *testing.T) {
	// Arrange
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	finder := &fakeFinder{products: []domain.Product{
		productAt("dated", 1, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		productAt("undated", 2, time.Time{}),
	}}
	engine := NewQueryEngine(finder)

	// Act
	result, err := engine.Run(context.Background(), ListingQuery{DateFrom: &from}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "dated", result.Items[0].Name)
}

func TestRun_DateFilter_InclusiveBounds(t *testing.T) {
	// Arrange
	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 15, 23, 59, 59, 999000000, time.UTC)
	finder := &fakeFinder{products: []domain.Product{
		productAt("before", 1, time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC)),
		productAt("on-from", 2, from),
		productAt("inside", 3, time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)),
		productAt("after", 4, time.Date(2024, 1, 16, 0, 0, 1, 0, time.UTC)),
	}}
	engine := NewQueryEngine(finder)

	// Act
	result, err := engine.Run(context.Background(), ListingQuery{DateFrom: &from, DateTo: &to}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "on-from", result.Items[0].Name)
	assert.Equal(t, "inside", result.Items[1].Name)
}

func TestRun_SortLowToHigh_UsesEffectivePrice(t *testing.T) {
	// Arrange
	now := time.Now().UTC()
	history := domain.Product{
		Name:      "from-history",
		CreatedAt: now,
		Prices: []domain.PriceEntry{
			{Price: 50, Date: now.Add(-2 * time.Hour)},
			{Price: 15, Date: now.Add(-1 * time.Hour)},
		},
	}
	finder := &fakeFinder{products: []domain.Product{
		productAt("expensive", 30, now),
		history,
		productAt("cheap", 5, now),
	}}
	engine := NewQueryEngine(finder)

	// Act
	result, err := engine.Run(context.Background(), ListingQuery{SortKey: SortPriceAsc}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "cheap", result.Items[0].Name)
	assert.Equal(t, "from-history", result.Items[1].Name)
	assert.Equal(t, "expensive", result.Items[2].Name)
}

func TestRun_SortHighToLow(t *testing.T) {
	// Arrange
	now := time.Now().UTC()
	finder := &fakeFinder{products: []domain.Product{
		productAt("cheap", 5, now),
		productAt("expensive", 30, now),
		productAt("mid", 10, now),
	}}
	engine := NewQueryEngine(finder)

	// Act
	result, err := engine.Run(context.Background(), ListingQuery{SortKey: SortPriceDesc}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "expensive", result.Items[0].Name)
	assert.Equal(t, "mid", result.Items[1].Name)
	assert.Equal(t, "cheap", result.Items[2].Name)
}

func TestRun_FinderError(t *testing.T) {
	// Arrange
	finder := &fakeFinder{err: errors.New("store down")}
	engine := NewQueryEngine(finder)

	// Act
	_, err := engine.Run(context.Background(), ListingQuery{}, ProductFilter{})

	// Assert
	assert.Error(t, err)
}

func TestParseDateParam_RFC3339(t *testing.T) {
	got, err := ParseDateParam("2024-01-15T10:30:00Z", false)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), *got)
}

func TestParseDateParam_BareDateAsRangeEnd_WidensToEndOfDay(t *testing.T) {
	got, err := ParseDateParam("2024-01-15", true)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.After(time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)))
	assert.True(t, got.Before(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateParam_BareDateAsRangeStart(t *testing.T) {
	got, err := ParseDateParam("2024-01-15", false)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *got)
}

func TestParseDateParam_Empty(t *testing.T) {
	got, err := ParseDateParam("", true)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseDateParam_Invalid(t *testing.T) {
	_, err := ParseDateParam("not-a-date", false)

	assert.Error(t, err)
}

// matchingFinder mimics the store's case-insensitive name/market substring
// search over an in-memory set.
type matchingFinder struct {
	products []domain.Product
}

func (f *matchingFinder) FindProducts(_ context.Context, _ ProductFilter, search string) ([]domain.Product, error) {
	if search == "" {
		return f.products, nil
	}
	needle := strings.ToLower(search)
	matched := make([]domain.Product, 0)
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Market), needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func TestRun_SearchMatchesNameOrMarket(t *testing.T) {
	// Arrange
	now := time.Now().UTC()
	finder := &matchingFinder{products: []domain.Product{
		{Name: "Mango A", Market: "Central", CreatedAt: now},
		{Name: "Apple", Market: "Mango Bazar", CreatedAt: now},
		{Name: "Banana", Market: "East", CreatedAt: now},
	}}
	engine := NewQueryEngine(finder)

	// Act
	result, err := engine.Run(context.Background(), ListingQuery{SearchText: "mango"}, ProductFilter{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Mango A", result.Items[0].Name)
	assert.Equal(t, "Apple", result.Items[1].Name)
}
