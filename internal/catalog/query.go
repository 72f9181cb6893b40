package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hatbajar/marketplace/internal/domain"
)

// SortKey orders listings by effective price.
type SortKey string

// Sort keys accepted on list endpoints. The values match the query-string
// tokens the frontend sends.
const (
	SortPriceAsc  SortKey = "lowToHigh"
	SortPriceDesc SortKey = "highToLow"
)

// ListingQuery is the parsed set of filter/sort/page parameters for a list
// endpoint. It exists only for the duration of one request.
type ListingQuery struct {
	SearchText string
	DateFrom   *time.Time
	DateTo     *time.Time
	SortKey    SortKey
	Page       int
	PageSize   int
}

// ListingResult is the outcome of running a listing query.
type ListingResult struct {
	Items      []domain.Product `json:"items"`
	TotalCount int              `json:"totalCount"`
}

// ProductFinder retrieves products matching a fixed base filter plus an
// optional case-insensitive name/market substring search.
type ProductFinder interface {
	FindProducts(ctx context.Context, base ProductFilter, search string) ([]domain.Product, error)
}

// QueryEngine translates a ListingQuery into a store search followed by
// in-process date filtering, price sorting and pagination. Date-range
// filtering happens after retrieval; acceptable for the collection sizes
// this serves, and kept so records with unparseable timestamps can be
// dropped rather than matched by accident.
type QueryEngine struct {
	finder ProductFinder
}

// NewQueryEngine creates a listing query engine.
func NewQueryEngine(finder ProductFinder) *QueryEngine {
	return &QueryEngine{finder: finder}
}

// Run executes q against the store. The base filter is fixed by the calling
// route and never derived from caller input. The store is never mutated.
func (e *QueryEngine) Run(ctx context.Context, q ListingQuery, base ProductFilter) (ListingResult, error) {
	// Whitespace-only search is treated as absent rather than producing a
	// vacuous match-all disjunction.
	search := strings.TrimSpace(q.SearchText)

	items, err := e.finder.FindProducts(ctx, base, search)
	if err != nil {
		return ListingResult{}, fmt.Errorf("find products: %w", err)
	}

	if q.DateFrom != nil || q.DateTo != nil {
		items = filterByDate(items, q.DateFrom, q.DateTo)
	}

	switch q.SortKey {
	case SortPriceAsc:
		// Unstable on price ties: there is no secondary key.
		sort.Slice(items, func(i, j int) bool {
			return items[i].EffectivePrice() < items[j].EffectivePrice()
		})
	case SortPriceDesc:
		sort.Slice(items, func(i, j int) bool {
			return items[i].EffectivePrice() > items[j].EffectivePrice()
		})
	}

	total := len(items)

	if q.Page > 0 && q.PageSize > 0 {
		start := (q.Page - 1) * q.PageSize
		end := start + q.PageSize
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		items = items[start:end]
	}

	return ListingResult{Items: items, TotalCount: total}, nil
}

// filterByDate keeps records whose createdAt falls inside [from, to].
// A record with a zero createdAt is excluded outright.
func filterByDate(items []domain.Product, from, to *time.Time) []domain.Product {
	kept := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			continue
		}
		if from != nil && item.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && item.CreatedAt.After(*to) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// ParseDateParam parses a query-string date as RFC 3339 or as a bare
// calendar date. A bare date used as a range end is widened to the end of
// that day so same-day records are not silently dropped.
func ParseDateParam(value string, rangeEnd bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", value)
	}
	if rangeEnd {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	t = t.UTC()
	return &t, nil
}
