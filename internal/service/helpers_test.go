package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dukerupert/shopcore/internal/catalog"
	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/shipping"
	"github.com/dukerupert/shopcore/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Fixtures
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Wireless Headphones", Description: "Noise cancelling", Price: money("199.99"), OriginalPrice: moneyPtr("299.99"), Category: "Electronics", Rating: 4.8, ReviewCount: 2459, InStock: true, Colors: []string{"Black", "White"}},
		{ID: 2, Name: "Leather Bag", Description: "Crossbody", Price: money("89.99"), OriginalPrice: moneyPtr("129.99"), Category: "Fashion", Rating: 4.7, ReviewCount: 956, InStock: true, Colors: []string{"Brown", "Tan"}},
		{ID: 3, Name: "Desk Lamp", Description: "LED", Price: money("59.99"), Category: "Home", Rating: 4.4, ReviewCount: 678, InStock: false},
		{ID: 4, Name: "Yoga Mat", Description: "Non-slip", Price: money("49.99"), Category: "Sports", Rating: 4.8, ReviewCount: 892, InStock: true, Sizes: []string{"Standard", "Long"}},
		{ID: 5, Name: "Bluetooth Speaker", Description: "Waterproof", Price: money("79.99"), OriginalPrice: moneyPtr("99.99"), Category: "Electronics", Rating: 4.6, ReviewCount: 956, InStock: true},
	}
}

func staticSource(t *testing.T) *catalog.FileSource {
	t.Helper()
	src, err := catalog.NewStaticSource(testProducts(), catalog.FileSourceConfig{TotalPages: 3, PageSize: 20})
	require.NoError(t, err)
	return src
}

func productIDs(ps []domain.Product) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func newTestCart() CartStore {
	return NewCartStore(
		tax.NewPercentageCalculator(tax.DefaultRate),
		shipping.NewFlatRateProvider(shipping.DefaultFlatRate()),
		testLogger(),
		nil,
	)
}

// ============================================================================
// Mock Implementations
// ============================================================================

// mockCatalogSource implements domain.CatalogSource for testing
type mockCatalogSource struct {
	mu    sync.Mutex
	calls int

	FetchProductsFunc func(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
	FetchProductFunc  func(ctx context.Context, id int) (*domain.Product, error)
}

func (m *mockCatalogSource) FetchProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.FetchProductsFunc(ctx, q)
}

func (m *mockCatalogSource) FetchProduct(ctx context.Context, id int) (*domain.Product, error) {
	if m.FetchProductFunc == nil {
		return nil, domain.NotFound("mock.fetch_product", "product", "")
	}
	return m.FetchProductFunc(ctx, id)
}

func (m *mockCatalogSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockOrderSubmitter implements domain.OrderSubmitter for testing
type mockOrderSubmitter struct {
	CreateOrderFunc func(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
	lastRequest     *domain.OrderRequest
}

func (m *mockOrderSubmitter) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	m.lastRequest = &req
	return m.CreateOrderFunc(ctx, req)
}
