package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dukerupert/shopcore/internal/catalog"
	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/telemetry"
)

// CatalogStore holds the product collection and the shopper's view settings.
// All methods are safe for concurrent use; mutations are serialized.
type CatalogStore interface {
	// LoadInitial fetches the first page. On failure the current products
	// are kept and the error is recorded.
	LoadInitial(ctx context.Context) error

	// Refresh re-fetches the first page and resets pagination.
	Refresh(ctx context.Context) error

	// LoadMore appends the next page. It is a no-op while another LoadMore
	// is in flight or when no further pages exist.
	LoadMore(ctx context.Context) error

	// View returns the filtered and sorted products.
	View() []domain.Product
	Snapshot() CatalogSnapshot
	Featured() []domain.Product

	SetCategory(category *string)
	ApplyFilters(filters domain.ProductFilters)
	ResetFilters()
	SetSort(opt domain.SortOption)
	Search(query string)
	ClearSearch()

	ProductByID(id int) (domain.Product, bool)
	// LookupProduct checks loaded products first, then the catalog source.
	LookupProduct(ctx context.Context, id int) (domain.Product, error)
	RelatedProducts(p domain.Product, limit int) []domain.Product

	IsLoading() bool
	IsLoadingMore() bool
	HasMorePages() bool
	LastError() error
}

// CatalogSnapshot is a consistent read of the catalog state.
type CatalogSnapshot struct {
	Products         []domain.Product      `json:"products"`
	Featured         []domain.Product      `json:"featured"`
	Visible          []domain.Product      `json:"visible"`
	SearchText       string                `json:"search_text"`
	SelectedCategory *string               `json:"selected_category"`
	Sort             domain.SortOption     `json:"sort"`
	Filters          domain.ProductFilters `json:"filters"`
	Pagination       domain.Pagination     `json:"pagination"`
	IsLoading        bool                  `json:"is_loading"`
	IsLoadingMore    bool                  `json:"is_loading_more"`
	HasMorePages     bool                  `json:"has_more_pages"`
	Error            string                `json:"error,omitempty"`
	Retryable        bool                  `json:"retryable"`
}

type catalogStore struct {
	source  domain.CatalogSource
	logger  *slog.Logger
	metrics *telemetry.BusinessMetrics

	mu               sync.Mutex
	products         []domain.Product
	featured         []domain.Product
	searchText       string
	selectedCategory *string
	sort             domain.SortOption
	filters          domain.ProductFilters
	page             domain.Pagination
	loading          bool
	loadingMore      bool
	lastErr          error

	// generation increases with every LoadInitial or Refresh. A completion
	// whose generation is no longer current is discarded.
	generation uint64
}

// NewCatalogStore creates a CatalogStore over source.
func NewCatalogStore(source domain.CatalogSource, pageSize int, logger *slog.Logger, metrics *telemetry.BusinessMetrics) CatalogStore {
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	return &catalogStore{
		source:  source,
		logger:  logger,
		metrics: metrics,
		sort:    domain.SortPopular,
		page:    domain.Pagination{CurrentPage: 1, TotalPages: 1, ItemsPerPage: pageSize},
	}
}

func (s *catalogStore) LoadInitial(ctx context.Context) error {
	return s.load(ctx, "catalog.load_initial", telemetry.LoadInitial)
}

func (s *catalogStore) Refresh(ctx context.Context) error {
	return s.load(ctx, "catalog.refresh", telemetry.LoadRefresh)
}

func (s *catalogStore) load(ctx context.Context, op, kind string) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.loading = true
	s.lastErr = nil
	query := domain.ProductQuery{Page: 1, Limit: s.page.ItemsPerPage, Filters: s.filters, Sort: s.sort}
	s.mu.Unlock()

	start := time.Now()
	page, err := s.source.FetchProducts(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.metrics.RecordCatalogLoad(kind, telemetry.ResultStale, time.Since(start))
		s.logger.Warn("Discarding stale catalog load", "op", op, "generation", gen, "current", s.generation)
		return withOp(ErrStaleLoad, op)
	}

	s.loading = false
	if err != nil {
		s.lastErr = fetchError(err, op, "Failed to load products")
		s.metrics.RecordCatalogLoad(kind, telemetry.ResultError, time.Since(start))
		s.logger.Error("Catalog load failed", "op", op, "error", err, "kept_products", len(s.products))
		return s.lastErr
	}

	s.products = page.Items
	s.featured = catalog.Featured(page.Items)
	s.page = page.Pagination
	if s.page.ItemsPerPage == 0 {
		s.page.ItemsPerPage = query.Limit
	}
	s.metrics.RecordCatalogLoad(kind, telemetry.ResultSuccess, time.Since(start))
	s.logger.Info("Catalog loaded", "op", op, "products", len(s.products), "featured", len(s.featured), "total_pages", s.page.TotalPages)
	return nil
}

func (s *catalogStore) LoadMore(ctx context.Context) error {
	const op = "catalog.load_more"

	s.mu.Lock()
	if s.loadingMore || !s.page.HasNextPage() {
		s.mu.Unlock()
		return nil
	}
	s.loadingMore = true
	gen := s.generation
	query := domain.ProductQuery{Page: s.page.CurrentPage + 1, Limit: s.page.ItemsPerPage, Filters: s.filters, Sort: s.sort}
	s.mu.Unlock()

	start := time.Now()
	page, err := s.source.FetchProducts(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingMore = false

	if gen != s.generation {
		s.metrics.RecordCatalogLoad(telemetry.LoadMore, telemetry.ResultStale, time.Since(start))
		s.logger.Warn("Discarding stale page", "op", op, "page", query.Page)
		return withOp(ErrStaleLoad, op)
	}
	if err != nil {
		s.lastErr = fetchError(err, op, "Failed to load products")
		s.metrics.RecordCatalogLoad(telemetry.LoadMore, telemetry.ResultError, time.Since(start))
		s.logger.Error("Failed to load more products", "page", query.Page, "error", err)
		return s.lastErr
	}

	s.products = append(slices.Clip(s.products), page.Items...)
	s.page.CurrentPage = query.Page
	if page.Pagination.TotalPages > 0 {
		s.page.TotalPages = page.Pagination.TotalPages
		s.page.TotalItems = page.Pagination.TotalItems
	}
	s.lastErr = nil
	s.metrics.RecordCatalogLoad(telemetry.LoadMore, telemetry.ResultSuccess, time.Since(start))
	s.logger.Debug("Loaded more products", "page", query.Page, "added", len(page.Items), "total", len(s.products))
	return nil
}

// fetchError keeps domain errors from a collaborator and marks anything
// else as a retryable fetch failure.
func fetchError(err error, op, message string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.FetchFailed(err, op, message)
}

func (s *catalogStore) query() catalog.Query {
	return catalog.Query{
		SearchText: s.searchText,
		Category:   s.selectedCategory,
		Sort:       s.sort,
		Filters:    s.filters,
	}
}

func (s *catalogStore) View() []domain.Product {
	s.mu.Lock()
	products, q := s.products, s.query()
	s.mu.Unlock()
	return catalog.Apply(products, q)
}

func (s *catalogStore) Snapshot() CatalogSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := CatalogSnapshot{
		Products:      slices.Clone(s.products),
		Featured:      slices.Clone(s.featured),
		Visible:       catalog.Apply(s.products, s.query()),
		SearchText:    s.searchText,
		Sort:          s.sort,
		Filters:       s.filters,
		Pagination:    s.page,
		IsLoading:     s.loading,
		IsLoadingMore: s.loadingMore,
		HasMorePages:  s.page.HasNextPage(),
	}
	if s.selectedCategory != nil {
		c := *s.selectedCategory
		snap.SelectedCategory = &c
	}
	if s.lastErr != nil {
		snap.Error = domain.ErrorMessage(s.lastErr)
		snap.Retryable = domain.IsRetryable(s.lastErr)
	}
	return snap
}

func (s *catalogStore) Featured() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.featured)
}

// SetCategory selects a category. nil and "All" both clear the selection.
func (s *catalogStore) SetCategory(category *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category == nil || *category == domain.CategoryAll {
		s.selectedCategory = nil
		return
	}
	c := *category
	s.selectedCategory = &c
}

func (s *catalogStore) ApplyFilters(filters domain.ProductFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
}

// ResetFilters clears filters and also resets category and sort.
func (s *catalogStore) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Reset()
	s.selectedCategory = nil
	s.sort = domain.SortPopular
}

func (s *catalogStore) SetSort(opt domain.SortOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = opt
}

func (s *catalogStore) Search(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchText = query
}

func (s *catalogStore) ClearSearch() {
	s.Search("")
}

func (s *catalogStore) ProductByID(id int) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.Find(s.products, id)
}

func (s *catalogStore) LookupProduct(ctx context.Context, id int) (domain.Product, error) {
	if p, ok := s.ProductByID(id); ok {
		return p, nil
	}

	p, err := s.source.FetchProduct(ctx, id)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return domain.Product{}, withOp(ErrProductNotFound, "catalog.lookup")
		}
		return domain.Product{}, fetchError(err, "catalog.lookup", "Failed to load product")
	}
	return *p, nil
}

func (s *catalogStore) RelatedProducts(p domain.Product, limit int) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.Related(s.products, p, limit)
}

func (s *catalogStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *catalogStore) IsLoadingMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingMore
}

func (s *catalogStore) HasMorePages() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.HasNextPage()
}

func (s *catalogStore) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
