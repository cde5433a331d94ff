package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/dukerupert/shopcore/internal/catalog"
	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/handler"
	"github.com/dukerupert/shopcore/internal/service"
	"github.com/dukerupert/shopcore/internal/telemetry"
	"github.com/shopspring/decimal"
)

// CatalogHandler exposes the catalog store.
type CatalogHandler struct {
	catalog service.CatalogStore
	metrics *telemetry.BusinessMetrics
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(store service.CatalogStore, metrics *telemetry.BusinessMetrics) *CatalogHandler {
	return &CatalogHandler{catalog: store, metrics: metrics}
}

// ProductDetail is a product with its derived pricing fields.
type ProductDetail struct {
	domain.Product
	DiscountPercentage int    `json:"discount_percentage,omitempty"`
	FormattedPrice     string `json:"formatted_price"`
}

func newProductDetail(p domain.Product) ProductDetail {
	pct, _ := p.DiscountPercentage()
	return ProductDetail{Product: p, DiscountPercentage: pct, FormattedPrice: domain.FormatUSD(p.Price)}
}

// List handles GET /api/products
//
// Query parameters present on the request update the browsing state before
// the snapshot is returned:
//   - search: text search; empty clears it
//   - category: category name; empty or "All" clears it
//   - sort: newest, price_asc, price_desc, rating, popular
//   - min_price, max_price: inclusive bounds; empty clears
//   - in_stock: true limits to in-stock products
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "api.products.list"
	q := r.URL.Query()

	var sortOpt *domain.SortOption
	if q.Has("sort") {
		opt, err := domain.ParseSortOption(q.Get("sort"))
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		sortOpt = &opt
	}

	filters := h.catalog.Snapshot().Filters
	filtersChanged := false
	for _, bound := range []struct {
		param string
		dst   **decimal.Decimal
	}{
		{"min_price", &filters.MinPrice},
		{"max_price", &filters.MaxPrice},
	} {
		if !q.Has(bound.param) {
			continue
		}
		v, err := parsePrice(q, bound.param, op)
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		*bound.dst = v
		filtersChanged = true
	}
	if q.Has("in_stock") {
		inStock, err := strconv.ParseBool(q.Get("in_stock"))
		if err != nil {
			handler.ErrorResponse(w, r, domain.Invalid(op, "Invalid in_stock"))
			return
		}
		filters.InStockOnly = inStock
		filtersChanged = true
	}

	var used []string
	if q.Has("search") {
		if s := q.Get("search"); s != "" {
			h.catalog.Search(s)
			used = append(used, "text")
		} else {
			h.catalog.ClearSearch()
		}
	}
	if q.Has("category") {
		c := q.Get("category")
		if c == "" {
			h.catalog.SetCategory(nil)
		} else {
			h.catalog.SetCategory(&c)
			used = append(used, "category")
		}
	}
	if sortOpt != nil {
		h.catalog.SetSort(*sortOpt)
		used = append(used, "sort")
	}
	if filtersChanged {
		h.catalog.ApplyFilters(filters)
		if filters.MinPrice != nil || filters.MaxPrice != nil {
			used = append(used, "price")
		}
		if filters.InStockOnly {
			used = append(used, "in_stock")
		}
	}
	if len(q) > 0 {
		h.metrics.RecordSearch(used...)
	}

	handler.WriteJSON(w, http.StatusOK, h.catalog.Snapshot())
}

func parsePrice(q url.Values, param, op string) (*decimal.Decimal, error) {
	s := q.Get(param)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, domain.Invalid(op, "Invalid "+param)
	}
	return &d, nil
}

// Featured handles GET /api/products/featured
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	featured := h.catalog.Featured()
	out := make([]ProductDetail, len(featured))
	for i, p := range featured {
		out[i] = newProductDetail(p)
	}
	handler.WriteJSON(w, http.StatusOK, map[string]any{"products": out})
}

// Show handles GET /api/products/{id}
func (h *CatalogHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id", "api.products.show")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	p, err := h.catalog.LookupProduct(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, newProductDetail(p))
}

// Related handles GET /api/products/{id}/related?limit=4
func (h *CatalogHandler) Related(w http.ResponseWriter, r *http.Request) {
	const op = "api.products.related"

	id, err := pathInt(r, "id", op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	limit := catalog.DefaultRelatedLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit < 1 {
			handler.ErrorResponse(w, r, domain.Invalid(op, "Invalid limit"))
			return
		}
	}

	p, err := h.catalog.LookupProduct(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]any{"products": h.catalog.RelatedProducts(p, limit)})
}

// LoadMore handles POST /api/products/more
func (h *CatalogHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.LoadMore(r.Context()); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, h.catalog.Snapshot())
}

// Refresh handles POST /api/catalog/refresh
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, h.catalog.Snapshot())
}

// ResetFilters handles POST /api/catalog/reset
func (h *CatalogHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	h.catalog.ResetFilters()
	handler.WriteJSON(w, http.StatusOK, h.catalog.Snapshot())
}
