// Package catalog derives the visible product list from a product collection
// and supplies products from a catalog file.
package catalog

import (
	"sort"
	"strings"

	"github.com/dukerupert/shopcore/internal/domain"
)

// DefaultRelatedLimit is the number of related products shown on a detail page.
const DefaultRelatedLimit = 4

// Query holds the inputs of the derived view.
// Filters.Category and Filters.SearchQuery are not consulted; the selected
// category and search text are carried separately.
type Query struct {
	SearchText string
	Category   *string
	Sort       domain.SortOption
	Filters    domain.ProductFilters
}

// Apply filters and sorts products. It never modifies the input slice.
//
// Steps run in order: text search over name, description and category;
// category match (the "All" sentinel matches everything); inclusive price
// bounds; in-stock only; then a stable sort.
func Apply(products []domain.Product, q Query) []domain.Product {
	result := make([]domain.Product, 0, len(products))

	needle := strings.ToLower(q.SearchText)
	for _, p := range products {
		if needle != "" && !matchesText(p, needle) {
			continue
		}
		if q.Category != nil && *q.Category != domain.CategoryAll && p.Category != *q.Category {
			continue
		}
		if q.Filters.MinPrice != nil && p.Price.LessThan(*q.Filters.MinPrice) {
			continue
		}
		if q.Filters.MaxPrice != nil && p.Price.GreaterThan(*q.Filters.MaxPrice) {
			continue
		}
		if q.Filters.InStockOnly && !p.InStock {
			continue
		}
		result = append(result, p)
	}

	sortProducts(result, q.Sort)
	return result
}

func matchesText(p domain.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle)
}

func sortProducts(ps []domain.Product, opt domain.SortOption) {
	switch opt {
	case domain.SortNewest:
		// Products carry no timestamp; reverse order stands in for recency.
		for i, j := 0, len(ps)-1; i < j; i, j = i+1, j-1 {
			ps[i], ps[j] = ps[j], ps[i]
		}
	case domain.SortPriceAsc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price.LessThan(ps[j].Price) })
	case domain.SortPriceDesc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price.GreaterThan(ps[j].Price) })
	case domain.SortRating:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Rating > ps[j].Rating })
	case domain.SortPopular:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].ReviewCount > ps[j].ReviewCount })
	}
}

// Featured returns the discounted subset in catalog order.
func Featured(products []domain.Product) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if p.IsDiscounted() {
			out = append(out, p)
		}
	}
	return out
}

// Related returns up to limit products sharing p's category, excluding p,
// in catalog order.
func Related(products []domain.Product, p domain.Product, limit int) []domain.Product {
	if limit <= 0 {
		return nil
	}
	var out []domain.Product
	for _, candidate := range products {
		if candidate.ID == p.ID || candidate.Category != p.Category {
			continue
		}
		out = append(out, candidate)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Find returns the product with the given id.
func Find(products []domain.Product, id int) (domain.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}
