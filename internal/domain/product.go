package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT DOMAIN TYPES
// =============================================================================

// PageIDOffset is added per page when a catalog page re-derives product ids.
const PageIDOffset = 100

// CategoryAll is the sentinel category meaning "no category filter".
const CategoryAll = "All"

// Categories lists the storefront's browsable categories, sentinel first.
var Categories = []string{CategoryAll, "Electronics", "Fashion", "Sports", "Home"}

// Product is an immutable catalog entry.
// Values are created at catalog load and never mutated afterwards.
type Product struct {
	ID            int              `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ImageURL      string           `json:"image_url"`
	Category      string           `json:"category"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"review_count"`
	InStock       bool             `json:"in_stock"`
	Colors        []string         `json:"colors,omitempty"`
	Sizes         []string         `json:"sizes,omitempty"`
}

// IsDiscounted reports whether the product carries an original price.
func (p Product) IsDiscounted() bool {
	return p.OriginalPrice != nil
}

// DiscountPercentage returns the whole-number discount off the original price,
// or false when the product is not discounted.
func (p Product) DiscountPercentage() (int, bool) {
	if p.OriginalPrice == nil || !p.OriginalPrice.GreaterThan(p.Price) {
		return 0, false
	}
	off := p.OriginalPrice.Sub(p.Price).Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(off.IntPart()), true
}

// DefaultColor returns the first color variant, if any.
func (p Product) DefaultColor() string {
	if len(p.Colors) == 0 {
		return ""
	}
	return p.Colors[0]
}

// DefaultSize returns the first size variant, if any.
func (p Product) DefaultSize() string {
	if len(p.Sizes) == 0 {
		return ""
	}
	return p.Sizes[0]
}

// WithPageOffset returns a copy of p whose id is shifted for the given page.
// Variant slices are copied so the result shares no state with p.
func (p Product) WithPageOffset(page int) Product {
	out := p
	out.ID = p.ID + page*PageIDOffset
	out.Colors = append([]string(nil), p.Colors...)
	out.Sizes = append([]string(nil), p.Sizes...)
	if p.OriginalPrice != nil {
		op := *p.OriginalPrice
		out.OriginalPrice = &op
	}
	return out
}

// Validate checks the catalog invariants of a product.
func (p Product) Validate() error {
	const op = "product.validate"
	var err error

	if strings.TrimSpace(p.Name) == "" {
		err = AddFieldError(err, "name", "is required")
	}
	if p.Price.IsNegative() {
		err = AddFieldError(err, "price", "must not be negative")
	}
	if p.OriginalPrice != nil && !p.OriginalPrice.GreaterThan(p.Price) {
		err = AddFieldError(err, "original_price", "must be greater than price")
	}
	if p.Rating < 0 || p.Rating > 5 {
		err = AddFieldError(err, "rating", "must be between 0 and 5")
	}
	if p.ReviewCount < 0 {
		err = AddFieldError(err, "review_count", "must not be negative")
	}

	if ve, ok := err.(*ValidationError); ok {
		ve.Op = op
		return ve
	}
	return nil
}

// =============================================================================
// SORTING
// =============================================================================

// SortOption selects the ordering of the derived product view.
type SortOption string

const (
	SortNewest    SortOption = "newest"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
	SortRating    SortOption = "rating"
	SortPopular   SortOption = "popular"
)

// SortOptions lists every sort option in display order.
var SortOptions = []SortOption{SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortPopular}

// DisplayName returns the label shown to shoppers.
func (s SortOption) DisplayName() string {
	switch s {
	case SortNewest:
		return "Newest"
	case SortPriceAsc:
		return "Price: Low to High"
	case SortPriceDesc:
		return "Price: High to Low"
	case SortRating:
		return "Highest Rated"
	case SortPopular:
		return "Most Popular"
	}
	return string(s)
}

// ParseSortOption parses a sort option; an empty string yields SortPopular.
func ParseSortOption(s string) (SortOption, error) {
	if s == "" {
		return SortPopular, nil
	}
	for _, opt := range SortOptions {
		if string(opt) == s {
			return opt, nil
		}
	}
	return "", Invalid("sort.parse", fmt.Sprintf("unknown sort option %q", s))
}

// =============================================================================
// FILTERS & PAGINATION
// =============================================================================

// ProductFilters are transient query parameters compared by value.
// The zero value is the canonical empty state.
type ProductFilters struct {
	Category    *string          `json:"category,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	InStockOnly bool             `json:"in_stock_only"`
	SearchQuery string           `json:"search_query"`
}

// IsEmpty reports whether no filter is active.
func (f ProductFilters) IsEmpty() bool {
	return f.Category == nil &&
		f.MinPrice == nil &&
		f.MaxPrice == nil &&
		!f.InStockOnly &&
		f.SearchQuery == ""
}

// Reset returns the filters to the empty state.
func (f *ProductFilters) Reset() {
	*f = ProductFilters{}
}

// Pagination describes the cursor of a paged catalog listing.
type Pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

// HasNextPage reports whether another page can be loaded.
func (p Pagination) HasNextPage() bool {
	return p.CurrentPage < p.TotalPages
}

// HasPreviousPage reports whether the cursor is past the first page.
func (p Pagination) HasPreviousPage() bool {
	return p.CurrentPage > 1
}
