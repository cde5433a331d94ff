package domain

import "context"

// ProductQuery is the request a CatalogSource serves.
type ProductQuery struct {
	Page    int
	Limit   int
	Filters ProductFilters
	Sort    SortOption
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Items      []Product
	Pagination Pagination
}

// CatalogSource supplies products to the catalog store.
// Implementations may reach a backend; the store depends only on this contract.
type CatalogSource interface {
	// FetchProducts returns one page of products.
	FetchProducts(ctx context.Context, q ProductQuery) (*ProductPage, error)

	// FetchProduct returns a single product or a not_found error.
	FetchProduct(ctx context.Context, id int) (*Product, error)
}

// OrderSubmitter records a finalized order and returns it with its id,
// status and creation time assigned.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// OrderRepository stores orders and reads them back by id.
type OrderRepository interface {
	OrderSubmitter
	GetOrder(ctx context.Context, id string) (*Order, error)
}
