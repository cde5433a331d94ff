package routes

import (
	"github.com/dukerupert/shopcore/internal/middleware"
	"github.com/dukerupert/shopcore/internal/router"
)

// RegisterAPIRoutes registers the storefront JSON API. Route names
// label request metrics and logs.
// Request bodies are capped at middleware.DefaultMaxBodySize.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	api := r.Group(middleware.MaxBodySize())

	// Catalog
	api.Get("/api/products", deps.CatalogHandler.List).Named("catalog.list")
	api.Get("/api/products/featured", deps.CatalogHandler.Featured).Named("catalog.featured")
	api.Get("/api/products/{id}", deps.CatalogHandler.Show).Named("catalog.product")
	api.Get("/api/products/{id}/related", deps.CatalogHandler.Related).Named("catalog.related")
	api.Post("/api/products/more", deps.CatalogHandler.LoadMore).Named("catalog.load_more")
	api.Post("/api/catalog/refresh", deps.CatalogHandler.Refresh).Named("catalog.refresh")
	api.Post("/api/catalog/reset", deps.CatalogHandler.ResetFilters).Named("catalog.reset")

	// Cart
	api.Get("/api/cart", deps.CartHandler.Show).Named("cart.show")
	api.Delete("/api/cart", deps.CartHandler.Clear).Named("cart.clear")
	api.Post("/api/cart/items", deps.CartHandler.AddItem).Named("cart.add")
	api.Post("/api/cart/items/remove", deps.CartHandler.RemoveItems).Named("cart.remove_items")
	api.Patch("/api/cart/items/{id}", deps.CartHandler.UpdateItem).Named("cart.update_item")
	api.Delete("/api/cart/items/{id}", deps.CartHandler.RemoveItem).Named("cart.remove_item")

	// Checkout
	api.Get("/api/checkout", deps.CheckoutHandler.Show).Named("checkout.show")
	api.Put("/api/checkout/shipping", deps.CheckoutHandler.SetShipping).Named("checkout.shipping")
	api.Put("/api/checkout/payment", deps.CheckoutHandler.SetPayment).Named("checkout.payment")
	api.Post("/api/checkout/next", deps.CheckoutHandler.Next).Named("checkout.next")
	api.Post("/api/checkout/edit/{step}", deps.CheckoutHandler.Edit).Named("checkout.edit")
	api.Post("/api/checkout/place", deps.CheckoutHandler.Place).Named("checkout.place")
	api.Post("/api/checkout/reset", deps.CheckoutHandler.Reset).Named("checkout.reset")

	// Orders
	api.Get("/api/orders/{id}", deps.OrderHandler.Show).Named("order.show")
}
