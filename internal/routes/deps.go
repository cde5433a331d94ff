package routes

import (
	"net/http"

	"github.com/dukerupert/shopcore/internal/handler/api"
)

// APIDeps contains dependencies for the JSON API routes
type APIDeps struct {
	CatalogHandler  *api.CatalogHandler
	CartHandler     *api.CartHandler
	CheckoutHandler *api.CheckoutHandler
	OrderHandler    *api.OrderHandler
}

// OpsDeps contains dependencies for operational routes
type OpsDeps struct {
	MetricsHandler http.Handler
	// Ready reports whether the catalog has completed a load.
	Ready func() bool
}
