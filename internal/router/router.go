package router

import (
	"cmp"
	"net/http"
	"slices"
	"sync"

	"github.com/dukerupert/shopcore/internal/middleware"
)

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Route is one registered endpoint. Name is the stable label used for
// metrics and request logs ("cart.add"); unnamed routes use their pattern.
type Route struct {
	Method  string
	Pattern string
	Name    string
}

// Named sets the route name. Call it at registration, before serving.
func (rt *Route) Named(name string) *Route {
	rt.Name = name
	return rt
}

// Label returns the name, or the pattern for an unnamed route.
func (rt *Route) Label() string {
	if rt.Name != "" {
		return rt.Name
	}
	return rt.Pattern
}

// routeTable is shared between a router and its groups.
type routeTable struct {
	mu     sync.Mutex
	routes []*Route
}

// Router wraps http.ServeMux with middleware chaining and a table of the
// registered routes.
type Router struct {
	mux   *http.ServeMux
	chain []Middleware
	table *routeTable
}

// New creates a new Router with optional global middleware
func New(middleware ...Middleware) *Router {
	return &Router{
		mux:   http.NewServeMux(),
		chain: middleware,
		table: &routeTable{},
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) Get(pattern string, handler http.HandlerFunc, middleware ...Middleware) *Route {
	return r.Handle(http.MethodGet, pattern, handler, middleware...)
}

func (r *Router) Post(pattern string, handler http.HandlerFunc, middleware ...Middleware) *Route {
	return r.Handle(http.MethodPost, pattern, handler, middleware...)
}

func (r *Router) Put(pattern string, handler http.HandlerFunc, middleware ...Middleware) *Route {
	return r.Handle(http.MethodPut, pattern, handler, middleware...)
}

func (r *Router) Delete(pattern string, handler http.HandlerFunc, middleware ...Middleware) *Route {
	return r.Handle(http.MethodDelete, pattern, handler, middleware...)
}

func (r *Router) Patch(pattern string, handler http.HandlerFunc, middleware ...Middleware) *Route {
	return r.Handle(http.MethodPatch, pattern, handler, middleware...)
}

// Handle registers a route with an explicit method. The matched route's
// label is placed on the request context before any middleware runs.
func (r *Router) Handle(method, pattern string, handler http.Handler, middleware ...Middleware) *Route {
	route := &Route{Method: method, Pattern: pattern}

	r.table.mu.Lock()
	r.table.routes = append(r.table.routes, route)
	r.table.mu.Unlock()

	r.mux.Handle(method+" "+pattern, withRoute(route, r.wrap(handler, middleware)))
	return route
}

// Routes lists the registered routes ordered by pattern, then method.
func (r *Router) Routes() []Route {
	r.table.mu.Lock()
	out := make([]Route, len(r.table.routes))
	for i, rt := range r.table.routes {
		out[i] = *rt
	}
	r.table.mu.Unlock()

	slices.SortFunc(out, func(a, b Route) int {
		return cmp.Or(cmp.Compare(a.Pattern, b.Pattern), cmp.Compare(a.Method, b.Method))
	})
	return out
}

func withRoute(route *Route, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := middleware.WithRouteName(req.Context(), route.Label())
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// wrap applies middleware to a handler in reverse order
func (r *Router) wrap(handler http.Handler, middleware []Middleware) http.Handler {
	// Global chain first, then route-specific middleware
	combined := append(slices.Clone(r.chain), middleware...)
	slices.Reverse(combined)

	result := handler
	for _, m := range combined {
		result = m(result)
	}
	return result
}

// Group creates a sub-router with additional middleware. Routes registered
// on the group appear in the parent's Routes.
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:   r.mux,
		chain: append(slices.Clone(r.chain), middleware...),
		table: r.table,
	}
}
