package middleware

import "context"

// RouteContextKey holds the label of the route that matched the request.
const RouteContextKey contextKey = "route"

// WithRouteName stores the matched route label on ctx.
func WithRouteName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, RouteContextKey, name)
}

// GetRouteName returns the matched route label, or "" outside a routed request.
func GetRouteName(ctx context.Context) string {
	if name, ok := ctx.Value(RouteContextKey).(string); ok {
		return name
	}
	return ""
}
