package routes

import (
	"net/http"
	"testing"

	"github.com/dukerupert/shopcore/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesAreNamed(t *testing.T) {
	r := router.New()
	RegisterOpsRoutes(r, OpsDeps{MetricsHandler: http.NotFoundHandler()})
	RegisterAPIRoutes(r, APIDeps{})

	all := r.Routes()
	require.NotEmpty(t, all)

	seen := make(map[string]string, len(all))
	for _, rt := range all {
		assert.NotEmpty(t, rt.Name, "%s %s has no name", rt.Method, rt.Pattern)
		if prev, dup := seen[rt.Name]; dup {
			t.Errorf("name %q used by %s and %s %s", rt.Name, prev, rt.Method, rt.Pattern)
		}
		seen[rt.Name] = rt.Method + " " + rt.Pattern
	}

	assert.Equal(t, "POST /api/cart/items", seen["cart.add"])
	assert.Equal(t, "POST /api/checkout/place", seen["checkout.place"])
	assert.Equal(t, "GET /metrics", seen["ops.metrics"])
}
