package routes

import (
	"net/http"

	"github.com/dukerupert/shopcore/internal/handler"
	"github.com/dukerupert/shopcore/internal/router"
)

// RegisterOpsRoutes registers health, readiness and metrics endpoints.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Named("ops.health")

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if deps.Ready != nil && !deps.Ready() {
			handler.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			return
		}
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Named("ops.ready")

	if deps.MetricsHandler != nil {
		r.Handle(http.MethodGet, "/metrics", deps.MetricsHandler).Named("ops.metrics")
	}
}
