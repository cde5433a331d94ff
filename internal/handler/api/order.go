package api

import (
	"net/http"
	"strings"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/handler"
)

// OrderHandler serves placed orders
type OrderHandler struct {
	orders domain.OrderRepository
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders domain.OrderRepository) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Show handles GET /api/orders/{id}
func (h *OrderHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(r.PathValue("id"))

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, order)
}
