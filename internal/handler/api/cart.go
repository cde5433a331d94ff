package api

import (
	"net/http"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/handler"
	"github.com/dukerupert/shopcore/internal/service"
	"github.com/dukerupert/shopcore/internal/telemetry"
	"github.com/google/uuid"
)

// CartHandler handles the cart routes
type CartHandler struct {
	cart    service.CartStore
	catalog service.CatalogStore
	metrics *telemetry.BusinessMetrics
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cart service.CartStore, catalog service.CatalogStore, metrics *telemetry.BusinessMetrics) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog, metrics: metrics}
}

type addItemRequest struct {
	ProductID int    `json:"product_id"`
	Quantity  *int   `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type updateItemRequest struct {
	Quantity *int   `json:"quantity"`
	Action   string `json:"action"` // "increment" or "decrement"
}

type removeItemsRequest struct {
	Indices []int `json:"indices"`
}

// Show handles GET /api/cart
func (h *CartHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.writeSummary(w, r, http.StatusOK)
}

// AddItem handles POST /api/cart/items
// Quantity defaults to 1; an omitted color or size falls back to the
// product's first option.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.cart.add"

	var req addItemRequest
	if err := decodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.catalog.LookupProduct(r.Context(), req.ProductID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if _, err := h.cart.Add(product, quantity, domain.Variant{Color: req.Color, Size: req.Size}); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.writeSummary(w, r, http.StatusCreated)
}

// UpdateItem handles PATCH /api/cart/items/{id}
// The body sets an absolute quantity or steps it by one; a result of zero
// or less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.cart.update"

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid(op, "Invalid cart item id"))
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	switch {
	case req.Quantity != nil && req.Action == "":
		err = h.cart.UpdateQuantity(id, *req.Quantity)
	case req.Quantity == nil && req.Action == "increment":
		err = h.cart.Increment(id)
	case req.Quantity == nil && req.Action == "decrement":
		err = h.cart.Decrement(id)
	default:
		err = domain.Invalid(op, "Provide either quantity or action (increment, decrement)")
	}
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.writeSummary(w, r, http.StatusOK)
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("api.cart.remove", "Invalid cart item id"))
		return
	}

	if err := h.cart.Remove(id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.writeSummary(w, r, http.StatusOK)
}

// RemoveItems handles POST /api/cart/items/remove with {"indices": [0, 2]}
// Either every index is removed or none is.
func (h *CartHandler) RemoveItems(w http.ResponseWriter, r *http.Request) {
	const op = "api.cart.remove_items"

	var req removeItemsRequest
	if err := decodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.cart.RemoveAt(req.Indices...); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.writeSummary(w, r, http.StatusOK)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	h.metrics.RecordCartCleared(telemetry.ClearManual)
	h.writeSummary(w, r, http.StatusOK)
}

func (h *CartHandler) writeSummary(w http.ResponseWriter, r *http.Request, status int) {
	summary, err := h.cart.Summary(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, status, summary)
}
