package api

import (
	"net/http"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/handler"
	"github.com/dukerupert/shopcore/internal/service"
)

// CheckoutHandler drives the checkout flow
type CheckoutHandler struct {
	checkout service.Checkout
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout service.Checkout) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type checkoutResponse struct {
	service.CheckoutState
	CanProceed bool `json:"can_proceed"`
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// Show handles GET /api/checkout
func (h *CheckoutHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, r, http.StatusOK)
}

// SetShipping handles PUT /api/checkout/shipping
// The address is stored as entered; it is validated on advance.
func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var addr domain.ShippingAddress
	if err := decodeJSON(r, "api.checkout.shipping", &addr); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.checkout.SetShippingAddress(addr); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

// SetPayment handles PUT /api/checkout/payment
func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	const op = "api.checkout.payment"

	var req paymentRequest
	if err := decodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.checkout.SetPaymentMethod(method); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

// Next handles POST /api/checkout/next
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	if _, err := h.checkout.Next(r.Context()); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

// Edit handles POST /api/checkout/edit/{step}
func (h *CheckoutHandler) Edit(w http.ResponseWriter, r *http.Request) {
	step, err := service.ParseCheckoutStep(r.PathValue("step"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	switch step {
	case service.StepShipping:
		err = h.checkout.EditShipping()
	case service.StepPayment:
		err = h.checkout.EditPayment()
	}
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

// Place handles POST /api/checkout/place
func (h *CheckoutHandler) Place(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.PlaceOrder(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, order)
}

// Reset handles POST /api/checkout/reset
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.checkout.Reset(); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *CheckoutHandler) writeState(w http.ResponseWriter, r *http.Request, status int) {
	handler.WriteJSON(w, status, checkoutResponse{
		CheckoutState: h.checkout.State(),
		CanProceed:    h.checkout.CanProceed(r.Context()),
	})
}
