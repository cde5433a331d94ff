package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukerupert/shopcore/internal/address"
	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/telemetry"
)

// CheckoutStep is a state of the checkout flow.
type CheckoutStep string

const (
	StepShipping CheckoutStep = "shipping"
	StepPayment  CheckoutStep = "payment"
	StepReview   CheckoutStep = "review"
	StepPlacing  CheckoutStep = "placing"
	StepPlaced   CheckoutStep = "placed"
)

// ParseCheckoutStep accepts the steps that can be edited from review.
func ParseCheckoutStep(s string) (CheckoutStep, error) {
	switch CheckoutStep(s) {
	case StepShipping, StepPayment:
		return CheckoutStep(s), nil
	}
	return "", domain.Invalid("checkout.parse_step", "unknown editable step: "+s)
}

// Checkout sequences shipping input, payment selection, review and order
// placement. Placing an order removes the ordered lines from the cart.
type Checkout interface {
	State() CheckoutState

	SetShippingAddress(addr domain.ShippingAddress) error
	SetPaymentMethod(method domain.PaymentMethod) error

	// CanProceed reports whether Next would succeed from the current step.
	CanProceed(ctx context.Context) bool
	// Next advances from shipping to payment or from payment to review.
	Next(ctx context.Context) (CheckoutStep, error)

	EditShipping() error
	EditPayment() error

	// PlaceOrder submits the reviewed order. On failure the flow returns to
	// review with the error recorded so the shopper can retry.
	PlaceOrder(ctx context.Context) (*domain.Order, error)

	// Reset starts a new checkout once an order has been placed.
	Reset() error

	// OnPlaced registers a hook run after every successful placement.
	OnPlaced(fn func(order domain.Order))
}

// CheckoutState is a consistent read of the checkout flow.
type CheckoutState struct {
	Step            CheckoutStep           `json:"step"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method"`
	Order           *domain.Order          `json:"order,omitempty"`
	Error           string                 `json:"error,omitempty"`
	Retryable       bool                   `json:"retryable"`
}

type checkout struct {
	cart      CartStore
	validator address.Validator
	submitter domain.OrderSubmitter
	logger    *slog.Logger
	metrics   *telemetry.BusinessMetrics

	mu       sync.Mutex
	step     CheckoutStep
	addr     domain.ShippingAddress
	method   domain.PaymentMethod
	order    *domain.Order
	lastErr  error
	onPlaced []func(domain.Order)
}

// NewCheckout creates a checkout flow at the shipping step.
func NewCheckout(cart CartStore, validator address.Validator, submitter domain.OrderSubmitter, logger *slog.Logger, metrics *telemetry.BusinessMetrics) Checkout {
	c := &checkout{
		cart:      cart,
		validator: validator,
		submitter: submitter,
		logger:    logger,
		metrics:   metrics,
	}
	c.resetLocked()
	return c
}

func (c *checkout) resetLocked() {
	c.step = StepShipping
	c.addr = domain.EmptyShippingAddress()
	c.method = domain.PaymentCreditCard
	c.order = nil
	c.lastErr = nil
}

func (c *checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := CheckoutState{
		Step:            c.step,
		ShippingAddress: c.addr,
		PaymentMethod:   c.method,
	}
	if c.order != nil {
		o := *c.order
		o.Items = slices.Clone(o.Items)
		st.Order = &o
	}
	if c.lastErr != nil {
		st.Error = domain.ErrorMessage(c.lastErr)
		st.Retryable = domain.IsRetryable(c.lastErr)
	}
	return st
}

// guardLocked rejects mutations while an order is being placed or once it is placed.
func (c *checkout) guardLocked(op string) error {
	switch c.step {
	case StepPlacing:
		return withOp(ErrOrderInProgress, op)
	case StepPlaced:
		return withOp(ErrCheckoutStep, op)
	}
	return nil
}

func (c *checkout) SetShippingAddress(addr domain.ShippingAddress) error {
	const op = "checkout.set_shipping"

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardLocked(op); err != nil {
		return err
	}
	if c.step != StepShipping {
		return withOp(ErrCheckoutStep, op)
	}
	c.addr = addr
	return nil
}

func (c *checkout) SetPaymentMethod(method domain.PaymentMethod) error {
	const op = "checkout.set_payment"

	if _, err := domain.ParsePaymentMethod(string(method)); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardLocked(op); err != nil {
		return err
	}
	if c.step != StepPayment {
		return withOp(ErrCheckoutStep, op)
	}
	c.method = method
	return nil
}

func (c *checkout) CanProceed(ctx context.Context) bool {
	c.mu.Lock()
	step, addr := c.step, c.addr
	c.mu.Unlock()

	switch step {
	case StepShipping:
		result, err := c.validator.Validate(ctx, addr)
		return err == nil && result.IsValid
	case StepPayment, StepReview:
		return true
	}
	return false
}

func (c *checkout) Next(ctx context.Context) (CheckoutStep, error) {
	const op = "checkout.next"

	c.mu.Lock()
	if err := c.guardLocked(op); err != nil {
		c.mu.Unlock()
		return "", err
	}
	step, addr := c.step, c.addr
	c.mu.Unlock()

	switch step {
	case StepShipping:
		result, err := c.validator.Validate(ctx, addr)
		if err != nil {
			return "", err
		}
		if verr := result.Err("checkout.shipping"); verr != nil {
			return "", verr
		}
		return c.advance(op, StepShipping, StepPayment, &result.NormalizedAddress)
	case StepPayment:
		return c.advance(op, StepPayment, StepReview, nil)
	default:
		// Review moves forward only through PlaceOrder.
		return "", withOp(ErrCheckoutStep, op)
	}
}

// advance moves from one step to the next if no other call moved the flow first.
func (c *checkout) advance(op string, from, to CheckoutStep, addr *domain.ShippingAddress) (CheckoutStep, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != from {
		if err := c.guardLocked(op); err != nil {
			return "", err
		}
		return "", withOp(ErrCheckoutStep, op)
	}
	if addr != nil {
		c.addr = *addr
	}
	c.step = to
	c.metrics.RecordCheckoutStep(string(to))
	c.logger.Debug("Checkout advanced", "from", from, "to", to)
	return to, nil
}

func (c *checkout) EditShipping() error {
	return c.edit("checkout.edit_shipping", StepShipping)
}

func (c *checkout) EditPayment() error {
	return c.edit("checkout.edit_payment", StepPayment)
}

// edit returns from review to an earlier step. Entered data is kept.
func (c *checkout) edit(op string, to CheckoutStep) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardLocked(op); err != nil {
		return err
	}
	if c.step != StepReview {
		return withOp(ErrCheckoutStep, op)
	}
	c.step = to
	c.metrics.RecordCheckoutStep(string(to))
	return nil
}

func (c *checkout) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	const op = "checkout.place_order"

	c.mu.Lock()
	if c.step == StepPlacing {
		c.mu.Unlock()
		return nil, withOp(ErrOrderInProgress, op)
	}
	if c.step != StepReview {
		c.mu.Unlock()
		return nil, withOp(ErrCheckoutStep, op)
	}
	c.step = StepPlacing
	c.lastErr = nil
	addr, method := c.addr, c.method
	c.mu.Unlock()
	c.metrics.RecordCheckoutStep(string(StepPlacing))

	order, ordered, err := c.submit(ctx, op, addr, method)
	if err != nil {
		c.mu.Lock()
		c.step = StepReview
		c.lastErr = err
		c.mu.Unlock()

		c.metrics.RecordOrderFailed(domain.ErrorCode(err))
		c.logger.Error("Order placement failed", "error", err, "retryable", domain.IsRetryable(err))
		return nil, err
	}

	c.cart.RemoveOrdered(ordered)
	c.metrics.RecordCartCleared(telemetry.ClearOrderPlaced)

	c.mu.Lock()
	c.step = StepPlaced
	c.order = order
	hooks := slices.Clone(c.onPlaced)
	c.mu.Unlock()

	units := 0
	for _, it := range order.Items {
		units += it.Quantity
	}
	c.metrics.RecordCheckoutStep(string(StepPlaced))
	c.metrics.RecordOrderCreated(string(order.PaymentMethod), order.Total, units)
	c.logger.Info("Order placed", "order_id", order.ID, "total", order.Total.StringFixed(2), "items", len(order.Items))

	for _, fn := range hooks {
		fn(*order)
	}
	return order, nil
}

// submit prices the cart as it stands and sends it to the submitter. The
// priced lines are returned so only they leave the cart.
func (c *checkout) submit(ctx context.Context, op string, addr domain.ShippingAddress, method domain.PaymentMethod) (*domain.Order, []domain.CartItem, error) {
	summary, err := c.cart.Summary(ctx)
	if err != nil {
		return nil, nil, err
	}
	if summary.IsEmpty {
		return nil, nil, withOp(ErrCartEmpty, op)
	}

	order, err := c.submitter.CreateOrder(ctx, domain.OrderRequest{
		Items:           orderItems(summary.Items),
		ShippingAddress: addr,
		PaymentMethod:   method,
		Subtotal:        summary.Subtotal,
		Tax:             summary.Tax,
		ShippingCost:    summary.ShippingCost,
		Total:           summary.Total,
	})
	if err != nil {
		return nil, nil, fetchError(err, op, "Failed to submit order")
	}
	return order, summary.Items, nil
}

func (c *checkout) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step == StepPlacing {
		return withOp(ErrOrderInProgress, "checkout.reset")
	}
	c.resetLocked()
	return nil
}

func (c *checkout) OnPlaced(fn func(order domain.Order)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPlaced = append(c.onPlaced, fn)
}
