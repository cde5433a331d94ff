package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/shipping"
	"github.com/dukerupert/shopcore/internal/tax"
	"github.com/dukerupert/shopcore/internal/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartStore maintains the shopper's line items and derives totals.
type CartStore interface {
	// Add merges into the line with the same product and resolved variant,
	// or appends a new line. Returns the resulting line.
	Add(product domain.Product, quantity int, sel domain.Variant) (domain.CartItem, error)
	Remove(id uuid.UUID) error
	RemoveAt(indices ...int) error
	// UpdateQuantity sets a line's quantity; zero or less removes the line.
	UpdateQuantity(id uuid.UUID, quantity int) error
	Increment(id uuid.UUID) error
	Decrement(id uuid.UUID) error
	Clear()
	// RemoveOrdered subtracts each ordered line's quantity from the line with
	// the same id. Lines that reach zero are dropped; lines added after the
	// snapshot was taken are kept.
	RemoveOrdered(lines []domain.CartItem)

	Items() []domain.CartItem
	Item(id uuid.UUID) (domain.CartItem, bool)
	Contains(productID int) bool
	QuantityOf(productID int) int
	ItemCount() int
	Subtotal() decimal.Decimal
	IsEmpty() bool

	// Summary prices the current cart with the configured tax and shipping policy.
	Summary(ctx context.Context) (*CartSummary, error)
	OrderItems() []domain.OrderItem

	// OnItemAdded registers a hook run after every successful Add.
	OnItemAdded(fn func(item domain.CartItem, added int))
	// OnChange registers a hook run with a copy of the lines after a
	// successful mutation, outside the store lock. Deliveries are serialized
	// in mutation order and a snapshot already superseded when its turn comes
	// is skipped, so the last delivery always matches the live cart. Hooks
	// must not mutate the cart.
	OnChange(fn func(items []domain.CartItem))
	// Restore replaces the lines with a previously saved set. Lines with a
	// non-positive quantity are dropped. Change hooks are not run.
	Restore(items []domain.CartItem)
}

// CartSummary aggregates cart items with calculated totals.
// Total is exactly Subtotal + Tax + ShippingCost.
type CartSummary struct {
	Items        []domain.CartItem `json:"items"`
	ItemCount    int               `json:"item_count"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	Tax          decimal.Decimal   `json:"tax"`
	ShippingCost decimal.Decimal   `json:"shipping_cost"`
	FreeShipping bool              `json:"free_shipping"`
	Total        decimal.Decimal   `json:"total"`
	IsEmpty      bool              `json:"is_empty"`
}

type cartStore struct {
	taxCalc  tax.Calculator
	shipping shipping.Provider
	logger   *slog.Logger
	metrics  *telemetry.BusinessMetrics

	mu       sync.Mutex
	items    []domain.CartItem
	version  uint64
	onAdded  []func(domain.CartItem, int)
	onChange []func([]domain.CartItem)

	// deliverMu orders OnChange deliveries; delivered is the newest version
	// handed to the hooks.
	deliverMu sync.Mutex
	delivered uint64
}

// NewCartStore creates an empty cart priced by taxCalc and shippingProvider.
func NewCartStore(taxCalc tax.Calculator, shippingProvider shipping.Provider, logger *slog.Logger, metrics *telemetry.BusinessMetrics) CartStore {
	return &cartStore{
		taxCalc:  taxCalc,
		shipping: shippingProvider,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *cartStore) Add(product domain.Product, quantity int, sel domain.Variant) (domain.CartItem, error) {
	if quantity <= 0 {
		return domain.CartItem{}, withOp(ErrInvalidQuantity, "cart.add")
	}

	key := domain.LineKey{ProductID: product.ID, Variant: domain.ResolveVariant(product, sel)}

	s.mu.Lock()
	var item domain.CartItem
	if i := s.indexOfKey(key); i >= 0 {
		s.items[i].Quantity += quantity
		item = s.items[i]
	} else {
		item = domain.CartItem{
			ID:       uuid.New(),
			Product:  product,
			Quantity: quantity,
			Variant:  key.Variant,
		}
		s.items = append(s.items, item)
	}
	subtotal := s.subtotalLocked()
	hooks := slices.Clone(s.onAdded)
	notify := s.changeLocked()
	s.mu.Unlock()

	s.metrics.RecordCartAdd(product.Category, quantity)
	s.metrics.ObserveCartValue(subtotal)
	s.logger.Debug("Added to cart", "product_id", product.ID, "quantity", quantity, "line_quantity", item.Quantity)

	for _, fn := range hooks {
		fn(item, quantity)
	}
	notify()
	return item, nil
}

// mutate runs fn under the lock and fires change hooks when it succeeds.
func (s *cartStore) mutate(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	notify := s.changeLocked()
	s.mu.Unlock()

	notify()
	return nil
}

func (s *cartStore) changeLocked() func() {
	s.version++
	if len(s.onChange) == 0 {
		return func() {}
	}
	version := s.version
	snapshot := slices.Clone(s.items)
	hooks := slices.Clone(s.onChange)
	return func() {
		s.deliverMu.Lock()
		defer s.deliverMu.Unlock()
		if version <= s.delivered {
			return
		}
		s.delivered = version
		for _, fn := range hooks {
			fn(snapshot)
		}
	}
}

func (s *cartStore) indexOfKey(key domain.LineKey) int {
	for i, it := range s.items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

func (s *cartStore) indexOfID(id uuid.UUID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *cartStore) Remove(id uuid.UUID) error {
	return s.mutate(func() error {
		i := s.indexOfID(id)
		if i < 0 {
			return withOp(ErrCartItemNotFound, "cart.remove")
		}
		s.items = slices.Delete(s.items, i, i+1)
		return nil
	})
}

// RemoveAt deletes the lines at the given positions. Either every index is
// valid and all are removed, or nothing changes.
func (s *cartStore) RemoveAt(indices ...int) error {
	return s.mutate(func() error {
		drop := make(map[int]bool, len(indices))
		for _, idx := range indices {
			if idx < 0 || idx >= len(s.items) {
				return withOp(ErrInvalidIndex, "cart.remove_at")
			}
			drop[idx] = true
		}

		kept := make([]domain.CartItem, 0, len(s.items)-len(drop))
		for i, it := range s.items {
			if !drop[i] {
				kept = append(kept, it)
			}
		}
		s.items = kept
		return nil
	})
}

func (s *cartStore) UpdateQuantity(id uuid.UUID, quantity int) error {
	return s.mutate(func() error {
		return s.setQuantityLocked(id, func(int) int { return quantity }, "cart.update_quantity")
	})
}

func (s *cartStore) Increment(id uuid.UUID) error {
	return s.mutate(func() error {
		return s.setQuantityLocked(id, func(q int) int { return q + 1 }, "cart.increment")
	})
}

func (s *cartStore) Decrement(id uuid.UUID) error {
	return s.mutate(func() error {
		return s.setQuantityLocked(id, func(q int) int { return q - 1 }, "cart.decrement")
	})
}

func (s *cartStore) setQuantityLocked(id uuid.UUID, next func(current int) int, op string) error {
	i := s.indexOfID(id)
	if i < 0 {
		return withOp(ErrCartItemNotFound, op)
	}
	q := next(s.items[i].Quantity)
	if q <= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		return nil
	}
	s.items[i].Quantity = q
	return nil
}

func (s *cartStore) Clear() {
	_ = s.mutate(func() error {
		s.items = nil
		return nil
	})
}

func (s *cartStore) RemoveOrdered(lines []domain.CartItem) {
	_ = s.mutate(func() error {
		for _, ordered := range lines {
			i := s.indexOfID(ordered.ID)
			if i < 0 {
				continue
			}
			if s.items[i].Quantity <= ordered.Quantity {
				s.items = slices.Delete(s.items, i, i+1)
				continue
			}
			s.items[i].Quantity -= ordered.Quantity
		}
		return nil
	})
}

func (s *cartStore) Restore(items []domain.CartItem) {
	kept := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = kept
	s.version++
}

func (s *cartStore) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *cartStore) Item(id uuid.UUID) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfID(id); i >= 0 {
		return s.items[i], true
	}
	return domain.CartItem{}, false
}

// Contains reports whether any line holds the product, regardless of variant.
func (s *cartStore) Contains(productID int) bool {
	return s.QuantityOf(productID) > 0
}

// QuantityOf sums quantities across all variants of the product.
func (s *cartStore) QuantityOf(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		if it.Product.ID == productID {
			n += it.Quantity
		}
	}
	return n
}

func (s *cartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemCount(s.items)
}

func (s *cartStore) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

func (s *cartStore) subtotalLocked() decimal.Decimal {
	return subtotal(s.items)
}

func (s *cartStore) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *cartStore) Summary(ctx context.Context) (*CartSummary, error) {
	const op = "cart.summary"

	items := s.Items()
	sub := subtotal(items)

	lineItems := make([]tax.LineItem, len(items))
	for i, it := range items {
		lineItems[i] = tax.LineItem{
			ProductID:   it.Product.ID,
			Description: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Product.Price,
			TotalPrice:  it.LineTotal(),
		}
	}

	taxResult, err := s.taxCalc.CalculateTax(ctx, tax.TaxParams{LineItems: lineItems})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "Failed to calculate tax")
	}

	quote, err := s.shipping.Quote(ctx, shipping.QuoteParams{Subtotal: sub, ItemCount: itemCount(items)})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "Failed to quote shipping")
	}

	return &CartSummary{
		Items:        items,
		ItemCount:    itemCount(items),
		Subtotal:     sub,
		Tax:          taxResult.TotalTax,
		ShippingCost: quote.Cost,
		FreeShipping: quote.Free,
		Total:        sub.Add(taxResult.TotalTax).Add(quote.Cost),
		IsEmpty:      len(items) == 0,
	}, nil
}

func (s *cartStore) OrderItems() []domain.OrderItem {
	return orderItems(s.Items())
}

func (s *cartStore) OnItemAdded(fn func(item domain.CartItem, added int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAdded = append(s.onAdded, fn)
}

func (s *cartStore) OnChange(fn func(items []domain.CartItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func itemCount(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func subtotal(items []domain.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func orderItems(items []domain.CartItem) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	for i, it := range items {
		out[i] = it.ToOrderItem()
	}
	return out
}
