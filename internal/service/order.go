package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dukerupert/shopcore/internal/domain"
)

// maxOrderIDAttempts bounds retries when a generated order number collides.
const maxOrderIDAttempts = 5

// LocalOrderSubmitter records orders in memory. It is used when no
// database is configured.
type LocalOrderSubmitter struct {
	mu     sync.RWMutex
	orders map[string]domain.Order

	now   func() time.Time
	newID func() string
}

// NewLocalOrderSubmitter creates an empty in-memory order store.
func NewLocalOrderSubmitter() *LocalOrderSubmitter {
	return &LocalOrderSubmitter{
		orders: make(map[string]domain.Order),
		now:    time.Now,
		newID:  domain.NewOrderNumber,
	}
}

// CreateOrder stamps an order number, pending status and creation time.
func (s *LocalOrderSubmitter) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	const op = "order.create"

	if err := ctx.Err(); err != nil {
		return nil, domain.FetchFailed(err, op, "Order submission cancelled")
	}
	if len(req.Items) == 0 {
		return nil, withOp(ErrCartEmpty, op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for range maxOrderIDAttempts {
		id := s.newID()
		if _, taken := s.orders[id]; taken {
			continue
		}
		order := domain.Order{
			ID:              id,
			Items:           slices.Clone(req.Items),
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Subtotal:        req.Subtotal,
			Tax:             req.Tax,
			ShippingCost:    req.ShippingCost,
			Total:           req.Total,
			Status:          domain.OrderStatusPending,
			CreatedAt:       s.now().UTC(),
		}
		s.orders[id] = order
		return &order, nil
	}
	return nil, domain.Errorf(domain.EINTERNAL, op, "could not allocate a unique order number")
}

// GetOrder returns a previously created order.
func (s *LocalOrderSubmitter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, withOp(ErrOrderNotFound, "order.get")
	}
	order.Items = slices.Clone(order.Items)
	return &order, nil
}
