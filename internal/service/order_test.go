package service

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRequest() domain.OrderRequest {
	return domain.OrderRequest{
		Items: []domain.OrderItem{
			{ID: uuid.New(), ProductID: 1, ProductName: "Wireless Headphones", Price: money("199.99"), Quantity: 1},
		},
		ShippingAddress: validShipping(),
		PaymentMethod:   domain.PaymentPayPal,
		Subtotal:        money("199.99"),
		Tax:             money("16.00"),
		ShippingCost:    money("0"),
		Total:           money("215.99"),
	}
}

func TestLocalOrderSubmitter_CreateAndGet(t *testing.T) {
	s := NewLocalOrderSubmitter()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	order, err := s.CreateOrder(context.Background(), orderRequest())
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-\d{6}$`, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, fixed, order.CreatedAt)
	assert.True(t, order.Total.Equal(money("215.99")))

	got, err := s.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, order.Items, got.Items)

	_, err = s.GetOrder(context.Background(), "ORD-000000")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestLocalOrderSubmitter_RetriesCollidingIDs(t *testing.T) {
	s := NewLocalOrderSubmitter()
	ids := []string{"ORD-111111", "ORD-111111", "ORD-222222"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := s.CreateOrder(context.Background(), orderRequest())
	require.NoError(t, err)
	second, err := s.CreateOrder(context.Background(), orderRequest())
	require.NoError(t, err)

	assert.Equal(t, "ORD-111111", first.ID)
	assert.Equal(t, "ORD-222222", second.ID)
}

func TestLocalOrderSubmitter_Errors(t *testing.T) {
	s := NewLocalOrderSubmitter()

	_, err := s.CreateOrder(context.Background(), domain.OrderRequest{})
	assert.ErrorIs(t, err, ErrCartEmpty)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.CreateOrder(ctx, orderRequest())
	assert.True(t, domain.IsRetryable(err))

	s.newID = func() string { return "ORD-333333" }
	_, err = s.CreateOrder(context.Background(), orderRequest())
	require.NoError(t, err)
	_, err = s.CreateOrder(context.Background(), orderRequest())
	assert.True(t, domain.IsCode(err, domain.EINTERNAL))
}
