package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBusinessMetrics_Recorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBusinessMetrics(reg, "test")

	m.RecordSearch()
	m.RecordSearch("search", "category")
	m.RecordCatalogLoad(LoadInitial, ResultSuccess, 200*time.Millisecond)
	m.RecordCatalogLoad(LoadRefresh, ResultStale, time.Second)
	m.RecordCartAdd("Electronics", 3)
	m.RecordCartCleared(ClearOrderPlaced)
	m.ObserveCartValue(decimal.RequireFromString("110.00"))
	m.RecordCheckoutStep("review")
	m.RecordOrderCreated("Credit Card", decimal.RequireFromString("118.80"), 2)
	m.RecordOrderFailed("fetch_failed")
	m.RecordEventPublished("shopcore.order.placed", nil)
	m.RecordEventPublished("shopcore.order.placed", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductSearches.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductSearches.WithLabelValues("category")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogLoads.WithLabelValues(LoadInitial, ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogLoads.WithLabelValues(LoadRefresh, ResultStale)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CartItemsAdd.WithLabelValues("Electronics")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartCleared.WithLabelValues(ClearOrderPlaced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutStep.WithLabelValues("review")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCreated.WithLabelValues("Credit Card")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersFailed.WithLabelValues("fetch_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("shopcore.order.placed", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("shopcore.order.placed", ResultError)))

	assert.Equal(t, 1, testutil.CollectAndCount(m.CartValue))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OrderItemCount))
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics

	assert.NotPanics(t, func() {
		m.RecordSearch("search")
		m.RecordCatalogLoad(LoadMore, ResultError, time.Millisecond)
		m.RecordCartAdd("Home", 1)
		m.RecordCartCleared(ClearManual)
		m.ObserveCartValue(decimal.Zero)
		m.RecordCheckoutStep("payment")
		m.RecordOrderCreated("PayPal", decimal.Zero, 0)
		m.RecordOrderFailed("internal")
		m.RecordEventPublished("x", nil)
	})
}

func TestNewBusinessMetrics_DefaultNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBusinessMetrics(reg, "")
	m.RecordCartCleared(ClearManual)

	families, err := reg.Gather()
	assert.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "shopcore_business_cart_cleared_total")
}
