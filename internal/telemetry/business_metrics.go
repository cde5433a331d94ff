package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// BusinessMetrics holds Prometheus metrics for storefront observability.
// Recorder methods are safe to call on a nil receiver.
type BusinessMetrics struct {
	// Catalog
	ProductSearches     *prometheus.CounterVec
	CatalogLoads        *prometheus.CounterVec
	CatalogLoadDuration *prometheus.HistogramVec

	// Cart
	CartItemsAdd *prometheus.CounterVec
	CartCleared  *prometheus.CounterVec
	CartValue    prometheus.Histogram

	// Checkout funnel
	CheckoutStep *prometheus.CounterVec
	OrdersFailed *prometheus.CounterVec

	// Orders
	OrdersCreated  *prometheus.CounterVec
	OrderValue     *prometheus.HistogramVec
	OrderItemCount prometheus.Histogram

	// Events
	EventsPublished *prometheus.CounterVec
}

// Label values used by the recorders.
const (
	LoadInitial = "initial"
	LoadRefresh = "refresh"
	LoadMore    = "more"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultStale   = "stale"

	ClearManual      = "manual"
	ClearOrderPlaced = "order_placed"
)

var moneyBuckets = []float64{10, 25, 50, 100, 150, 250, 500, 1000}

// NewBusinessMetrics creates and registers all business metrics on reg.
func NewBusinessMetrics(reg prometheus.Registerer, namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "shopcore"
	}

	subsystem := "business"
	factory := promauto.With(reg)

	m := &BusinessMetrics{
		// =======================================================================
		// Catalog
		// =======================================================================
		ProductSearches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_searches_total",
				Help:      "Total product list queries by filter type",
			},
			[]string{"filter_type"}, // filter_type: search, category, price, stock, none
		),
		CatalogLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_loads_total",
				Help:      "Total catalog fetches by kind and result",
			},
			[]string{"kind", "result"},
		),
		CatalogLoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_load_duration_seconds",
				Help:      "Catalog fetch duration",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"kind"},
		),

		// =======================================================================
		// Cart
		// =======================================================================
		CartItemsAdd: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total units added to the cart",
			},
			[]string{"category"},
		),
		CartCleared: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total cart clears",
			},
			[]string{"reason"}, // reason: manual, order_placed
		),
		CartValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value_dollars",
				Help:      "Cart subtotal observed after each mutation",
				Buckets:   moneyBuckets,
			},
		),

		// =======================================================================
		// Checkout Funnel
		// =======================================================================
		CheckoutStep: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_step_total",
				Help:      "Total entries into each checkout step",
			},
			[]string{"step"},
		),
		OrdersFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_failed_total",
				Help:      "Total order placement failures",
			},
			[]string{"error_type"},
		),

		// =======================================================================
		// Orders
		// =======================================================================
		OrdersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
			[]string{"payment_method"},
		),
		OrderValue: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_dollars",
				Help:      "Order total",
				Buckets:   moneyBuckets,
			},
			[]string{"payment_method"},
		),
		OrderItemCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Units per order",
				Buckets:   []float64{1, 2, 3, 5, 10, 20},
			},
		),

		// =======================================================================
		// Events
		// =======================================================================
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Total domain events published",
			},
			[]string{"subject", "result"},
		),
	}

	return m
}

// RecordSearch counts a product list query under each active filter type.
func (m *BusinessMetrics) RecordSearch(filterTypes ...string) {
	if m == nil {
		return
	}
	if len(filterTypes) == 0 {
		m.ProductSearches.WithLabelValues("none").Inc()
		return
	}
	for _, ft := range filterTypes {
		m.ProductSearches.WithLabelValues(ft).Inc()
	}
}

// RecordCatalogLoad records a fetch outcome and its duration.
func (m *BusinessMetrics) RecordCatalogLoad(kind, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.CatalogLoads.WithLabelValues(kind, result).Inc()
	m.CatalogLoadDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *BusinessMetrics) RecordCartAdd(category string, quantity int) {
	if m == nil {
		return
	}
	m.CartItemsAdd.WithLabelValues(category).Add(float64(quantity))
}

func (m *BusinessMetrics) RecordCartCleared(reason string) {
	if m == nil {
		return
	}
	m.CartCleared.WithLabelValues(reason).Inc()
}

func (m *BusinessMetrics) ObserveCartValue(subtotal decimal.Decimal) {
	if m == nil {
		return
	}
	m.CartValue.Observe(subtotal.InexactFloat64())
}

func (m *BusinessMetrics) RecordCheckoutStep(step string) {
	if m == nil {
		return
	}
	m.CheckoutStep.WithLabelValues(step).Inc()
}

// RecordOrderCreated records a placed order.
func (m *BusinessMetrics) RecordOrderCreated(paymentMethod string, total decimal.Decimal, units int) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(paymentMethod).Inc()
	m.OrderValue.WithLabelValues(paymentMethod).Observe(total.InexactFloat64())
	m.OrderItemCount.Observe(float64(units))
}

func (m *BusinessMetrics) RecordOrderFailed(errorType string) {
	if m == nil {
		return
	}
	m.OrdersFailed.WithLabelValues(errorType).Inc()
}

// RecordEventPublished counts a publish attempt; a non-nil err counts as an error.
func (m *BusinessMetrics) RecordEventPublished(subject string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.EventsPublished.WithLabelValues(subject, result).Inc()
}
