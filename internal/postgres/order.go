package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

const maxOrderIDAttempts = 5

// OrderRepository stores orders and their line items in PostgreSQL.
type OrderRepository struct {
	pool  *pgxpool.Pool
	newID func() string
}

// Compile-time check that OrderRepository implements domain.OrderRepository.
var _ domain.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool:  pool,
		newID: domain.NewOrderNumber,
	}
}

// CreateOrder inserts the order and its items in one transaction.
// A colliding order number is regenerated a bounded number of times.
func (r *OrderRepository) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	const op = "order.create"

	if len(req.Items) == 0 {
		return nil, service.ErrCartEmpty
	}

	address, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode shipping address")
	}

	for range maxOrderIDAttempts {
		order, err := r.insertOrder(ctx, r.newID(), address, req)
		if err == nil {
			return order, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "orders_pkey" {
			continue
		}
		return nil, domain.FetchFailed(err, op, "Failed to save order")
	}
	return nil, domain.Errorf(domain.EINTERNAL, op, "could not allocate a unique order number")
}

func (r *OrderRepository) insertOrder(ctx context.Context, id string, address []byte, req domain.OrderRequest) (order *domain.Order, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, shipping_address, payment_method, subtotal, tax, shipping_cost, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		id, address, string(req.PaymentMethod),
		req.Subtotal.String(), req.Tax.String(), req.ShippingCost.String(), req.Total.String(),
		string(domain.OrderStatusPending),
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i, item := range req.Items {
		batch.Queue(`
			INSERT INTO order_items (id, order_id, position, product_id, product_name, price, quantity, selected_color, selected_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID.String(), id, i, item.ProductID, item.ProductName,
			item.Price.String(), item.Quantity, item.SelectedColor, item.SelectedSize,
		)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("failed to insert order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &domain.Order{
		ID:              id,
		Items:           append([]domain.OrderItem(nil), req.Items...),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		ShippingCost:    req.ShippingCost,
		Total:           req.Total,
		Status:          domain.OrderStatusPending,
		CreatedAt:       createdAt.UTC(),
	}, nil
}

// GetOrder loads an order and its items by order number.
func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	const op = "order.get"

	var order domain.Order
	var address []byte
	var method, status string
	var subtotal, taxAmount, shipping, total string
	err := r.pool.QueryRow(ctx, `
		SELECT id, shipping_address, payment_method, subtotal::text, tax::text,
		       shipping_cost::text, total::text, status, created_at
		FROM orders
		WHERE id = $1`, id,
	).Scan(&order.ID, &address, &method, &subtotal, &taxAmount, &shipping, &total, &status, &order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, service.ErrOrderNotFound
	}
	if err != nil {
		return nil, domain.FetchFailed(err, op, "Failed to load order")
	}

	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, domain.Internal(err, op, "failed to decode shipping address")
	}
	order.PaymentMethod = domain.PaymentMethod(method)
	order.Status = domain.OrderStatus(status)
	order.CreatedAt = order.CreatedAt.UTC()
	if order.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, domain.Internal(err, op, "invalid subtotal")
	}
	if order.Tax, err = decimal.NewFromString(taxAmount); err != nil {
		return nil, domain.Internal(err, op, "invalid tax")
	}
	if order.ShippingCost, err = decimal.NewFromString(shipping); err != nil {
		return nil, domain.Internal(err, op, "invalid shipping cost")
	}
	if order.Total, err = decimal.NewFromString(total); err != nil {
		return nil, domain.Internal(err, op, "invalid total")
	}

	order.Items, err = r.listItems(ctx, id)
	if err != nil {
		return nil, domain.FetchFailed(err, op, "Failed to load order items")
	}
	return &order, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, product_id, product_name, price::text, quantity, selected_color, selected_size
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item      domain.OrderItem
			id, price string
		)
		if err := rows.Scan(&id, &item.ProductID, &item.ProductName, &price, &item.Quantity, &item.SelectedColor, &item.SelectedSize); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if item.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid order item id %q: %w", id, err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid order item price: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
