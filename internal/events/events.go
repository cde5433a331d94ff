// Package events publishes storefront domain events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subjects
const (
	SubjectCartItemAdded = "shopcore.cart.item_added"
	SubjectOrderPlaced   = "shopcore.order.placed"
)

// Publisher delivers events to interested collaborators.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

// Envelope wraps every published payload.
type Envelope struct {
	ID         uuid.UUID `json:"id"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func encodeEnvelope(subject string, payload any, at time.Time) (uuid.UUID, []byte, error) {
	env := Envelope{ID: uuid.New(), Subject: subject, OccurredAt: at.UTC(), Data: payload}
	data, err := json.Marshal(env)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to encode %s event: %w", subject, err)
	}
	return env.ID, data, nil
}

// CartItemAdded is published after a successful add to cart.
type CartItemAdded struct {
	ItemID      uuid.UUID `json:"item_id"`
	ProductID   int       `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Color       string    `json:"color,omitempty"`
	Size        string    `json:"size,omitempty"`
}

// OrderPlaced is published once an order is recorded.
type OrderPlaced struct {
	OrderID       string          `json:"order_id"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, subject string, payload any) error { return nil }
func (NopPublisher) Close() error                                                  { return nil }
