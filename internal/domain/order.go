package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a finalized checkout snapshot.
// Items are denormalized copies, so catalog changes never alter historical orders.
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem is one denormalized order line.
type OrderItem struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     int             `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	SelectedColor string          `json:"selected_color,omitempty"`
	SelectedSize  string          `json:"selected_size,omitempty"`
}

// LineTotal returns price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderRequest is what checkout hands to an OrderSubmitter.
type OrderRequest struct {
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	ShippingCost    decimal.Decimal
	Total           decimal.Decimal
}

// ShippingAddress is a plain value record.
type ShippingAddress struct {
	FullName      string `json:"full_name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
	Country       string `json:"country"`
	PhoneNumber   string `json:"phone_number"`
}

// DefaultCountry is the country pre-filled on an empty address.
const DefaultCountry = "United States"

// EmptyShippingAddress returns the canonical empty address.
func EmptyShippingAddress() ShippingAddress {
	return ShippingAddress{Country: DefaultCountry}
}

// Formatted renders the address as three lines for display.
func (a ShippingAddress) Formatted() string {
	return fmt.Sprintf("%s\n%s, %s %s\n%s", a.StreetAddress, a.City, a.State, a.ZipCode, a.Country)
}

// PaymentMethod tags how the shopper intends to pay.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentApplePay   PaymentMethod = "Apple Pay"
	PaymentPayPal     PaymentMethod = "PayPal"
)

// PaymentMethods lists the accepted payment methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentDebitCard, PaymentApplePay, PaymentPayPal}

// ParsePaymentMethod accepts the display value of a payment method.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range PaymentMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", Invalid("payment.parse", fmt.Sprintf("unknown payment method %q", s))
}

// OrderStatus is the lifecycle state of an order.
// Transitions after placement belong to order management, not this module.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)
