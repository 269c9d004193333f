package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants.
const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment method constants.
const (
	PaymentCredit = "credit"
	PaymentPayPal = "paypal"
	PaymentApple  = "apple"
	PaymentGoogle = "google"
)

// OrderIDPrefix starts every order number.
const OrderIDPrefix = "AMK"

// DeliveryEstimate is added to the order date to get the estimated delivery.
const DeliveryEstimate = 7 * 24 * time.Hour

// Address is a shipping address.
type Address struct {
	FirstName string `json:"first_name" validate:"notblank,max=100"`
	LastName  string `json:"last_name" validate:"notblank,max=100"`
	Street    string `json:"street" validate:"notblank,max=200"`
	City      string `json:"city" validate:"notblank,max=100"`
	State     string `json:"state" validate:"notblank,max=100"`
	Zip       string `json:"zip" validate:"notblank,max=20"`
	Country   string `json:"country" validate:"notblank,max=100"`
	Phone     string `json:"phone,omitempty" validate:"max=30"`
}

// Order is a placed order.
type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id,omitempty"`
	Status            string          `json:"status"`
	OrderDate         time.Time       `json:"order_date"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	Items             []CartItem      `json:"items"`
	ShippingAddress   Address         `json:"shipping_address"`
	PaymentMethod     string          `json:"payment_method"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Shipping          decimal.Decimal `json:"shipping"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidPaymentMethod reports whether m is an accepted payment method.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCredit, PaymentPayPal, PaymentApple, PaymentGoogle:
		return true
	}
	return false
}

// Cancellable reports whether the order can still be cancelled.
func (o Order) Cancellable() bool {
	return o.Status == OrderStatusConfirmed || o.Status == OrderStatusShipped
}
