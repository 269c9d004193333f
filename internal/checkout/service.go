// Package checkout validates payment details and turns a visitor's cart
// into an order.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/internal/state"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
	"github.com/ahmad5farah/AmaKart/pkg/tracing"
	"github.com/ahmad5farah/AmaKart/pkg/validator"
)

// OrderEvents publishes order.placed events.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}

// PlaceOrderInput is the final checkout submission.
type PlaceOrderInput struct {
	PaymentMethod   string         `json:"payment_method" validate:"required,oneof=credit paypal apple google"`
	Card            *CardForm      `json:"card,omitempty"`
	ShippingAddress domain.Address `json:"shipping_address"`
}

// Service places orders.
type Service struct {
	orders gateway.Orders
	events OrderEvents
	logger *slog.Logger
	now    func() time.Time
	newID  func(time.Time) string
}

// NewService creates a checkout service.
func NewService(orders gateway.Orders, events OrderEvents, logger *slog.Logger) *Service {
	return &Service{
		orders: orders,
		events: events,
		logger: logger,
		now:    time.Now,
		newID:  NewOrderID,
	}
}

// NewOrderID returns "AMK", the millisecond timestamp and a short random
// suffix.
func NewOrderID(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s%d%s", domain.OrderIDPrefix, at.UnixMilli(), suffix)
}

// Summary prices the visitor's cart.
func (s *Service) Summary(v *state.Visitor) Summary {
	return Summarize(v.Cart.Items())
}

// ValidateCard checks a card against the current month. It returns nil or
// validator.FieldErrors.
func (s *Service) ValidateCard(form CardForm) error {
	if errs := ValidateCard(form, s.now()); errs != nil {
		return errs
	}
	return nil
}

// PlaceOrder validates the submission against the visitor's cart and
// records the order. Signed-in visitors (userID set) also get the order
// stored remotely. On success the order becomes the last completed order
// and the cart is emptied.
func (s *Service) PlaceOrder(ctx context.Context, v *state.Visitor, userID string, in PlaceOrderInput) (order domain.Order, err error) {
	ctx, span := tracing.Start(ctx, "checkout.PlaceOrder",
		attribute.String("checkout.payment_method", in.PaymentMethod),
	)
	defer func() { tracing.End(span, err) }()

	if v.Cart.Empty() {
		return domain.Order{}, apperrors.InvalidInput("cart is empty")
	}
	in.ShippingAddress = sanitizeAddress(in.ShippingAddress)
	if err := validator.Validate(in); err != nil {
		return domain.Order{}, err
	}
	if in.PaymentMethod == domain.PaymentCredit {
		if in.Card == nil {
			return domain.Order{}, apperrors.InvalidInput("card details are required for credit card payments")
		}
		if err := s.ValidateCard(*in.Card); err != nil {
			return domain.Order{}, err
		}
	}

	now := s.now()
	items := v.Cart.Items()
	summary := Summarize(items)
	order = domain.Order{
		ID:                s.newID(now),
		UserID:            userID,
		Status:            domain.OrderStatusConfirmed,
		OrderDate:         now.UTC(),
		EstimatedDelivery: now.Add(domain.DeliveryEstimate).UTC(),
		Items:             items,
		ShippingAddress:   in.ShippingAddress,
		PaymentMethod:     in.PaymentMethod,
		Subtotal:          summary.Subtotal,
		Shipping:          summary.Shipping,
		Tax:               summary.Tax,
		Total:             summary.Total,
	}

	if userID != "" {
		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return domain.Order{}, err
		}
	}
	if err := v.Prefs.SetLastOrder(ctx, order); err != nil {
		return domain.Order{}, err
	}
	if err := v.Cart.Clear(ctx); err != nil {
		return domain.Order{}, err
	}

	l := logger.WithContext(ctx, s.logger)
	if err := s.events.PublishOrderPlaced(ctx, order); err != nil {
		l.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	l.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("payment_method", order.PaymentMethod),
		slog.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func sanitizeAddress(a domain.Address) domain.Address {
	return domain.Address{
		FirstName: domain.Sanitize(a.FirstName),
		LastName:  domain.Sanitize(a.LastName),
		Street:    domain.Sanitize(a.Street),
		City:      domain.Sanitize(a.City),
		State:     domain.Sanitize(a.State),
		Zip:       domain.Sanitize(a.Zip),
		Country:   domain.Sanitize(a.Country),
		Phone:     domain.Sanitize(a.Phone),
	}
}
