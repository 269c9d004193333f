// Package event publishes order domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	pkgkafka "github.com/ahmad5farah/AmaKart/pkg/kafka"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
)

// Kafka topics for order events.
const (
	TopicOrderPlaced    = "amakart.order.placed"
	TopicOrderCancelled = "amakart.order.cancelled"
)

// Event types carried in the envelope.
const (
	TypeOrderPlaced    = "order.placed"
	TypeOrderCancelled = "order.cancelled"
)

const source = "amakart-storefront"

// OrderPlacedData is the payload of an order.placed event.
type OrderPlacedData struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id,omitempty"`
	VisitorID     string          `json:"visitor_id,omitempty"`
	ItemCount     int             `json:"item_count"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
}

// OrderCancelledData is the payload of an order.cancelled event.
type OrderCancelledData struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id,omitempty"`
}

// Producer publishes order events. A Producer without a Kafka producer
// drops every event, which is how the storefront runs without brokers.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
	now    func() time.Time
}

// NewProducer creates an order event producer. kafka may be nil.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger, now: time.Now}
}

// Enabled reports whether events reach a broker.
func (p *Producer) Enabled() bool {
	return p.kafka != nil
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	data := OrderPlacedData{
		OrderID:       order.ID,
		UserID:        order.UserID,
		VisitorID:     logger.VisitorIDFromContext(ctx),
		ItemCount:     domain.CartCount(order.Items),
		PaymentMethod: order.PaymentMethod,
		Total:         order.Total,
	}
	return p.publish(ctx, TopicOrderPlaced, TypeOrderPlaced, order.ID, data)
}

// PublishOrderCancelled publishes an order.cancelled event.
func (p *Producer) PublishOrderCancelled(ctx context.Context, order domain.Order) error {
	data := OrderCancelledData{OrderID: order.ID, UserID: order.UserID}
	return p.publish(ctx, TopicOrderCancelled, TypeOrderCancelled, order.ID, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, orderID string, data any) error {
	if p.kafka == nil {
		return nil
	}

	evt, err := pkgkafka.NewEvent(eventType, orderID, source, p.now(), data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithVisitorID(logger.VisitorIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published order event",
		slog.String("event_type", eventType),
		slog.String("order_id", orderID),
	)
	return nil
}
