package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/pkg/database"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/tracing"
)

// OrderStore implements gateway.Orders over the orders table. The status
// column mirrors data->>'status' so it can be filtered and updated.
type OrderStore struct {
	db database.DBTX
}

var _ gateway.Orders = (*OrderStore)(nil)

// NewOrderStore creates an order store.
func NewOrderStore(db database.DBTX) *OrderStore {
	return &OrderStore{db: db}
}

// CreateOrder stores order.
func (s *OrderStore) CreateOrder(ctx context.Context, order domain.Order) (err error) {
	ctx, span := tracing.Start(ctx, "gateway.CreateOrder", attribute.String("order.id", order.ID))
	defer func() { tracing.End(span, err) }()

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, data, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		order.ID, order.UserID, order.Status, data, order.OrderDate,
	)
	if err != nil {
		return apperrors.NetworkError("failed to save order", err)
	}
	return nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderStore) ListOrders(ctx context.Context, userID string) (orders []domain.Order, err error) {
	ctx, span := tracing.Start(ctx, "gateway.ListOrders")
	defer func() { tracing.End(span, err) }()

	rows, err := s.db.Query(ctx, `
		SELECT data FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperrors.NetworkError("failed to load orders", err)
	}
	defer rows.Close()

	orders = make([]domain.Order, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, apperrors.NetworkError("failed to load orders", err)
		}
		var o domain.Order
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, apperrors.NetworkError("failed to load orders", fmt.Errorf("decode order: %w", err))
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NetworkError("failed to load orders", err)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders.
func (s *OrderStore) GetOrder(ctx context.Context, userID, orderID string) (order domain.Order, err error) {
	ctx, span := tracing.Start(ctx, "gateway.GetOrder", attribute.String("order.id", orderID))
	defer func() { tracing.End(span, err) }()

	var data []byte
	err = s.db.QueryRow(ctx,
		`SELECT data FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, apperrors.NotFound("order", orderID)
	}
	if err != nil {
		return domain.Order{}, apperrors.NetworkError("failed to load order", err)
	}
	if err := json.Unmarshal(data, &order); err != nil {
		return domain.Order{}, apperrors.NetworkError("failed to load order", fmt.Errorf("decode order: %w", err))
	}
	return order, nil
}

// UpdateOrderStatus sets the status column and the document field together.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, userID, orderID, status string) (err error) {
	ctx, span := tracing.Start(ctx, "gateway.UpdateOrderStatus",
		attribute.String("order.id", orderID), attribute.String("order.status", status))
	defer func() { tracing.End(span, err) }()

	ct, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1, data = jsonb_set(data, '{status}', to_jsonb($1::text))
		WHERE id = $2 AND user_id = $3`,
		status, orderID, userID,
	)
	if err != nil {
		return apperrors.NetworkError("failed to update order", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", orderID)
	}
	return nil
}
