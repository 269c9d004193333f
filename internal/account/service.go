// Package account serves a signed-in visitor's order history.
package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/internal/state"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// RecentOrders is how many orders the dashboard lists.
const RecentOrders = 3

// OrderEvents publishes order.cancelled events.
type OrderEvents interface {
	PublishOrderCancelled(ctx context.Context, order domain.Order) error
}

// Dashboard summarizes an account.
type Dashboard struct {
	TotalOrders   int             `json:"total_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	WishlistItems int             `json:"wishlist_items"`
	Recent        []domain.Order  `json:"recent_orders"`
}

// Service reads and updates a user's orders.
type Service struct {
	orders gateway.Orders
	events OrderEvents
	logger *slog.Logger
}

// NewService creates an account service.
func NewService(orders gateway.Orders, events OrderEvents, logger *slog.Logger) *Service {
	return &Service{orders: orders, events: events, logger: logger}
}

// Orders lists the user's orders, newest first, with the session's last
// completed order in front. status filters by order status; "" and "all"
// return everything.
func (s *Service) Orders(ctx context.Context, v *state.Visitor, userID, status string) ([]domain.Order, error) {
	if status != "" && status != StatusAll && !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput("unknown order status " + status)
	}
	all, err := s.history(ctx, v, userID)
	if err != nil {
		return nil, err
	}
	if status == "" || status == StatusAll {
		return all, nil
	}
	filtered := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// Order returns one order from the user's history.
func (s *Service) Order(ctx context.Context, v *state.Visitor, userID, orderID string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, apperrors.Unauthorized("sign in to view your orders")
	}
	if last := v.Prefs.LastOrder(); last != nil && last.ID == orderID {
		return *last, nil
	}
	return s.orders.GetOrder(ctx, userID, orderID)
}

// Dashboard returns the account overview.
func (s *Service) Dashboard(ctx context.Context, v *state.Visitor, userID string) (Dashboard, error) {
	all, err := s.history(ctx, v, userID)
	if err != nil {
		return Dashboard{}, err
	}
	spent := decimal.Zero
	for _, o := range all {
		spent = spent.Add(o.Total)
	}
	return Dashboard{
		TotalOrders:   len(all),
		TotalSpent:    spent,
		WishlistItems: v.Wishlist.Count(),
		Recent:        all[:min(RecentOrders, len(all))],
	}, nil
}

// Cancel marks a confirmed or shipped order as cancelled. An order that
// only exists as the session's last order is cancelled there.
func (s *Service) Cancel(ctx context.Context, v *state.Visitor, userID, orderID string) (domain.Order, error) {
	order, remote, err := s.find(ctx, v, userID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.Cancellable() {
		return domain.Order{}, apperrors.InvalidInput("order " + orderID + " is " + order.Status + " and can no longer be cancelled")
	}

	if remote {
		if err := s.orders.UpdateOrderStatus(ctx, userID, orderID, domain.OrderStatusCancelled); err != nil {
			return domain.Order{}, err
		}
	}
	order.Status = domain.OrderStatusCancelled
	if last := v.Prefs.LastOrder(); last != nil && last.ID == orderID {
		if err := v.Prefs.SetLastOrder(ctx, order); err != nil {
			return domain.Order{}, err
		}
	}

	l := logger.WithContext(ctx, s.logger)
	if err := s.events.PublishOrderCancelled(ctx, order); err != nil {
		l.ErrorContext(ctx, "failed to publish order.cancelled event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}
	l.InfoContext(ctx, "order cancelled", slog.String("order_id", orderID))
	return order, nil
}

// Reorder adds every product of the order to the cart once and returns
// the number of products added.
func (s *Service) Reorder(ctx context.Context, v *state.Visitor, userID, orderID string) (int, error) {
	order, _, err := s.find(ctx, v, userID, orderID)
	if err != nil {
		return 0, err
	}
	products := make([]domain.Product, 0, len(order.Items))
	for _, item := range order.Items {
		products = append(products, item.Product)
	}
	if err := v.Cart.AddAll(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

// history returns the gateway orders prefixed by the session's last order,
// skipping the gateway copy of that order.
func (s *Service) history(ctx context.Context, v *state.Visitor, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("sign in to view your orders")
	}
	remote, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	last := v.Prefs.LastOrder()
	if last == nil {
		return remote, nil
	}
	all := make([]domain.Order, 0, len(remote)+1)
	all = append(all, *last)
	for _, o := range remote {
		if o.ID != last.ID {
			all = append(all, o)
		}
	}
	return all, nil
}

// find locates orderID in the gateway, falling back to the session's last
// order. remote reports whether the gateway holds the order.
func (s *Service) find(ctx context.Context, v *state.Visitor, userID, orderID string) (order domain.Order, remote bool, err error) {
	if userID == "" {
		return domain.Order{}, false, apperrors.Unauthorized("sign in to manage your orders")
	}
	order, err = s.orders.GetOrder(ctx, userID, orderID)
	if err == nil {
		return order, true, nil
	}
	if last := v.Prefs.LastOrder(); errors.Is(err, apperrors.ErrNotFound) && last != nil && last.ID == orderID {
		return *last, false, nil
	}
	return domain.Order{}, false, err
}
