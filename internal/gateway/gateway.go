// Package gateway defines the boundary to the remote product, account and
// order documents. Calls are made once; failures surface to the caller.
package gateway

import (
	"context"

	"github.com/ahmad5farah/AmaKart/internal/domain"
)

// Query limits applied to product listings.
const (
	AllProductsLimit = 50
	CategoryLimit    = 100
	SearchLimit      = 100
)

// Products queries the product collection. List calls fail with a
// NETWORK_ERROR; ProductByID fails with NOT_FOUND when no document matches.
type Products interface {
	AllProducts(ctx context.Context, limit int) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, category string, limit int) ([]domain.Product, error)
	// SearchProducts returns products whose search tags include any of terms.
	SearchProducts(ctx context.Context, terms []string, limit int) ([]domain.Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	ProductByID(ctx context.Context, id string) (domain.Product, error)
}

// Account is a stored storefront account.
type Account struct {
	ID      string
	Email   string
	Profile domain.Profile
}

// Accounts authenticates and registers accounts. Failures are AUTH_ERROR
// values carrying a reason.
type Accounts interface {
	SignIn(ctx context.Context, email, password string) (Account, error)
	Register(ctx context.Context, email, password string, profile domain.Profile) (Account, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// Orders stores order documents for signed-in accounts.
type Orders interface {
	CreateOrder(ctx context.Context, order domain.Order) error
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, userID, orderID, status string) error
}
