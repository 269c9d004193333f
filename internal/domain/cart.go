package domain

import "github.com/shopspring/decimal"

// Quantity bounds for a single cart line.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// CartItem is a product in the cart together with its quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price × quantity, unrounded.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Valid reports whether a stored cart line can be trusted.
func (i CartItem) Valid() bool {
	return i.ID != "" &&
		i.Title != "" &&
		!i.Price.IsNegative() &&
		i.Quantity >= MinQuantity && i.Quantity <= MaxQuantity
}

// WishlistItem is a saved product without a quantity.
type WishlistItem struct {
	Product
}

// Valid reports whether a stored wishlist entry can be trusted.
func (i WishlistItem) Valid() bool {
	return i.ID != "" && !i.Price.IsNegative()
}

// ClampQuantity limits n to [MinQuantity, MaxQuantity].
func ClampQuantity(n int) int {
	return max(MinQuantity, min(n, MaxQuantity))
}

// CartTotal sums the line totals of items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// CartCount sums the quantities of items.
func CartCount(items []CartItem) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
