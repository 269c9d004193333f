package state

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ahmad5farah/AmaKart/internal/domain"
)

// Cart is an ordered list of cart lines, at most one per product id.
// Every mutation is persisted before it becomes visible; if the write
// fails the cart is left as it was.
type Cart struct {
	b     binding
	items []domain.CartItem
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []domain.CartItem {
	return slices.Clone(c.items)
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID string) (domain.CartItem, bool) {
	if i := c.index(productID); i >= 0 {
		return c.items[i], true
	}
	return domain.CartItem{}, false
}

// Add inserts product with quantity 1, or increments the existing line up to
// domain.MaxQuantity.
func (c *Cart) Add(ctx context.Context, product domain.Product) error {
	return c.AddAll(ctx, []domain.Product{product})
}

// AddAll adds each product once, in a single write. Nothing is added if any
// product is invalid.
func (c *Cart) AddAll(ctx context.Context, products []domain.Product) error {
	clean := make([]domain.Product, 0, len(products))
	for _, p := range products {
		p = domain.SanitizeProduct(p)
		if err := domain.ValidateProduct(p); err != nil {
			return err
		}
		clean = append(clean, p)
	}
	if len(clean) == 0 {
		return nil
	}

	next := slices.Clone(c.items)
	for _, p := range clean {
		if i := indexOf(next, p.ID); i >= 0 {
			next[i].Quantity = domain.ClampQuantity(next[i].Quantity + 1)
			continue
		}
		next = append(next, domain.CartItem{Product: p, Quantity: 1})
	}
	return c.commit(ctx, next)
}

// Remove deletes the line for productID. Removing an absent product is a
// no-op.
func (c *Cart) Remove(ctx context.Context, productID string) error {
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	return c.commit(ctx, slices.Delete(slices.Clone(c.items), i, i+1))
}

// SetQuantity sets the line quantity, clamped to [1, 99]. n <= 0 removes the
// line. Unknown products are ignored.
func (c *Cart) SetQuantity(ctx context.Context, productID string, n int) error {
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	if n <= 0 {
		return c.Remove(ctx, productID)
	}
	next := slices.Clone(c.items)
	next[i].Quantity = domain.ClampQuantity(n)
	return c.commit(ctx, next)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	return c.commit(ctx, []domain.CartItem{})
}

// Total is the exact sum of price × quantity.
func (c *Cart) Total() decimal.Decimal {
	return domain.CartTotal(c.items)
}

// Count is the sum of quantities.
func (c *Cart) Count() int {
	return domain.CartCount(c.items)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

func (c *Cart) index(productID string) int {
	return indexOf(c.items, productID)
}

func (c *Cart) commit(ctx context.Context, next []domain.CartItem) error {
	if err := c.b.write(ctx, keyCart, next, 0); err != nil {
		return err
	}
	c.items = next
	return nil
}

func indexOf(items []domain.CartItem, productID string) int {
	return slices.IndexFunc(items, func(it domain.CartItem) bool { return it.ID == productID })
}

// sanitizeCart drops invalid and duplicate lines from stored data.
func sanitizeCart(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if !it.Valid() {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
