package state

import (
	"context"
	"slices"

	"github.com/ahmad5farah/AmaKart/internal/domain"
)

// Wishlist is an ordered set of saved products.
type Wishlist struct {
	b     binding
	items []domain.WishlistItem
}

// Items returns a copy of the saved products.
func (w *Wishlist) Items() []domain.WishlistItem {
	return slices.Clone(w.items)
}

// Contains reports whether productID is saved.
func (w *Wishlist) Contains(productID string) bool {
	return w.index(productID) >= 0
}

// Add saves product. It reports false, without writing, if the product was
// already saved.
func (w *Wishlist) Add(ctx context.Context, product domain.Product) (bool, error) {
	product = domain.SanitizeProduct(product)
	if err := domain.ValidateProduct(product); err != nil {
		return false, err
	}
	if w.Contains(product.ID) {
		return false, nil
	}
	next := append(slices.Clone(w.items), domain.WishlistItem{Product: product})
	if err := w.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Toggle removes product if saved and saves it otherwise. It reports whether
// the product is saved afterwards.
func (w *Wishlist) Toggle(ctx context.Context, product domain.Product) (bool, error) {
	if w.Contains(product.ID) {
		return false, w.Remove(ctx, product.ID)
	}
	return w.Add(ctx, product)
}

// Remove deletes productID. Removing an absent product is a no-op.
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	i := w.index(productID)
	if i < 0 {
		return nil
	}
	return w.commit(ctx, slices.Delete(slices.Clone(w.items), i, i+1))
}

// Count is the number of saved products.
func (w *Wishlist) Count() int {
	return len(w.items)
}

// Clear removes every saved product.
func (w *Wishlist) Clear(ctx context.Context) error {
	return w.commit(ctx, []domain.WishlistItem{})
}

// MoveAllToCart adds every saved product to cart and then empties the
// wishlist. If the cart write fails nothing changes.
func (w *Wishlist) MoveAllToCart(ctx context.Context, cart *Cart) (int, error) {
	if len(w.items) == 0 {
		return 0, nil
	}
	products := make([]domain.Product, len(w.items))
	for i, it := range w.items {
		products[i] = it.Product
	}
	if err := cart.AddAll(ctx, products); err != nil {
		return 0, err
	}
	if err := w.Clear(ctx); err != nil {
		return 0, err
	}
	return len(products), nil
}

func (w *Wishlist) index(productID string) int {
	return slices.IndexFunc(w.items, func(it domain.WishlistItem) bool { return it.ID == productID })
}

func (w *Wishlist) commit(ctx context.Context, next []domain.WishlistItem) error {
	if err := w.b.write(ctx, keyWishlist, next, 0); err != nil {
		return err
	}
	w.items = next
	return nil
}

func sanitizeWishlist(items []domain.WishlistItem) []domain.WishlistItem {
	out := make([]domain.WishlistItem, 0, len(items))
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
