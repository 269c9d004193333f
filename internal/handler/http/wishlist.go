package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ahmad5farah/AmaKart/internal/catalog"
	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/state"
	"github.com/ahmad5farah/AmaKart/pkg/httputil"
)

// WishlistView is the wishlist as returned to the client.
type WishlistView struct {
	Items []domain.WishlistItem `json:"items"`
	Count int                   `json:"count"`
}

// ToggleResponse reports whether the product is saved after a toggle.
type ToggleResponse struct {
	Saved    bool         `json:"saved"`
	Wishlist WishlistView `json:"wishlist"`
}

// MoveToCartResponse reports how many products moved.
type MoveToCartResponse struct {
	Moved int      `json:"moved"`
	Cart  CartView `json:"cart"`
}

func newWishlistView(wl *state.Wishlist) WishlistView {
	return WishlistView{Items: wl.Items(), Count: wl.Count()}
}

// WishlistHandler handles wishlist endpoints.
type WishlistHandler struct {
	states  *state.Manager
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewWishlistHandler creates a wishlist handler.
func NewWishlistHandler(states *state.Manager, catalog *catalog.Service, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{states: states, catalog: catalog, logger: logger}
}

// Get handles GET /api/v1/wishlist
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newWishlistView(v.Wishlist))
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req ProductRef
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	product, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if _, err := v.Wishlist.Add(r.Context(), product); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newWishlistView(v.Wishlist))
}

// Toggle handles POST /api/v1/wishlist/items/{productID}/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	product, err := h.catalog.Product(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	saved, err := v.Wishlist.Toggle(r.Context(), product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, ToggleResponse{Saved: saved, Wishlist: newWishlistView(v.Wishlist)})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productID}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := v.Wishlist.Remove(r.Context(), chi.URLParam(r, "productID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newWishlistView(v.Wishlist))
}

// Clear handles DELETE /api/v1/wishlist
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := v.Wishlist.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newWishlistView(v.Wishlist))
}

// MoveToCart handles POST /api/v1/wishlist/move-to-cart
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	moved, err := v.Wishlist.MoveAllToCart(r.Context(), v.Cart)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, MoveToCartResponse{Moved: moved, Cart: newCartView(v.Cart)})
}
