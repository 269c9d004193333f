package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ahmad5farah/AmaKart/internal/catalog"
	"github.com/ahmad5farah/AmaKart/internal/checkout"
	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/state"
	"github.com/ahmad5farah/AmaKart/pkg/httputil"
)

// UpdateQuantityRequest sets a cart line's quantity. Zero or less removes
// the line; larger values are clamped to 99.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartView is the cart as returned to the client.
type CartView struct {
	Items   []domain.CartItem `json:"items"`
	Count   int               `json:"count"`
	Summary checkout.Summary  `json:"summary"`
}

func newCartView(c *state.Cart) CartView {
	items := c.Items()
	return CartView{Items: items, Count: c.Count(), Summary: checkout.Summarize(items)}
}

// CartHandler handles cart endpoints.
type CartHandler struct {
	states  *state.Manager
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(states *state.Manager, catalog *catalog.Service, logger *slog.Logger) *CartHandler {
	return &CartHandler{states: states, catalog: catalog, logger: logger}
}

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartView(v.Cart))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
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
	if err := v.Cart.Add(r.Context(), product); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartView(v.Cart))
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productID}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := v.Cart.SetQuantity(r.Context(), chi.URLParam(r, "productID"), req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartView(v.Cart))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := v.Cart.Remove(r.Context(), chi.URLParam(r, "productID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartView(v.Cart))
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := v.Cart.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartView(v.Cart))
}
