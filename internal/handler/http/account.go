package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ahmad5farah/AmaKart/internal/account"
	"github.com/ahmad5farah/AmaKart/internal/state"
	"github.com/ahmad5farah/AmaKart/pkg/httputil"
)

// ReorderResponse reports how many products went back into the cart.
type ReorderResponse struct {
	Added int      `json:"added"`
	Cart  CartView `json:"cart"`
}

// AccountHandler handles order history endpoints. Routes are mounted
// behind middleware.RequireAuth.
type AccountHandler struct {
	states  *state.Manager
	account *account.Service
	logger  *slog.Logger
}

// NewAccountHandler creates an account handler.
func NewAccountHandler(states *state.Manager, svc *account.Service, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{states: states, account: svc, logger: logger}
}

// Dashboard handles GET /api/v1/account
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	v, userID, ok := h.load(w, r)
	if !ok {
		return
	}
	d, err := h.account.Dashboard(r.Context(), v, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, d)
}

// Orders handles GET /api/v1/account/orders?status=
func (h *AccountHandler) Orders(w http.ResponseWriter, r *http.Request) {
	v, userID, ok := h.load(w, r)
	if !ok {
		return
	}
	orders, err := h.account.Orders(r.Context(), v, userID, r.URL.Query().Get("status"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, orders)
}

// Order handles GET /api/v1/account/orders/{orderID}
func (h *AccountHandler) Order(w http.ResponseWriter, r *http.Request) {
	v, userID, ok := h.load(w, r)
	if !ok {
		return
	}
	order, err := h.account.Order(r.Context(), v, userID, chi.URLParam(r, "orderID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// Cancel handles POST /api/v1/account/orders/{orderID}/cancel
func (h *AccountHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	v, userID, ok := h.load(w, r)
	if !ok {
		return
	}
	order, err := h.account.Cancel(r.Context(), v, userID, chi.URLParam(r, "orderID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// Reorder handles POST /api/v1/account/orders/{orderID}/reorder
func (h *AccountHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	v, userID, ok := h.load(w, r)
	if !ok {
		return
	}
	added, err := h.account.Reorder(r.Context(), v, userID, chi.URLParam(r, "orderID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, ReorderResponse{Added: added, Cart: newCartView(v.Cart)})
}

func (h *AccountHandler) load(w http.ResponseWriter, r *http.Request) (*state.Visitor, string, bool) {
	userID, err := signedInUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, "", false
	}
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, "", false
	}
	return v, userID, true
}
