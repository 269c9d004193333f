package http

import (
	"log/slog"
	"net/http"

	"github.com/ahmad5farah/AmaKart/internal/checkout"
	"github.com/ahmad5farah/AmaKart/internal/state"
	"github.com/ahmad5farah/AmaKart/pkg/httputil"
	"github.com/ahmad5farah/AmaKart/pkg/middleware"
)

// CardCheckResponse is returned for an acceptable card.
type CardCheckResponse struct {
	Valid bool `json:"valid"`
}

// CheckoutHandler handles checkout endpoints.
type CheckoutHandler struct {
	states   *state.Manager
	checkout *checkout.Service
	logger   *slog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(states *state.Manager, svc *checkout.Service, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{states: states, checkout: svc, logger: logger}
}

// Summary handles GET /api/v1/checkout/summary
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.checkout.Summary(v))
}

// ValidateCard handles POST /api/v1/checkout/card
func (h *CheckoutHandler) ValidateCard(w http.ResponseWriter, r *http.Request) {
	var form checkout.CardForm
	if err := httputil.DecodeJSON(r, &form); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.checkout.ValidateCard(form); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, CardCheckResponse{Valid: true})
}

// PlaceOrder handles POST /api/v1/checkout/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in checkout.PlaceOrderInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	order, err := h.checkout.PlaceOrder(r.Context(), v, middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, order)
}
