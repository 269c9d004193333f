package http

import (
	"log/slog"
	"net/http"

	"github.com/ahmad5farah/AmaKart/internal/state"
	"github.com/ahmad5farah/AmaKart/pkg/httputil"
)

// PreferencesView is the visitor's display and search preferences.
type PreferencesView struct {
	DarkMode   bool   `json:"dark_mode"`
	LastSearch string `json:"last_search,omitempty"`
}

// UpdatePreferencesRequest changes the fields that are present.
type UpdatePreferencesRequest struct {
	DarkMode   *bool   `json:"dark_mode"`
	LastSearch *string `json:"last_search" validate:"omitempty,max=200"`
}

// PreferencesHandler handles preference endpoints.
type PreferencesHandler struct {
	states *state.Manager
	logger *slog.Logger
}

// NewPreferencesHandler creates a preferences handler.
func NewPreferencesHandler(states *state.Manager, logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{states: states, logger: logger}
}

// Get handles GET /api/v1/preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, PreferencesView{DarkMode: v.Prefs.DarkMode(), LastSearch: v.Prefs.LastSearch()})
}

// Update handles PUT /api/v1/preferences
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePreferencesRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if req.DarkMode != nil {
		if err := v.Prefs.SetDarkMode(r.Context(), *req.DarkMode); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	if req.LastSearch != nil {
		if err := v.Prefs.SetLastSearch(r.Context(), *req.LastSearch); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	httputil.WriteData(w, http.StatusOK, PreferencesView{DarkMode: v.Prefs.DarkMode(), LastSearch: v.Prefs.LastSearch()})
}
