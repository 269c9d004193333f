package http

import (
	"log/slog"
	"net/http"

	"github.com/ahmad5farah/AmaKart/internal/auth"
	"github.com/ahmad5farah/AmaKart/internal/state"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/httputil"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
)

// SignInRequest is the sign-in form.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest asks for a reset link.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

// ChangePasswordRequest is the change-password form.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// PasswordCheckRequest asks for a strength report.
type PasswordCheckRequest struct {
	Password string `json:"password"`
}

// AuthHandler handles sign-in, registration and password endpoints.
type AuthHandler struct {
	auth   *auth.Service
	states *state.Manager
	logger *slog.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(svc *auth.Service, states *state.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, states: states, logger: logger}
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, session)
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	session, err := h.auth.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, session)
}

// SignOut handles POST /api/v1/auth/signout. Tokens are stateless; signing
// out empties the visitor's cart and wishlist.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	v, err := loadVisitor(r, h.states)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := v.Reset(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	msg, err := h.auth.RequestPasswordReset(r.Context(), logger.VisitorIDFromContext(r.Context()), req.Email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, MessageResponse{Message: msg})
}

// PasswordStrength handles POST /api/v1/auth/password-strength
func (h *AuthHandler) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req PasswordCheckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, auth.CheckPassword(req.Password))
}

// ChangePassword handles PUT /api/v1/account/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		httputil.WriteError(w, r, apperrors.InvalidInput("New passwords do not match"), h.logger)
		return
	}
	userID, err := signedInUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, MessageResponse{Message: "Password changed successfully!"})
}
