package http

import (
	"net/http"

	"github.com/ahmad5farah/AmaKart/internal/state"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
	"github.com/ahmad5farah/AmaKart/pkg/middleware"
)

// --- Request DTOs shared by several handlers ---

// ProductRef names a catalog product in a request body.
type ProductRef struct {
	ProductID string `json:"product_id" validate:"notblank,max=128"`
}

// MessageResponse carries a user-facing notice.
type MessageResponse struct {
	Message string `json:"message"`
}

// loadVisitor loads the state container for the request's visitor session.
func loadVisitor(r *http.Request, states *state.Manager) (*state.Visitor, error) {
	return states.Load(r.Context(), logger.VisitorIDFromContext(r.Context()))
}

// signedInUser returns the signed-in user id or an UNAUTHORIZED error.
func signedInUser(r *http.Request) (string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", apperrors.Unauthorized("sign in required")
	}
	return userID, nil
}
