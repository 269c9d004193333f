package http

import (
	"log/slog"
	"net/http"

	"github.com/ahmad5farah/AmaKart/internal/notify"
	"github.com/ahmad5farah/AmaKart/pkg/httputil"
)

// Notices shown after a successful submission.
const (
	ContactSentMessage = "Thank you for your message! We'll get back to you soon."
	SubscribedMessage  = "Thanks for subscribing!"
)

// NewsletterRequest is the newsletter sign-up form.
type NewsletterRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

// ContactHandler handles the contact form and newsletter sign-up.
type ContactHandler struct {
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewContactHandler creates a contact handler.
func NewContactHandler(notifier *notify.Notifier, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{notifier: notifier, logger: logger}
}

// Contact handles POST /api/v1/contact
func (h *ContactHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var form notify.ContactForm
	if err := httputil.DecodeJSON(r, &form); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.notifier.SendContact(r.Context(), form); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, MessageResponse{Message: ContactSentMessage})
}

// Subscribe handles POST /api/v1/newsletter
func (h *ContactHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req NewsletterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.notifier.Subscribe(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, MessageResponse{Message: SubscribedMessage})
}
