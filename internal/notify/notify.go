// Package notify hands storefront mail to the relay service.
package notify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmad5farah/AmaKart/internal/auth"
	"github.com/ahmad5farah/AmaKart/internal/domain"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/httpclient"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
	"github.com/ahmad5farah/AmaKart/pkg/validator"
)

// Message kinds understood by the relay.
const (
	KindPasswordReset = "password_reset"
	KindContact       = "contact"
	KindNewsletter    = "newsletter"
)

// Poster sends a JSON body. *httpclient.CircuitBreakerClient satisfies it.
type Poster interface {
	PostJSON(ctx context.Context, url string, body any) (*http.Response, error)
}

// Message is the body posted to the relay.
type Message struct {
	Kind      string            `json:"kind"`
	To        string            `json:"to"`
	ReplyTo   string            `json:"reply_to,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	Body      string            `json:"body,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	VisitorID string            `json:"visitor_id,omitempty"`
	SentAt    time.Time         `json:"sent_at"`
}

// ContactForm is a customer service enquiry.
type ContactForm struct {
	FirstName string `json:"first_name" validate:"notblank,max=100"`
	LastName  string `json:"last_name" validate:"notblank,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Subject   string `json:"subject" validate:"notblank,max=200"`
	Message   string `json:"message" validate:"notblank,max=5000"`
}

// Notifier posts messages to the relay at url. An empty url disables
// delivery; messages are logged and dropped.
type Notifier struct {
	client  Poster
	url     string
	support string
	logger  *slog.Logger
	now     func() time.Time
}

// NewNotifier creates a Notifier. support is the inbox contact messages are
// delivered to.
func NewNotifier(client Poster, url, support string, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, url: url, support: support, logger: logger, now: time.Now}
}

// SendPasswordReset asks the relay to mail a reset link to email.
func (n *Notifier) SendPasswordReset(ctx context.Context, email string) error {
	return n.send(ctx, Message{
		Kind:    KindPasswordReset,
		To:      email,
		Subject: "Reset your AmaKart password",
	})
}

// SendContact validates and forwards a contact form to the support inbox.
func (n *Notifier) SendContact(ctx context.Context, form ContactForm) error {
	form = ContactForm{
		FirstName: domain.Sanitize(form.FirstName),
		LastName:  domain.Sanitize(form.LastName),
		Email:     auth.NormalizeEmail(form.Email),
		Subject:   domain.Sanitize(form.Subject),
		Message:   domain.Sanitize(form.Message),
	}
	if err := validator.Validate(form); err != nil {
		return err
	}
	return n.send(ctx, Message{
		Kind:    KindContact,
		To:      n.support,
		ReplyTo: form.Email,
		Subject: form.Subject,
		Body:    form.Message,
		Data: map[string]string{
			"first_name": form.FirstName,
			"last_name":  form.LastName,
		},
	})
}

// Subscribe signs email up for the newsletter.
func (n *Notifier) Subscribe(ctx context.Context, email string) error {
	email = auth.NormalizeEmail(email)
	if !auth.ValidEmail(email) {
		return apperrors.AuthError(apperrors.ReasonInvalidEmail, "Please enter a valid email address")
	}
	return n.send(ctx, Message{Kind: KindNewsletter, To: email})
}

func (n *Notifier) send(ctx context.Context, msg Message) error {
	l := logger.WithContext(ctx, n.logger)
	if n.url == "" {
		l.InfoContext(ctx, "notifier disabled, dropping message", slog.String("kind", msg.Kind))
		return nil
	}

	msg.VisitorID = logger.VisitorIDFromContext(ctx)
	msg.SentAt = n.now().UTC()

	resp, err := n.client.PostJSON(ctx, n.url, msg)
	if err != nil {
		l.ErrorContext(ctx, "notification failed",
			slog.String("kind", msg.Kind),
			slog.String("error", err.Error()),
		)
		return apperrors.NetworkError("unable to send message", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return httpclient.ParseResponseError(resp, "notifier")
	}
	httpclient.Drain(resp)

	l.InfoContext(ctx, "notification sent", slog.String("kind", msg.Kind))
	return nil
}
