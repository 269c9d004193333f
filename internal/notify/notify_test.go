package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/httpclient"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
	"github.com/ahmad5farah/AmaKart/pkg/validator"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// relay records the messages posted to it and answers with status.
type relay struct {
	mu       sync.Mutex
	messages []Message
	status   int
}

func (r *relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var msg Message
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
	w.WriteHeader(r.status)
}

func newTestNotifier(t *testing.T, status int) (*Notifier, *relay) {
	t.Helper()
	rl := &relay{status: status}
	srv := httptest.NewServer(rl)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultCircuitBreakerConfig("mail-relay")
	client := httpclient.NewCircuitBreakerClient(httpclient.NewWithDoer(srv.Client()), cfg, nil, quietLogger())
	n := NewNotifier(client, srv.URL, "support@amakart.test", quietLogger())
	n.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return n, rl
}

func TestSendPasswordReset(t *testing.T) {
	n, rl := newTestNotifier(t, http.StatusAccepted)
	ctx := logger.WithVisitorID(context.Background(), "visitor-1")

	require.NoError(t, n.SendPasswordReset(ctx, "ada@example.com"))
	require.Len(t, rl.messages, 1)
	msg := rl.messages[0]
	assert.Equal(t, KindPasswordReset, msg.Kind)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "visitor-1", msg.VisitorID)
	assert.Equal(t, 2026, msg.SentAt.Year())
}

func TestSendContact(t *testing.T) {
	n, rl := newTestNotifier(t, http.StatusOK)

	err := n.SendContact(context.Background(), ContactForm{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Subject:   "order",
		Message:   "Where is <my> order?",
	})
	require.NoError(t, err)
	require.Len(t, rl.messages, 1)
	msg := rl.messages[0]
	assert.Equal(t, "support@amakart.test", msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "Where is my order?", msg.Body)
	assert.Equal(t, "Ada", msg.Data["first_name"])
}

func TestSendContact_Invalid(t *testing.T) {
	n, rl := newTestNotifier(t, http.StatusOK)

	err := n.SendContact(context.Background(), ContactForm{Email: "not-an-email", Message: "  "})
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := verr.Fields()
	assert.Equal(t, "is required", fields["first_name"])
	assert.Equal(t, "is required", fields["last_name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "is required", fields["subject"])
	assert.Equal(t, "is required", fields["message"])
	assert.Empty(t, rl.messages)
}

func TestSubscribe(t *testing.T) {
	n, rl := newTestNotifier(t, http.StatusOK)

	require.NoError(t, n.Subscribe(context.Background(), " Reader@Example.com"))
	require.Len(t, rl.messages, 1)
	assert.Equal(t, KindNewsletter, rl.messages[0].Kind)
	assert.Equal(t, "reader@example.com", rl.messages[0].To)

	err := n.Subscribe(context.Background(), "nope")
	assert.Equal(t, apperrors.ReasonInvalidEmail, apperrors.AuthReason(err))
}

func TestSend_RelayFailure(t *testing.T) {
	n, _ := newTestNotifier(t, http.StatusServiceUnavailable)
	err := n.SendPasswordReset(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
}

func TestSend_RelayRejects(t *testing.T) {
	n, _ := newTestNotifier(t, http.StatusUnprocessableEntity)
	err := n.SendPasswordReset(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSend_DisabledWithoutURL(t *testing.T) {
	n := NewNotifier(nil, "", "support@amakart.test", quietLogger())
	assert.NoError(t, n.SendPasswordReset(context.Background(), "ada@example.com"))
}
