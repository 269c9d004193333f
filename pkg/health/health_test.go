package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler(time.Second)
	h.Register("products", func(context.Context) error { return errors.New("down") })

	code, resp := serve(t, h.LivenessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	h := NewHandler(time.Second)
	h.Register("products", func(context.Context) error { return nil })
	h.Register("visitor_store", func(context.Context) error { return nil })

	code, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, StatusUp, resp.Checks["products"].Status)
	assert.Equal(t, StatusUp, resp.Checks["visitor_store"].Status)
	assert.NotEmpty(t, resp.Checks["products"].Latency)
}

func TestReadinessHandler_OneDown(t *testing.T) {
	h := NewHandler(time.Second)
	h.Register("products", func(context.Context) error { return nil })
	h.Register("visitor_store", func(context.Context) error { return errors.New("connection refused") })

	code, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusUp, resp.Checks["products"].Status)
	assert.Equal(t, "connection refused", resp.Checks["visitor_store"].Error)
}

func TestReadinessHandler_TimeoutPropagates(t *testing.T) {
	h := NewHandler(10 * time.Millisecond)
	h.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	code, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, resp.Checks["slow"].Error, "deadline exceeded")
}

func TestRegister_Replaces(t *testing.T) {
	h := NewHandler(0)
	h.Register("products", func(context.Context) error { return errors.New("old") })
	h.Register("products", func(context.Context) error { return nil })

	code, _ := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
}
