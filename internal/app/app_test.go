package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ahmad5farah/AmaKart/internal/config"
	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/internal/storage"
	pkgconfig "github.com/ahmad5farah/AmaKart/pkg/config"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- Stubs ---

type stubProducts struct{}

func (stubProducts) AllProducts(context.Context, int) ([]domain.Product, error) {
	return []domain.Product{{
		ID: "p1", Title: "Desk Lamp", Price: decimal.RequireFromString("19.99"),
		Category: "home", Image: "https://img.example/p1.png",
	}}, nil
}

func (stubProducts) ProductsByCategory(context.Context, string, int) ([]domain.Product, error) {
	return nil, nil
}

func (stubProducts) SearchProducts(context.Context, []string, int) ([]domain.Product, error) {
	return nil, nil
}

func (stubProducts) FeaturedProducts(context.Context, int) ([]domain.Product, error) {
	return nil, nil
}

func (stubProducts) Categories(context.Context) ([]string, error) {
	return []string{"home"}, nil
}

func (stubProducts) ProductByID(_ context.Context, id string) (domain.Product, error) {
	return domain.Product{}, apperrors.NotFound("product", id)
}

type stubAccounts struct{}

func (stubAccounts) SignIn(context.Context, string, string) (gateway.Account, error) {
	return gateway.Account{}, apperrors.AuthError(apperrors.ReasonInvalidCredentials, "Invalid email or password")
}

func (stubAccounts) Register(context.Context, string, string, domain.Profile) (gateway.Account, error) {
	return gateway.Account{}, apperrors.AuthError(apperrors.ReasonEmailInUse, "email in use")
}

func (stubAccounts) ChangePassword(context.Context, string, string, string) error { return nil }

type stubOrders struct{}

func (stubOrders) CreateOrder(context.Context, domain.Order) error { return nil }

func (stubOrders) ListOrders(context.Context, string) ([]domain.Order, error) { return nil, nil }

func (stubOrders) GetOrder(_ context.Context, _, orderID string) (domain.Order, error) {
	return domain.Order{}, apperrors.NotFound("order", orderID)
}

func (stubOrders) UpdateOrderStatus(context.Context, string, string, string) error { return nil }

// --- Helpers ---

func newTestApp(t *testing.T) (*App, *prometheus.Registry) {
	t.Helper()
	cfg, err := config.Load(pkgconfig.WithEnvironment(map[string]string{
		"STORAGE_BACKEND": storage.BackendSQLite,
		"SQLITE_PATH":     filepath.Join(t.TempDir(), "state.db"),
	}))
	require.NoError(t, err)

	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	a := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), Infra{
		Products: stubProducts{},
		Accounts: stubAccounts{},
		Orders:   stubOrders{},
		Store:    store,
	}, reg)
	a.httpServer.Addr = "127.0.0.1:0"
	return a, reg
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// --- Tests ---

func TestApp_Readiness(t *testing.T) {
	a, _ := newTestApp(t)
	t.Cleanup(func() { _ = a.Shutdown() })

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_ServesCatalog(t *testing.T) {
	a, _ := newTestApp(t)
	t.Cleanup(func() { _ = a.Shutdown() })

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			TotalCount int `json:"total_count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.Data.TotalCount)
}

func TestApp_MetricsEndpoint(t *testing.T) {
	a, _ := newTestApp(t)
	t.Cleanup(func() { _ = a.Shutdown() })

	a.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestApp_PprofDisabledByDefault(t *testing.T) {
	a, _ := newTestApp(t)
	t.Cleanup(func() { _ = a.Shutdown() })

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a, _ := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_CatalogCacheMetrics(t *testing.T) {
	a, reg := newTestApp(t)
	t.Cleanup(func() { _ = a.Shutdown() })

	for range 3 {
		rec := httptest.NewRecorder()
		a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1.0, counterValue(t, reg, "amakart_cache_misses_total", "cache", "categories"))
	assert.Equal(t, 2.0, counterValue(t, reg, "amakart_cache_hits_total", "cache", "categories"))
	assert.Equal(t, 3.0, counterValue(t, reg, "http_requests_total", "path", "/api/v1/categories"))
}
