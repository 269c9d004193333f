package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func productRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"doc_id", "data"}).
		AddRow("doc-1", []byte(`{"product_id":"sku-1","product_name":"Headphones","price":99.99,"category":"audio","image_url":"h.jpg","search_tags":["headphones","wireless"]}`)).
		AddRow("doc-2", []byte(`{"title":"Lamp","price":"19.50","category":"home","image":"l.jpg"}`))
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

func TestProductStore_AllProducts_Normalizes(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	mock.ExpectQuery("SELECT doc_id, data FROM products").WithArgs(50).WillReturnRows(productRows())

	products, err := store.AllProducts(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "sku-1", products[0].ID)
	assert.Equal(t, "Headphones", products[0].Title)
	assert.Equal(t, "h.jpg", products[0].Image)
	assert.Equal(t, "doc-2", products[1].ID)
	assert.Equal(t, "Lamp", products[1].Title)
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("19.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_AllProducts_SkipsUndecodableDocument(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	rows := pgxmock.NewRows([]string{"doc_id", "data"}).
		AddRow("doc-1", []byte(`{"title":"Lamp","price":"19.50","category":"home"}`)).
		AddRow("doc-2", []byte(`{"title":42}`)).
		AddRow("doc-3", []byte(`{"title":"Desk","price":"120","category":"home"}`))
	mock.ExpectQuery("SELECT doc_id, data FROM products").WithArgs(50).WillReturnRows(rows)

	products, err := store.AllProducts(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Lamp", products[0].Title)
	assert.Equal(t, "Desk", products[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_QueryFailureIsNetworkError(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	mock.ExpectQuery("WHERE data->>'category'").WithArgs("audio", 100).
		WillReturnError(errors.New("connection reset"))

	_, err := store.ProductsByCategory(context.Background(), "audio", 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNetwork))
}

func TestProductStore_SearchProducts(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	terms := []string{"wireless", "headphones"}
	mock.ExpectQuery("search_tags").WithArgs(terms, 100).WillReturnRows(productRows())

	products, err := store.SearchProducts(context.Background(), terms, 100)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestProductStore_SearchProducts_NoTerms(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	products, err := store.SearchProducts(context.Background(), nil, 100)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_FeaturedProducts(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	mock.ExpectQuery("is_featured").WithArgs(8).WillReturnRows(productRows())

	products, err := store.FeaturedProducts(context.Background(), 8)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestProductStore_Categories(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	mock.ExpectQuery("SELECT DISTINCT").WillReturnRows(
		pgxmock.NewRows([]string{"category"}).AddRow("audio").AddRow("home"))

	categories, err := store.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"audio", "home"}, categories)
}

func TestProductStore_ProductByID_DocumentID(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	mock.ExpectQuery("WHERE doc_id = ").WithArgs("doc-2").WillReturnRows(
		pgxmock.NewRows([]string{"doc_id", "data"}).AddRow("doc-2", []byte(`{"title":"Lamp","price":5}`)))

	p, err := store.ProductByID(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Title)
}

func TestProductStore_ProductByID_FallsBackToProductID(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	mock.ExpectQuery("WHERE doc_id = ").WithArgs("sku-1").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("WHERE data->>'product_id'").WithArgs("sku-1").WillReturnRows(
		pgxmock.NewRows([]string{"doc_id", "data"}).AddRow("doc-1", []byte(`{"product_id":"sku-1","product_name":"Headphones","price":5}`)))

	p, err := store.ProductByID(context.Background(), "sku-1")
	require.NoError(t, err)
	assert.Equal(t, "sku-1", p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_ProductByID_NotFound(t *testing.T) {
	mock := newMock(t)
	store := NewProductStore(mock, testLogger())

	mock.ExpectQuery("WHERE doc_id = ").WithArgs("nope").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("WHERE data->>'product_id'").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := store.ProductByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func accountRow(hash string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name", "phone"}).
		AddRow("u-1", "ada@example.com", hash, "Ada", "Lovelace", "")
}

func TestAccountStore_SignIn(t *testing.T) {
	mock := newMock(t)
	store := NewAccountStore(mock, bcrypt.MinCost)

	mock.ExpectQuery("FROM users").WithArgs("ada@example.com").
		WillReturnRows(accountRow(hashOf(t, "Correct#Horse9")))

	acct, err := store.SignIn(context.Background(), "  Ada@Example.com ", "Correct#Horse9")
	require.NoError(t, err)
	assert.Equal(t, "u-1", acct.ID)
	assert.Equal(t, "Ada Lovelace", acct.Profile.DisplayName())
}

func TestAccountStore_SignIn_WrongPassword(t *testing.T) {
	mock := newMock(t)
	store := NewAccountStore(mock, bcrypt.MinCost)

	mock.ExpectQuery("FROM users").WithArgs("ada@example.com").
		WillReturnRows(accountRow(hashOf(t, "Correct#Horse9")))

	_, err := store.SignIn(context.Background(), "ada@example.com", "wrong")
	assert.Equal(t, apperrors.ReasonInvalidCredentials, apperrors.AuthReason(err))
}

func TestAccountStore_SignIn_UnknownEmail(t *testing.T) {
	mock := newMock(t)
	store := NewAccountStore(mock, bcrypt.MinCost)

	mock.ExpectQuery("FROM users").WithArgs("ghost@example.com").WillReturnError(pgx.ErrNoRows)

	_, err := store.SignIn(context.Background(), "ghost@example.com", "whatever")
	assert.Equal(t, apperrors.ReasonInvalidCredentials, apperrors.AuthReason(err))
}

func TestAccountStore_Register(t *testing.T) {
	mock := newMock(t)
	store := NewAccountStore(mock, bcrypt.MinCost)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "ada@example.com", pgxmock.AnyArg(), "Ada", "Lovelace", "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	acct, err := store.Register(context.Background(), "ada@example.com", "Correct#Horse9", domain.Profile{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_Register_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	store := NewAccountStore(mock, bcrypt.MinCost)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.Register(context.Background(), "ada@example.com", "Correct#Horse9", domain.Profile{})
	assert.Equal(t, apperrors.ReasonEmailInUse, apperrors.AuthReason(err))
}

func TestAccountStore_ChangePassword(t *testing.T) {
	mock := newMock(t)
	store := NewAccountStore(mock, bcrypt.MinCost)

	mock.ExpectQuery("SELECT password_hash FROM users").WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"password_hash"}).AddRow(hashOf(t, "Old#Password1")))
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.ChangePassword(context.Background(), "u-1", "Old#Password1", "New#Password2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_ChangePassword_WrongCurrent(t *testing.T) {
	mock := newMock(t)
	store := NewAccountStore(mock, bcrypt.MinCost)

	mock.ExpectQuery("SELECT password_hash FROM users").WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"password_hash"}).AddRow(hashOf(t, "Old#Password1")))

	err := store.ChangePassword(context.Background(), "u-1", "nope", "New#Password2")
	assert.Equal(t, apperrors.ReasonInvalidCredentials, apperrors.AuthReason(err))
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func sampleOrder() domain.Order {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return domain.Order{
		ID:                "AMK1714554000000001",
		UserID:            "u-1",
		Status:            domain.OrderStatusConfirmed,
		OrderDate:         at,
		EstimatedDelivery: at.Add(domain.DeliveryEstimate),
		PaymentMethod:     domain.PaymentPayPal,
		Total:             decimal.RequireFromString("54.99"),
	}
}

func TestOrderStore_CreateOrder(t *testing.T) {
	mock := newMock(t)
	store := NewOrderStore(mock)
	o := sampleOrder()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, o.UserID, o.Status, pgxmock.AnyArg(), o.OrderDate).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateOrder(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStore_ListOrders(t *testing.T) {
	mock := newMock(t)
	store := NewOrderStore(mock)
	data, err := json.Marshal(sampleOrder())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT data FROM orders").WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))

	orders, err := store.ListOrders(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "AMK1714554000000001", orders[0].ID)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("54.99")))
}

func TestOrderStore_GetOrder_NotFound(t *testing.T) {
	mock := newMock(t)
	store := NewOrderStore(mock)

	mock.ExpectQuery("SELECT data FROM orders").WithArgs("AMK0", "u-1").WillReturnError(pgx.ErrNoRows)

	_, err := store.GetOrder(context.Background(), "u-1", "AMK0")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestOrderStore_UpdateOrderStatus(t *testing.T) {
	mock := newMock(t)
	store := NewOrderStore(mock)

	mock.ExpectExec("UPDATE orders").WithArgs("cancelled", "AMK1", "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, store.UpdateOrderStatus(context.Background(), "u-1", "AMK1", "cancelled"))

	mock.ExpectExec("UPDATE orders").WithArgs("cancelled", "AMK2", "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := store.UpdateOrderStatus(context.Background(), "u-1", "AMK2", "cancelled")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
