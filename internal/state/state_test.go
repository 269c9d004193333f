package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/storage"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
)

// flakyStore fails writes while failWrites is set.
type flakyStore struct {
	storage.Store
	failWrites bool
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.failWrites {
		return errors.New("quota exceeded")
	}
	return s.Store.Set(ctx, key, value, ttl)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T) (*Manager, *flakyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := &flakyStore{Store: storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))}
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store, time.Hour, testLogger()), store, mr
}

func load(t *testing.T, m *Manager) *Visitor {
	t.Helper()
	v, err := m.Load(context.Background(), "visitor-1")
	require.NoError(t, err)
	return v
}

func product(id, price string) domain.Product {
	return domain.Product{ID: id, Title: "Product " + id, Price: decimal.RequireFromString(price), Category: "audio"}
}

func TestCart_AddTwiceIncrements(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()
	v := load(t, m)

	p := product("p1", "19.99")
	require.NoError(t, v.Cart.Add(ctx, p))
	require.NoError(t, v.Cart.Add(ctx, p))

	items := v.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, v.Cart.Count())
}

func TestCart_AddInvalidProduct(t *testing.T) {
	m, _, _ := setup(t)
	v := load(t, m)

	err := v.Cart.Add(context.Background(), domain.Product{ID: "p1", Title: "Free"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidProduct))
	assert.True(t, v.Cart.Empty())

	err = v.Cart.Add(context.Background(), domain.Product{ID: "p2", Title: "<>", Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidProduct))
}

func TestCart_AddSanitizes(t *testing.T) {
	m, _, _ := setup(t)
	v := load(t, m)

	p := product("p1", "5")
	p.Title = "  <b>Mug</b> "
	require.NoError(t, v.Cart.Add(context.Background(), p))

	item, ok := v.Cart.Item("p1")
	require.True(t, ok)
	assert.Equal(t, "bMug/b", item.Title)
}

func TestCart_QuantityClampsOnAdd(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()
	v := load(t, m)

	p := product("p1", "1")
	require.NoError(t, v.Cart.Add(ctx, p))
	require.NoError(t, v.Cart.SetQuantity(ctx, "p1", 99))
	require.NoError(t, v.Cart.Add(ctx, p))

	item, _ := v.Cart.Item("p1")
	assert.Equal(t, 99, item.Quantity)
}

func TestCart_SetQuantity(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()
	v := load(t, m)
	require.NoError(t, v.Cart.Add(ctx, product("p1", "2.50")))

	require.NoError(t, v.Cart.SetQuantity(ctx, "p1", 150))
	item, _ := v.Cart.Item("p1")
	assert.Equal(t, 99, item.Quantity)

	require.NoError(t, v.Cart.SetQuantity(ctx, "missing", 3))
	assert.Len(t, v.Cart.Items(), 1)

	require.NoError(t, v.Cart.SetQuantity(ctx, "p1", 0))
	assert.True(t, v.Cart.Empty())
}

func TestCart_RemoveAbsentIsNoop(t *testing.T) {
	m, _, _ := setup(t)
	v := load(t, m)
	assert.NoError(t, v.Cart.Remove(context.Background(), "nope"))
}

func TestCart_TotalIndependentOfOrder(t *testing.T) {
	products := []domain.Product{
		product("a", "0.10"), product("b", "0.20"), product("c", "19.99"),
		product("d", "3.33"), product("e", "100"),
	}
	quantities := map[string]int{"a": 3, "b": 7, "c": 1, "d": 3, "e": 2}

	expected := decimal.Zero
	for _, p := range products {
		expected = expected.Add(p.Price.Mul(decimal.NewFromInt(int64(quantities[p.ID]))))
	}

	for round := 0; round < 5; round++ {
		m, _, _ := setup(t)
		ctx := context.Background()
		v := load(t, m)

		shuffled := append([]domain.Product(nil), products...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for _, p := range shuffled {
			require.NoError(t, v.Cart.Add(ctx, p))
			require.NoError(t, v.Cart.SetQuantity(ctx, p.ID, quantities[p.ID]))
		}
		assert.True(t, expected.Equal(v.Cart.Total()), "round %d: %s != %s", round, expected, v.Cart.Total())
	}
}

func TestCart_WriteThroughAndReload(t *testing.T) {
	m, _, mr := setup(t)
	ctx := context.Background()
	v := load(t, m)

	require.NoError(t, v.Cart.Add(ctx, product("p1", "4")))
	require.NoError(t, v.Cart.Add(ctx, product("p2", "6")))
	require.NoError(t, v.Cart.SetQuantity(ctx, "p2", 3))

	assert.True(t, mr.Exists(Key("visitor-1", keyCart)))

	reloaded := load(t, m)
	assert.Equal(t, v.Cart.Items(), reloaded.Cart.Items())
	assert.True(t, reloaded.Cart.Total().Equal(decimal.NewFromInt(22)))
}

func TestCart_FailedWriteLeavesStateUnchanged(t *testing.T) {
	m, store, _ := setup(t)
	ctx := context.Background()
	v := load(t, m)
	require.NoError(t, v.Cart.Add(ctx, product("p1", "4")))

	store.failWrites = true
	err := v.Cart.Add(ctx, product("p2", "4"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
	assert.Len(t, v.Cart.Items(), 1)

	err = v.Cart.SetQuantity(ctx, "p1", 5)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
	item, _ := v.Cart.Item("p1")
	assert.Equal(t, 1, item.Quantity)
}

func TestLoad_DropsMalformedRecords(t *testing.T) {
	m, _, mr := setup(t)
	require.NoError(t, mr.Set(Key("visitor-1", keyCart), `[
		{"id":"p1","title":"Good","price":"5","quantity":2},
		{"id":"","title":"No id","price":"5","quantity":1},
		{"id":"p2","title":"Negative","price":"-1","quantity":1},
		{"id":"p3","title":"Zero qty","price":"5","quantity":0},
		{"id":"p1","title":"Duplicate","price":"5","quantity":1},
		{"id":"p4","title":"Numeric price","price":7.5,"quantity":1},
		{"id":"p5","title":"String quantity","price":"5","quantity":"3"}
	]`))
	require.NoError(t, mr.Set(Key("visitor-1", keyWishlist), `[{"id":"w1","price":"3"},{"title":"no id"},{"id":42,"price":"3"}]`))

	v := load(t, m)

	items := v.Cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "Good", items[0].Title)
	assert.Equal(t, "p4", items[1].ID)
	assert.Equal(t, 1, v.Wishlist.Count())
	assert.True(t, mr.Exists(Key("visitor-1", keyCart)))
}

func TestLoad_WrongTypedRecordKeepsOthers(t *testing.T) {
	m, _, mr := setup(t)
	require.NoError(t, mr.Set(Key("visitor-1", keyCart),
		`[{"id":"p1","title":"Good","price":"5","quantity":2},{"id":"p2","title":"Bad","price":"5","quantity":"3"}]`))
	require.NoError(t, mr.Set(Key("visitor-1", keyWishlist),
		`[{"id":"w1","title":"Good","price":"3"},{"id":42,"title":"Bad","price":"3"}]`))

	v := load(t, m)

	require.Len(t, v.Cart.Items(), 1)
	assert.Equal(t, "p1", v.Cart.Items()[0].ID)
	assert.Equal(t, 2, v.Cart.Count())
	assert.Equal(t, 1, v.Wishlist.Count())
	assert.True(t, v.Wishlist.Contains("w1"))
	assert.True(t, mr.Exists(Key("visitor-1", keyCart)))
}

func TestLoad_NonArrayResetsKey(t *testing.T) {
	m, _, mr := setup(t)
	require.NoError(t, mr.Set(Key("visitor-1", keyWishlist), `{"id":"w1"}`))

	v := load(t, m)
	assert.Equal(t, 0, v.Wishlist.Count())
	assert.False(t, mr.Exists(Key("visitor-1", keyWishlist)))
}

func TestLoad_UnparseableResetsKey(t *testing.T) {
	m, _, mr := setup(t)
	require.NoError(t, mr.Set(Key("visitor-1", keyCart), `{not json`))

	v := load(t, m)
	assert.True(t, v.Cart.Empty())
	assert.False(t, mr.Exists(Key("visitor-1", keyCart)))
}

func TestLoad_RequiresVisitorID(t *testing.T) {
	m, _, _ := setup(t)
	_, err := m.Load(context.Background(), "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestWishlist_NoDuplicates(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()
	v := load(t, m)

	added, err := v.Wishlist.Add(ctx, product("p1", "5"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = v.Wishlist.Add(ctx, product("p1", "5"))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, v.Wishlist.Count())
}

func TestWishlist_Toggle(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()
	v := load(t, m)

	saved, err := v.Wishlist.Toggle(ctx, product("p1", "5"))
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = v.Wishlist.Toggle(ctx, product("p1", "5"))
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 0, v.Wishlist.Count())
}

func TestWishlist_MoveAllToCart(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()
	v := load(t, m)

	require.NoError(t, v.Cart.Add(ctx, product("p1", "5")))
	_, err := v.Wishlist.Add(ctx, product("p1", "5"))
	require.NoError(t, err)
	_, err = v.Wishlist.Add(ctx, product("p2", "8"))
	require.NoError(t, err)

	moved, err := v.Wishlist.MoveAllToCart(ctx, v.Cart)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Equal(t, 0, v.Wishlist.Count())
	assert.Equal(t, 3, v.Cart.Count())

	reloaded := load(t, m)
	assert.Equal(t, 0, reloaded.Wishlist.Count())
	assert.Equal(t, 3, reloaded.Cart.Count())
}

func TestVisitor_Reset(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()
	v := load(t, m)
	require.NoError(t, v.Cart.Add(ctx, product("p1", "5")))
	_, err := v.Wishlist.Add(ctx, product("p2", "5"))
	require.NoError(t, err)

	require.NoError(t, v.Reset(ctx))

	reloaded := load(t, m)
	assert.True(t, reloaded.Cart.Empty())
	assert.Equal(t, 0, reloaded.Wishlist.Count())
}

func TestPreferences(t *testing.T) {
	m, _, mr := setup(t)
	ctx := context.Background()
	v := load(t, m)

	require.NoError(t, v.Prefs.SetDarkMode(ctx, true))
	require.NoError(t, v.Prefs.SetLastSearch(ctx, " <wireless> headphones "))
	order := domain.Order{ID: "AMK1", Status: domain.OrderStatusConfirmed, Total: decimal.NewFromInt(10)}
	require.NoError(t, v.Prefs.SetLastOrder(ctx, order))

	assert.Equal(t, time.Hour, mr.TTL(Key("visitor-1", keySearchQuery)))
	assert.Equal(t, time.Duration(0), mr.TTL(Key("visitor-1", keyDarkMode)))

	reloaded := load(t, m)
	assert.True(t, reloaded.Prefs.DarkMode())
	assert.Equal(t, "wireless headphones", reloaded.Prefs.LastSearch())
	require.NotNil(t, reloaded.Prefs.LastOrder())
	assert.Equal(t, "AMK1", reloaded.Prefs.LastOrder().ID)

	mr.FastForward(2 * time.Hour)
	expired := load(t, m)
	assert.Empty(t, expired.Prefs.LastSearch())
	assert.Nil(t, expired.Prefs.LastOrder())
	assert.True(t, expired.Prefs.DarkMode())
}

func TestPreferences_FailedWrite(t *testing.T) {
	m, store, _ := setup(t)
	v := load(t, m)
	store.failWrites = true

	err := v.Prefs.SetDarkMode(context.Background(), true)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
	assert.False(t, v.Prefs.DarkMode())
}
