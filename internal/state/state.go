// Package state holds a visitor's cart, wishlist and preferences and keeps
// them written through to a storage.Store.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmad5farah/AmaKart/internal/storage"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
)

// Persisted key names, prefixed with "amakart:<visitor>:".
const (
	keyCart        = "cart"
	keyWishlist    = "wishlist"
	keyDarkMode    = "darkmode"
	keySearchQuery = "search_query"
	keyLastOrder   = "last_order"
)

// DefaultSessionTTL bounds session-scoped keys (last search, last order).
const DefaultSessionTTL = 30 * time.Minute

// Key returns the storage key for a visitor's named value.
func Key(visitorID, name string) string {
	return "amakart:" + visitorID + ":" + name
}

// Manager loads visitor state containers from a store.
type Manager struct {
	store      storage.Store
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewManager creates a Manager. A non-positive sessionTTL uses
// DefaultSessionTTL.
func NewManager(store storage.Store, sessionTTL time.Duration, logger *slog.Logger) *Manager {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Manager{store: store, sessionTTL: sessionTTL, logger: logger}
}

// Visitor is one browser's state. It is loaded per request and is not safe
// for concurrent use.
type Visitor struct {
	ID       string
	Cart     *Cart
	Wishlist *Wishlist
	Prefs    *Preferences
}

// Load reads and validates the visitor's persisted state. Records that fail
// to decode or validate are dropped one by one; a blob that is not a JSON
// array resets the list and removes the key.
func (m *Manager) Load(ctx context.Context, visitorID string) (*Visitor, error) {
	if visitorID == "" {
		return nil, apperrors.InvalidInput("visitor id is required")
	}
	l := logger.WithContext(ctx, m.logger)
	b := binding{store: m.store, visitorID: visitorID}

	cart := &Cart{b: b}
	if err := loadList(ctx, b, keyCart, l, &cart.items); err != nil {
		return nil, err
	}
	cart.items = sanitizeCart(cart.items)

	wishlist := &Wishlist{b: b}
	if err := loadList(ctx, b, keyWishlist, l, &wishlist.items); err != nil {
		return nil, err
	}
	wishlist.items = sanitizeWishlist(wishlist.items)

	prefs := &Preferences{b: b, sessionTTL: m.sessionTTL}
	if err := prefs.load(ctx, l); err != nil {
		return nil, err
	}

	return &Visitor{ID: visitorID, Cart: cart, Wishlist: wishlist, Prefs: prefs}, nil
}

// Reset empties the cart and wishlist, as on sign-out.
func (v *Visitor) Reset(ctx context.Context) error {
	if err := v.Cart.Clear(ctx); err != nil {
		return err
	}
	return v.Wishlist.Clear(ctx)
}

type binding struct {
	store     storage.Store
	visitorID string
}

func (b binding) key(name string) string {
	return Key(b.visitorID, name)
}

// write serializes v under name. Any failure is a StorageError.
func (b binding) write(ctx context.Context, name string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.StorageError(fmt.Errorf("marshal %s: %w", name, err))
	}
	if err := b.store.Set(ctx, b.key(name), data, ttl); err != nil {
		return apperrors.StorageError(err)
	}
	return nil
}

// read returns the raw value under name, or nil if it is absent.
func (b binding) read(ctx context.Context, name string) ([]byte, error) {
	data, err := b.store.Get(ctx, b.key(name))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return data, nil
}

func loadList[T any](ctx context.Context, b binding, name string, l *slog.Logger, dst *[]T) error {
	data, err := b.read(ctx, name)
	if err != nil || data == nil {
		return err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		l.WarnContext(ctx, "discarding unreadable stored list",
			slog.String("key", b.key(name)),
			slog.String("error", err.Error()),
		)
		if err := b.store.Delete(ctx, b.key(name)); err != nil {
			return fmt.Errorf("reset %s: %w", name, err)
		}
		return nil
	}

	items := make([]T, 0, len(raw))
	for i, rec := range raw {
		var item T
		if err := json.Unmarshal(rec, &item); err != nil {
			l.DebugContext(ctx, "dropping malformed stored record",
				slog.String("key", b.key(name)),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		items = append(items, item)
	}
	*dst = items
	return nil
}
