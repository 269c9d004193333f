package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ahmad5farah/AmaKart/internal/domain"
)

// Preferences holds the dark-mode flag and the session-scoped last search
// and last completed order.
type Preferences struct {
	b          binding
	sessionTTL time.Duration

	darkMode   bool
	lastSearch string
	lastOrder  *domain.Order
}

func (p *Preferences) load(ctx context.Context, l *slog.Logger) error {
	for _, f := range []struct {
		name string
		dst  any
	}{
		{keyDarkMode, &p.darkMode},
		{keySearchQuery, &p.lastSearch},
		{keyLastOrder, &p.lastOrder},
	} {
		data, err := p.b.read(ctx, f.name)
		if err != nil {
			return err
		}
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			l.WarnContext(ctx, "ignoring unreadable preference",
				slog.String("key", p.b.key(f.name)),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// DarkMode reports the stored dark-mode flag.
func (p *Preferences) DarkMode() bool { return p.darkMode }

// SetDarkMode persists the dark-mode flag.
func (p *Preferences) SetDarkMode(ctx context.Context, on bool) error {
	if err := p.b.write(ctx, keyDarkMode, on, 0); err != nil {
		return err
	}
	p.darkMode = on
	return nil
}

// LastSearch returns the last search query of this session.
func (p *Preferences) LastSearch() string { return p.lastSearch }

// SetLastSearch stores the query for the session.
func (p *Preferences) SetLastSearch(ctx context.Context, query string) error {
	query = domain.Sanitize(query)
	if err := p.b.write(ctx, keySearchQuery, query, p.sessionTTL); err != nil {
		return err
	}
	p.lastSearch = query
	return nil
}

// LastOrder returns the order completed in this session, if any.
func (p *Preferences) LastOrder() *domain.Order { return p.lastOrder }

// SetLastOrder stores the completed order for the session.
func (p *Preferences) SetLastOrder(ctx context.Context, o domain.Order) error {
	if err := p.b.write(ctx, keyLastOrder, o, p.sessionTTL); err != nil {
		return err
	}
	p.lastOrder = &o
	return nil
}
