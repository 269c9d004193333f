// Package seed populates the products table with a demo catalog.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/pkg/database"
)

// BatchSize is how many documents one INSERT statement carries.
const BatchSize = 500

// namespace scopes generated product ids so re-runs produce the same ids.
var namespace = uuid.MustParse("6f1c2e0a-6a53-4d0e-9a4c-5b7e2f1d8c3b")

// Document is a product row waiting to be written.
type Document struct {
	DocID     string
	Data      gateway.ProductDocument
	CreatedAt time.Time
}

type sample struct {
	id, title, category, price string
	rating                    float64
	discount                  float64
	featured                  bool
}

var samples = []sample{
	{"sample1", "Ergonomic Office Chair", "Furniture", "299.99", 4.5, 0, true},
	{"sample2", "4K Ultra HD Monitor", "Electronics", "450.00", 4.8, 11, true},
	{"sample3", "Noise-Cancelling Headphones", "Electronics", "199.50", 4.7, 0, true},
	{"sample4", "Men's Running Shoes", "Footwear", "75.00", 4.2, 0, false},
	{"sample5", "Espresso Machine", "Appliances", "349.99", 4.9, 0, true},
	{"sample6", "Portable Power Bank", "Accessories", "25.00", 4.1, 0, false},
	{"sample7", "Yoga Mat", "Fitness", "35.00", 4.6, 0, false},
	{"sample8", "Bluetooth Speaker", "Electronics", "80.00", 4.3, 10, false},
	{"sample9", "Cookbook: Italian Cuisine", "Books", "22.00", 4.4, 0, false},
	{"sample10", "Smart Watch", "Electronics", "150.00", 4.8, 0, true},
	{"sample11", "Ceramic Coffee Mug", "Kitchenware", "12.00", 4.1, 0, false},
	{"sample12", "Weighted Blanket", "Home Goods", "89.99", 4.7, 15, false},
	{"sample13", "Gaming Mouse", "Gaming", "55.00", 4.6, 0, true},
	{"sample14", "Dumbbell Set", "Fitness", "99.00", 4.5, 0, false},
	{"sample15", "Desk Lamp with USB Port", "Lighting", "45.00", 4.3, 0, false},
}

// Sample returns the hand-written demo catalog.
func Sample(now time.Time) []Document {
	docs := make([]Document, 0, len(samples))
	for i, s := range samples {
		doc := gateway.ProductDocument{
			ProductID:   s.id,
			ProductName: s.title,
			Price:       decimal.RequireFromString(s.price),
			Category:    s.category,
			ImageURL:    "https://picsum.photos/seed/" + s.id + "/800/600",
			Description: s.title + " from the AmaKart demo catalog.",
			Rating:      ptr(s.rating),
			IsFeatured:  s.featured,
			SearchTags:  tags(s.title, s.category),
		}
		if s.discount > 0 {
			doc.DiscountPercentage = ptr(s.discount)
		}
		docs = append(docs, Document{DocID: s.id, Data: doc, CreatedAt: now.Add(-time.Duration(i) * time.Hour)})
	}
	return docs
}

var (
	adjectives = []string{"Classic", "Compact", "Deluxe", "Eco", "Premium", "Smart", "Travel", "Wireless"}
	nouns      = map[string][]string{
		"Electronics": {"Headphones", "Monitor", "Speaker", "Tablet", "Charger"},
		"Footwear":    {"Sneakers", "Boots", "Sandals", "Loafers"},
		"Fitness":     {"Kettlebell", "Resistance Band", "Jump Rope", "Foam Roller"},
		"Home Goods":  {"Throw Pillow", "Blanket", "Candle", "Vase"},
		"Books":       {"Novel", "Cookbook", "Atlas", "Journal"},
		"Kitchenware": {"Skillet", "Knife Set", "Mixing Bowl", "Kettle"},
		"Accessories": {"Backpack", "Wallet", "Sunglasses", "Phone Case"},
		"Gaming":      {"Controller", "Keyboard", "Headset", "Mouse Pad"},
	}
)

// Generate builds n synthetic products. The same rng seed yields the same
// catalog.
func Generate(n int, rng *rand.Rand, now time.Time) []Document {
	categories := slices.Sorted(maps.Keys(nouns))

	docs := make([]Document, 0, n)
	for i := range n {
		category := categories[i%len(categories)]
		noun := nouns[category][rng.Intn(len(nouns[category]))]
		title := adjectives[rng.Intn(len(adjectives))] + " " + noun
		id := uuid.NewSHA1(namespace, fmt.Appendf(nil, "amakart-product:%d", i)).String()

		// Price 5.00 to 504.99, always ending in .99 or .00.
		cents := int64(500+rng.Intn(50000)) / 100 * 100
		if rng.Intn(2) == 0 {
			cents += 99
		}

		doc := gateway.ProductDocument{
			ProductID:   id,
			ProductName: title,
			Price:       decimal.New(cents, -2),
			Category:    category,
			ImageURL:    "https://picsum.photos/seed/" + id[:8] + "/800/600",
			Description: fmt.Sprintf("The %s is part of our %s range.", strings.ToLower(title), strings.ToLower(category)),
			Rating:      ptr(float64(20+rng.Intn(31)) / 10),
			IsFeatured:  rng.Intn(25) == 0,
			SearchTags:  tags(title, category),
		}
		if rng.Intn(5) == 0 {
			doc.DiscountPercentage = ptr(float64(5 * (1 + rng.Intn(6))))
		}

		age := time.Duration(rng.Intn(90*24*60)) * time.Minute
		docs = append(docs, Document{DocID: id, Data: doc, CreatedAt: now.Add(-age)})
	}
	return docs
}

// Insert upserts docs in batches of BatchSize and returns how many rows were
// written.
func Insert(ctx context.Context, db database.DBTX, docs []Document, logger *slog.Logger) (int, error) {
	written := 0
	for start := 0; start < len(docs); start += BatchSize {
		batch := docs[start:min(start+BatchSize, len(docs))]

		var sb strings.Builder
		sb.WriteString("INSERT INTO products (doc_id, data, created_at) VALUES ")
		args := make([]any, 0, len(batch)*3)
		for i, d := range batch {
			data, err := json.Marshal(d.Data)
			if err != nil {
				return written, fmt.Errorf("marshal product %s: %w", d.DocID, err)
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			n := i * 3
			fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
			args = append(args, d.DocID, data, d.CreatedAt)
		}
		sb.WriteString(" ON CONFLICT (doc_id) DO UPDATE SET data = EXCLUDED.data")

		tag, err := db.Exec(ctx, sb.String(), args...)
		if err != nil {
			return written, fmt.Errorf("insert products %d-%d: %w", start, start+len(batch), err)
		}
		written += int(tag.RowsAffected())
		logger.InfoContext(ctx, "seeded product batch",
			slog.Int("from", start),
			slog.Int("to", start+len(batch)),
		)
	}
	return written, nil
}

func tags(title, category string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.Fields(strings.ToLower(title + " " + category)) {
		w = strings.Trim(w, ":'-")
		if len(w) < 2 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func ptr(f float64) *float64 { return &f }
