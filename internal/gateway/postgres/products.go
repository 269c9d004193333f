// Package postgres implements the gateway interfaces on PostgreSQL, storing
// products and orders as JSONB documents.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/pkg/database"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
	"github.com/ahmad5farah/AmaKart/pkg/tracing"
)

// ProductStore implements gateway.Products over the products table.
type ProductStore struct {
	db     database.DBTX
	logger *slog.Logger
}

var _ gateway.Products = (*ProductStore)(nil)

// NewProductStore creates a product store. Documents that fail to decode
// are skipped from listings and reported on logger.
func NewProductStore(db database.DBTX, logger *slog.Logger) *ProductStore {
	return &ProductStore{db: db, logger: logger}
}

// AllProducts returns the newest products.
func (s *ProductStore) AllProducts(ctx context.Context, limit int) (products []domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "gateway.AllProducts", attribute.Int("limit", limit))
	defer func() { tracing.End(span, err) }()

	return s.list(ctx, "failed to load products", `
		SELECT doc_id, data FROM products
		ORDER BY created_at DESC
		LIMIT $1`, limit)
}

// ProductsByCategory returns products in category.
func (s *ProductStore) ProductsByCategory(ctx context.Context, category string, limit int) (products []domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "gateway.ProductsByCategory", attribute.String("category", category))
	defer func() { tracing.End(span, err) }()

	return s.list(ctx, "failed to load category products", `
		SELECT doc_id, data FROM products
		WHERE data->>'category' = $1
		ORDER BY created_at DESC
		LIMIT $2`, category, limit)
}

// SearchProducts returns products having any of terms among their
// search_tags.
func (s *ProductStore) SearchProducts(ctx context.Context, terms []string, limit int) (products []domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "gateway.SearchProducts", attribute.Int("terms", len(terms)))
	defer func() { tracing.End(span, err) }()

	if len(terms) == 0 {
		return []domain.Product{}, nil
	}
	return s.list(ctx, "failed to search products", `
		SELECT doc_id, data FROM products
		WHERE data->'search_tags' ?| $1
		LIMIT $2`, terms, limit)
}

// FeaturedProducts returns products flagged as featured.
func (s *ProductStore) FeaturedProducts(ctx context.Context, limit int) (products []domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "gateway.FeaturedProducts", attribute.Int("limit", limit))
	defer func() { tracing.End(span, err) }()

	return s.list(ctx, "failed to load featured products", `
		SELECT doc_id, data FROM products
		WHERE (data->>'is_featured')::boolean IS TRUE
		ORDER BY created_at DESC
		LIMIT $1`, limit)
}

// Categories returns the distinct non-empty categories, sorted.
func (s *ProductStore) Categories(ctx context.Context) (categories []string, err error) {
	ctx, span := tracing.Start(ctx, "gateway.Categories")
	defer func() { tracing.End(span, err) }()

	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT data->>'category' AS category FROM products
		WHERE COALESCE(data->>'category', '') <> ''
		ORDER BY category`)
	if err != nil {
		return nil, apperrors.NetworkError("failed to load categories", err)
	}
	categories, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.NetworkError("failed to load categories", err)
	}
	return categories, nil
}

// ProductByID looks the product up by document id, then by its product_id
// field.
func (s *ProductStore) ProductByID(ctx context.Context, id string) (product domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "gateway.ProductByID", attribute.String("product.id", id))
	defer func() { tracing.End(span, err) }()

	for _, query := range []string{
		`SELECT doc_id, data FROM products WHERE doc_id = $1`,
		`SELECT doc_id, data FROM products WHERE data->>'product_id' = $1 LIMIT 1`,
	} {
		var (
			docID string
			data  []byte
		)
		err := s.db.QueryRow(ctx, query, id).Scan(&docID, &data)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return domain.Product{}, apperrors.NetworkError("failed to load product", err)
		}
		return decodeProduct(docID, data)
	}
	return domain.Product{}, apperrors.NotFound("product", id)
}

func (s *ProductStore) list(ctx context.Context, failMsg, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NetworkError(failMsg, err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			docID string
			data  []byte
		)
		if err := rows.Scan(&docID, &data); err != nil {
			return nil, apperrors.NetworkError(failMsg, err)
		}
		p, err := decodeProduct(docID, data)
		if err != nil {
			logger.WithContext(ctx, s.logger).WarnContext(ctx, "skipping undecodable product document",
				slog.String("doc_id", docID),
				slog.String("error", err.Error()),
			)
			continue
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NetworkError(failMsg, err)
	}
	return products, nil
}

func decodeProduct(docID string, data []byte) (domain.Product, error) {
	var doc gateway.ProductDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %s: %w", docID, err)
	}
	return gateway.Normalize(docID, doc), nil
}
