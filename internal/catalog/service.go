// Package catalog serves product listings through the product cache.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ahmad5farah/AmaKart/internal/cache"
	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
	"github.com/ahmad5farah/AmaKart/pkg/pagination"
	"github.com/ahmad5farah/AmaKart/pkg/tracing"
)

// RelatedLimit caps the related products shown on a product page.
const RelatedLimit = 4

const (
	keyAllProducts = "all_products"
	keyCategories  = "product_categories"
)

// Caches groups the caches the service reads through.
type Caches struct {
	Lists      *cache.Cache[[]domain.Product]
	Products   *cache.Cache[domain.Product]
	Categories *cache.Cache[[]string]
}

// Clear empties every cache.
func (c Caches) Clear() {
	c.Lists.Clear()
	c.Products.Clear()
	c.Categories.Clear()
}

// Service answers catalog queries.
type Service struct {
	products gateway.Products
	caches   Caches
	logger   *slog.Logger
}

// NewService creates a catalog service.
func NewService(products gateway.Products, caches Caches, logger *slog.Logger) *Service {
	return &Service{products: products, caches: caches, logger: logger}
}

// Browse selects the source list (search text, else category, else all
// products), filters, sorts and paginates it.
func (s *Service) Browse(ctx context.Context, q Query) (result pagination.Result[domain.Product], err error) {
	ctx, span := tracing.Start(ctx, "catalog.Browse",
		attribute.String("catalog.category", q.Category),
		attribute.String("catalog.sort", q.Sort),
	)
	defer func() { tracing.End(span, err) }()

	var source []domain.Product
	switch {
	case strings.TrimSpace(q.Search) != "":
		source, err = s.Search(ctx, q.Search)
	case q.Category != "":
		source, err = s.ByCategory(ctx, q.Category)
	default:
		source, err = s.All(ctx)
	}
	if err != nil {
		return pagination.Result[domain.Product]{}, err
	}

	filtered := Filter(source, q)
	Sort(filtered, q.Sort)
	return pagination.Paginate(filtered, pagination.NewParams(q.Page, q.PerPage)), nil
}

// All returns the newest products.
func (s *Service) All(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, keyAllProducts, func(ctx context.Context) ([]domain.Product, error) {
		return s.products.AllProducts(ctx, gateway.AllProductsLimit)
	})
}

// ByCategory returns the products of category.
func (s *Service) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.list(ctx, "category_"+category, func(ctx context.Context) ([]domain.Product, error) {
		return s.products.ProductsByCategory(ctx, category, gateway.CategoryLimit)
	})
}

// Search returns products matching the query's terms, most relevant first.
// Queries without a usable term return no products.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	terms := SearchTerms(query)
	if len(terms) == 0 {
		return []domain.Product{}, nil
	}
	return s.list(ctx, "search_"+strings.ToLower(query), func(ctx context.Context) ([]domain.Product, error) {
		found, err := s.products.SearchProducts(ctx, terms, gateway.SearchLimit)
		if err != nil {
			return nil, err
		}
		RankByRelevance(found, terms)
		return found, nil
	})
}

// Featured returns up to n featured products, falling back to the newest
// products when none are flagged.
func (s *Service) Featured(ctx context.Context, n int) ([]domain.Product, error) {
	if n <= 0 {
		n = 8
	}
	return s.list(ctx, "featured_products_"+strconv.Itoa(n), func(ctx context.Context) ([]domain.Product, error) {
		featured, err := s.products.FeaturedProducts(ctx, n)
		if err != nil || len(featured) > 0 {
			return featured, err
		}
		all, err := s.All(ctx)
		if err != nil {
			return nil, err
		}
		return all[:min(n, len(all))], nil
	})
}

// Product returns one product.
func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	key := "product_" + id
	if p, ok := s.caches.Products.Get(key); ok {
		return p, nil
	}
	p, err := s.products.ProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	s.caches.Products.Put(key, p)
	return p, nil
}

// Related returns up to RelatedLimit other products of the same category.
func (s *Service) Related(ctx context.Context, id string) ([]domain.Product, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Category == "" {
		return []domain.Product{}, nil
	}
	same, err := s.ByCategory(ctx, p.Category)
	if err != nil {
		return nil, err
	}
	related := make([]domain.Product, 0, RelatedLimit)
	for _, other := range same {
		if other.ID == p.ID {
			continue
		}
		related = append(related, other)
		if len(related) == RelatedLimit {
			break
		}
	}
	return related, nil
}

// Categories returns the known categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if c, ok := s.caches.Categories.Get(keyCategories); ok {
		return slices.Clone(c), nil
	}
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}
	s.caches.Categories.Put(keyCategories, categories)
	return slices.Clone(categories), nil
}

// ClearCache drops every cached result.
func (s *Service) ClearCache(ctx context.Context) {
	s.caches.Clear()
	logger.WithContext(ctx, s.logger).InfoContext(ctx, "product cache cleared")
}

// list reads key through the list cache. Callers receive a copy so sorting
// a page never reorders the cached slice.
func (s *Service) list(ctx context.Context, key string, fetch func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	if cached, ok := s.caches.Lists.Get(key); ok {
		return slices.Clone(cached), nil
	}
	products, err := fetch(ctx)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "product query failed",
			slog.String("cache_key", key),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.caches.Lists.Put(key, products)
	return slices.Clone(products), nil
}
