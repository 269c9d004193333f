package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ahmad5farah/AmaKart/internal/catalog"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/httputil"
	"github.com/ahmad5farah/AmaKart/pkg/pagination"
	"github.com/ahmad5farah/AmaKart/pkg/validator"
)

// DefaultFeatured is how many featured products the home page shows.
const DefaultFeatured = 8

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(svc *catalog.Service, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: svc, logger: logger}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseCatalogQuery(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := h.catalog.Browse(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, page)
}

// Get handles GET /api/v1/products/{productID}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// Related handles GET /api/v1/products/{productID}/related
func (h *ProductHandler) Related(w http.ResponseWriter, r *http.Request) {
	related, err := h.catalog.Related(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, related)
}

// Featured handles GET /api/v1/products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit := DefaultFeatured
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > pagination.MaxPerPage {
			httputil.WriteError(w, r, apperrors.InvalidInput("limit must be between 1 and 100"), h.logger)
			return
		}
		limit = n
	}

	featured, err := h.catalog.Featured(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, featured)
}

// Categories handles GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

// ClearCache handles POST /api/v1/admin/cache/clear
func (h *ProductHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.catalog.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// parseCatalogQuery reads search, category, categories, min_price,
// max_price, rating, sort, page and per_page. List parameters may repeat
// or be comma separated.
func parseCatalogQuery(r *http.Request) (catalog.Query, error) {
	values := r.URL.Query()
	p := pagination.FromRequest(r)
	q := catalog.Query{
		Search:     strings.TrimSpace(values.Get("search")),
		Category:   strings.TrimSpace(values.Get("category")),
		Categories: splitList(values["categories"]),
		Sort:       values.Get("sort"),
		Page:       p.Page,
		PerPage:    p.PerPage,
	}

	for _, bound := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"min_price", &q.MinPrice},
		{"max_price", &q.MaxPrice},
	} {
		raw := values.Get(bound.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return catalog.Query{}, apperrors.InvalidInput(bound.name + " must be a non-negative number")
		}
		*bound.dst = &d
	}

	ratings := splitList(values["rating"])
	if !slices.Contains(ratings, "all") {
		for _, raw := range ratings {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 3 || n > 5 {
				return catalog.Query{}, apperrors.InvalidInput("rating must be 3, 4, 5 or all")
			}
			q.Ratings = append(q.Ratings, n)
		}
	}

	if err := validator.Validate(q); err != nil {
		return catalog.Query{}, err
	}
	return q, nil
}

func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
