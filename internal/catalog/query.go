package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ahmad5farah/AmaKart/internal/domain"
)

// Sort orders accepted by Browse.
const (
	SortPriceAsc   = "price-asc"
	SortPriceDesc  = "price-desc"
	SortRatingDesc = "rating-desc"
	SortNameAsc    = "name-asc"
)

// Search term limits.
const (
	minTermLength = 2
	maxTerms      = 10
)

// Query describes a catalog page request.
type Query struct {
	Search     string           `json:"search,omitempty"`
	Category   string           `json:"category,omitempty"`
	Categories []string         `json:"categories,omitempty"`
	MinPrice   *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice   *decimal.Decimal `json:"max_price,omitempty"`
	// Ratings holds star thresholds (3, 4 or 5); a product passes when its
	// rating reaches any of them.
	Ratings []int  `json:"ratings,omitempty"`
	Sort    string `json:"sort,omitempty" validate:"omitempty,oneof=price-asc price-desc rating-desc name-asc"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// SearchTerms lowercases q, splits it on whitespace and keeps up to ten
// terms of at least two characters.
func SearchTerms(q string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(q)) {
		if len([]rune(f)) < minTermLength {
			continue
		}
		terms = append(terms, f)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms
}

// Relevance is the share of terms matched by some search tag.
func Relevance(p domain.Product, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	matched := 0
	for _, term := range terms {
		if p.HasTag(term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// RankByRelevance stably sorts products by descending relevance to terms.
func RankByRelevance(products []domain.Product, terms []string) {
	scores := make(map[string]float64, len(products))
	for _, p := range products {
		scores[p.ID] = Relevance(p, terms)
	}
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		return cmp.Compare(scores[b.ID], scores[a.ID])
	})
}

// Filter returns the products matching the category, price and rating
// constraints of q. It never modifies products.
func Filter(products []domain.Product, q Query) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if len(q.Categories) > 0 && !slices.Contains(q.Categories, p.Category) {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		if !meetsRating(p, q.Ratings) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func meetsRating(p domain.Product, thresholds []int) bool {
	if len(thresholds) == 0 {
		return true
	}
	rating := p.RatingValue()
	for _, th := range thresholds {
		if th >= 3 && th <= 5 && rating >= float64(th) {
			return true
		}
	}
	return false
}

// Sort orders products in place. Unknown orders leave them as they are.
func Sort(products []domain.Product, order string) {
	var fn func(a, b domain.Product) int
	switch order {
	case SortPriceAsc:
		fn = func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		fn = func(a, b domain.Product) int { return b.Price.Cmp(a.Price) }
	case SortRatingDesc:
		fn = func(a, b domain.Product) int { return cmp.Compare(b.RatingValue(), a.RatingValue()) }
	case SortNameAsc:
		fn = func(a, b domain.Product) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }
	default:
		return
	}
	slices.SortStableFunc(products, fn)
}
