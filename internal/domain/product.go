package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
)

// Product is the canonical catalog record. Remote documents are normalized
// into this shape before anything else sees them.
type Product struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	Image              string          `json:"image"`
	Description        string          `json:"description,omitempty"`
	Rating             *float64        `json:"rating,omitempty"`
	DiscountPercentage *float64        `json:"discount_percentage,omitempty"`
	IsFeatured         bool            `json:"is_featured,omitempty"`
	SearchTags         []string        `json:"search_tags,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// SalePrice returns the price after the discount percentage, if any.
func (p Product) SalePrice() decimal.Decimal {
	if p.DiscountPercentage == nil || *p.DiscountPercentage <= 0 {
		return p.Price
	}
	off := decimal.NewFromFloat(*p.DiscountPercentage).Div(hundred)
	return p.Price.Mul(decimal.NewFromInt(1).Sub(off))
}

// RatingValue returns the rating, or 0 when the product has none.
func (p Product) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// HasTag reports whether any search tag contains term.
func (p Product) HasTag(term string) bool {
	for _, tag := range p.SearchTags {
		if strings.Contains(tag, term) {
			return true
		}
	}
	return false
}

// ValidateProduct rejects products that cannot be put in a cart or wishlist:
// they need an id, a positive price and a non-blank title.
func ValidateProduct(p Product) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return apperrors.InvalidProduct("product id is required")
	case !p.Price.IsPositive():
		return apperrors.InvalidProduct("product price must be positive")
	case strings.TrimSpace(p.Title) == "":
		return apperrors.InvalidProduct("product title is required")
	}
	return nil
}

// Sanitize trims s and strips angle brackets.
func Sanitize(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(s))
}

// SanitizeProduct returns a copy of p with its free-text fields sanitized.
func SanitizeProduct(p Product) Product {
	p.ID = Sanitize(p.ID)
	p.Title = Sanitize(p.Title)
	p.Category = Sanitize(p.Category)
	p.Image = Sanitize(p.Image)
	p.Description = Sanitize(p.Description)
	if p.SearchTags != nil {
		tags := make([]string, len(p.SearchTags))
		copy(tags, p.SearchTags)
		p.SearchTags = tags
	}
	return p
}

// FormatMoney renders an amount for display, rounded to cents.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
