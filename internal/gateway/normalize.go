package gateway

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ahmad5farah/AmaKart/internal/domain"
)

// ProductDocument is a product as stored remotely. Older documents use
// title/image and rely on the document id; newer ones carry product_name,
// image_url and product_id.
type ProductDocument struct {
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Title              string          `json:"title"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	ImageURL           string          `json:"image_url"`
	Image              string          `json:"image"`
	Description        string          `json:"description"`
	Rating             *float64        `json:"rating"`
	DiscountPercentage *float64        `json:"discount_percentage"`
	IsFeatured         bool            `json:"is_featured"`
	SearchTags         []string        `json:"search_tags"`
}

// Normalize converts a stored document into the canonical Product.
func Normalize(docID string, doc ProductDocument) domain.Product {
	p := domain.Product{
		ID:                 firstNonEmpty(doc.ProductID, docID),
		Title:              firstNonEmpty(doc.ProductName, doc.Title),
		Price:              doc.Price,
		Category:           doc.Category,
		Image:              firstNonEmpty(doc.ImageURL, doc.Image),
		Description:        doc.Description,
		IsFeatured:         doc.IsFeatured,
		DiscountPercentage: doc.DiscountPercentage,
	}
	if p.Price.IsNegative() {
		p.Price = decimal.Zero
	}
	if doc.Rating != nil {
		r := min(max(*doc.Rating, 0), 5)
		p.Rating = &r
	}
	if len(doc.SearchTags) > 0 {
		p.SearchTags = make([]string, 0, len(doc.SearchTags))
		for _, tag := range doc.SearchTags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				p.SearchTags = append(p.SearchTags, tag)
			}
		}
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
