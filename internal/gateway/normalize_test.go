package gateway

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CurrentSchema(t *testing.T) {
	var doc ProductDocument
	require.NoError(t, json.Unmarshal([]byte(`{
		"product_id": "sku-1",
		"product_name": "Wireless Headphones",
		"price": 129.5,
		"category": "electronics",
		"image_url": "https://img/1.jpg",
		"rating": 4.6,
		"is_featured": true,
		"discount_percentage": 10,
		"search_tags": ["Wireless", " headphones ", ""]
	}`), &doc))

	p := Normalize("doc-1", doc)

	assert.Equal(t, "sku-1", p.ID)
	assert.Equal(t, "Wireless Headphones", p.Title)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("129.5")))
	assert.Equal(t, "https://img/1.jpg", p.Image)
	assert.Equal(t, 4.6, *p.Rating)
	assert.Equal(t, 10.0, *p.DiscountPercentage)
	assert.True(t, p.IsFeatured)
	assert.Equal(t, []string{"wireless", "headphones"}, p.SearchTags)
}

func TestNormalize_LegacySchema(t *testing.T) {
	var doc ProductDocument
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "Desk Lamp",
		"price": "24.99",
		"category": "home",
		"image": "lamp.png"
	}`), &doc))

	p := Normalize("doc-7", doc)

	assert.Equal(t, "doc-7", p.ID)
	assert.Equal(t, "Desk Lamp", p.Title)
	assert.Equal(t, "lamp.png", p.Image)
	assert.Nil(t, p.Rating)
	assert.Nil(t, p.SearchTags)
}

func TestNormalize_ClampsBadValues(t *testing.T) {
	rating := 7.0
	p := Normalize("d", ProductDocument{Title: "x", Price: decimal.NewFromInt(-3), Rating: &rating})
	assert.True(t, p.Price.IsZero())
	assert.Equal(t, 5.0, *p.Rating)
}
