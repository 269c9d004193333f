package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/ahmad5farah/AmaKart/internal/domain"
)

var (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(50)
	// FlatShipping is charged at or below the threshold.
	FlatShipping = decimal.RequireFromString("9.99")
	// TaxRate applies to the subtotal.
	TaxRate = decimal.RequireFromString("0.08")
)

// Summary is the price breakdown of a cart.
type Summary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// FreeShipping reports whether the summary ships free.
func (s Summary) FreeShipping() bool {
	return s.Shipping.IsZero()
}

// Summarize prices items. Amounts are exact; rounding is left to display.
func Summarize(items []domain.CartItem) Summary {
	subtotal := domain.CartTotal(items)
	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate)
	return Summary{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal.Add(shipping).Add(tax),
		ItemCount: domain.CartCount(items),
	}
}
