// Package pricing computes cart and order totals. It is pure: the same line
// items always produce the same amounts, and nothing here touches storage.
package pricing

import (
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("price and quantity must not be negative")

var (
	taxRate       = decimal.RequireFromString("0.08")
	shippingPrice = decimal.Zero // free shipping
)

// Totals is the monetary breakdown for a set of line items. All values are
// exact except TotalPrice, which is rounded to 2 decimal places; rounding
// intermediate sums would compound the error.
type Totals struct {
	ItemsPrice    decimal.Decimal
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

// ItemsTotal sums price×quantity over the items. The cart store uses it to
// keep totalAmount consistent after every mutation.
func ItemsTotal(items []domain.CartItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		if item.Price.IsNegative() || item.Quantity < 0 {
			return decimal.Zero, ErrInvalidAmount
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

// Compute derives the full breakdown for the items.
func Compute(items []domain.CartItem) (Totals, error) {
	itemsPrice, err := ItemsTotal(items)
	if err != nil {
		return Totals{}, err
	}

	taxPrice := itemsPrice.Mul(taxRate)
	totalPrice := itemsPrice.Add(taxPrice).Add(shippingPrice).Round(2)

	return Totals{
		ItemsPrice:    itemsPrice,
		TaxPrice:      taxPrice,
		ShippingPrice: shippingPrice,
		TotalPrice:    totalPrice,
	}, nil
}
