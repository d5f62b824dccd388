// Package catalog exposes the product data the cart needs for add-time
// price snapshots. Catalog management itself lives elsewhere; this is a
// read-only view.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID      string
	Name    string
	Image   string
	Price   decimal.Decimal
	InStock bool
}

type Catalog interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}
