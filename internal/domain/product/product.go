// Package product defines the read-only catalog surface. Product writes
// happen through the admin back office, which is outside this service.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	// OriginalPrice is the pre-discount price; zero when the product was
	// never discounted.
	OriginalPrice decimal.Decimal `json:"original_price"`
	CategoryID    string          `json:"category_id,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	InStock       bool            `json:"in_stock"`
	StockQuantity int             `json:"stock_quantity"`
	Featured      bool            `json:"featured"`
}

// Repository defines read operations for the product catalog. The storefront
// links products by slug while orders reference them by ID, so both lookups
// exist.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
}
