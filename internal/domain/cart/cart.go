// Package cart implements the shopper's in-progress selection: an ordered
// list of line items with merge-on-add semantics, mirrored to a durable
// key-value store on every mutation.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Line is one product entry in the cart with a quantity.
type Line struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price multiplied by quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Persister stores and retrieves the full line list for one cart session.
// Implementations must round-trip id, name, price, image and quantity.
type Persister interface {
	Save(ctx context.Context, session string, lines []Line) error
	Load(ctx context.Context, session string) ([]Line, error)
	Delete(ctx context.Context, session string) error
}
