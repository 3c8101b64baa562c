package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the order's fulfillment lifecycle state, distinct from payment.
type Status string

// Fulfillment statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus tracks the payment lifecycle of an order.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// statusTransitions enumerates the allowed fulfillment transitions. Checkout
// only ever creates orders in StatusPending; everything else is driven by the
// admin surface.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order may move from one fulfillment status
// to another.
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrNumberConflict is returned by repositories when an order number collides
// with an existing order.
var ErrNumberConflict = errors.New("order number already exists")

// ErrNotFound is returned when no order matches the given reference.
var ErrNotFound = errors.New("order not found")

// Address is the structured shipping address stored with the order header.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Order is the persisted order header.
type Order struct {
	ID              string
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress Address
	TotalAmount     decimal.Decimal
	Status          Status
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item is a persisted snapshot of one purchased product. Items are created
// once with their parent order and never mutated; they disappear only when
// the order row cascades away.
type Item struct {
	ID           string
	OrderID      string
	ProductID    string // empty for ad hoc items with no catalog reference
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
	Subtotal     decimal.Decimal
	CreatedAt    time.Time
}

// Repository defines persistence operations for orders and their items.
// Create must persist the header and all items atomically and report an
// order-number collision as ErrNumberConflict.
type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListItems(ctx context.Context, orderID string) ([]Item, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
