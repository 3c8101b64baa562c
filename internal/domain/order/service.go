package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ValidationError indicates a required checkout field was empty after
// trimming. Nothing is persisted when it is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// TotalMismatchError indicates the caller-supplied total does not equal the
// total computed from item subtotals. The submitted amount is never trusted.
type TotalMismatchError struct {
	Submitted decimal.Decimal
	Computed  decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total_amount %s does not match computed total %s", e.Submitted, e.Computed)
}

// InvalidTransitionError indicates a disallowed fulfillment status change.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ItemInput is one submitted line of a checkout payload. Subtotal is optional;
// when zero it is derived as price times quantity.
type ItemInput struct {
	ProductID    string
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
	Subtotal     decimal.Decimal
}

// PlaceOrderRequest holds a parsed checkout submission. When Items is empty
// the Summary fields synthesize a single ad hoc item, a fallback kept for
// minimal form submissions.
type PlaceOrderRequest struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       Address

	Items []ItemInput

	SummaryName  string
	SummaryPrice decimal.Decimal
	SummaryQty   int
	SummaryTotal decimal.Decimal

	// Total is the caller-supplied total_amount, nil when absent.
	Total *decimal.Decimal
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order *Order
	Items []Item
}

// Notifier dispatches the post-checkout notification emails. Both sends are
// best-effort: the pipeline awaits them but never fails an order over them.
type Notifier interface {
	NotifyOperator(ctx context.Context, o *Order, items []Item) error
	ConfirmCustomer(ctx context.Context, o *Order, items []Item) error
}

// Service turns checkout submissions into durable orders plus notifications.
type Service struct {
	orders   Repository
	notifier Notifier
	now      func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(orders Repository, notifier Notifier) *Service {
	return &Service{
		orders:   orders,
		notifier: notifier,
		now:      time.Now,
	}
}

// PlaceOrder validates the submission, computes totals server-side, persists
// the order header and items in one transaction, and dispatches the operator
// and customer emails concurrently before returning.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	req.trim()
	for _, f := range req.requiredFields() {
		if f.value == "" {
			return nil, &ValidationError{Field: f.name}
		}
	}

	inputs := req.Items
	if len(inputs) == 0 {
		inputs = []ItemInput{req.summaryItem()}
	}

	// Subtotal = sum of stated line subtotals, falling back to price*qty
	// when a line omits its subtotal.
	subtotal := decimal.Zero
	items := make([]Item, len(inputs))
	for i, in := range inputs {
		lineSubtotal := in.Subtotal
		if lineSubtotal.IsZero() {
			lineSubtotal = in.ProductPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		}
		items[i] = Item{
			ID:           uuid.New().String(),
			ProductID:    in.ProductID,
			ProductName:  in.ProductName,
			ProductPrice: in.ProductPrice,
			Quantity:     in.Quantity,
			Subtotal:     lineSubtotal,
		}
		subtotal = subtotal.Add(lineSubtotal)
	}

	// The computed subtotal is authoritative. A submitted total that
	// disagrees is rejected rather than trusted.
	if req.Total != nil && !req.Total.Equal(subtotal) {
		return nil, &TotalMismatchError{Submitted: *req.Total, Computed: subtotal}
	}

	o := &Order{
		ID:              uuid.New().String(),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.Address,
		TotalAmount:     subtotal.Round(2),
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		CreatedAt:       s.now(),
	}
	for i := range items {
		items[i].OrderID = o.ID
	}

	if err := s.create(ctx, o, items); err != nil {
		return nil, err
	}

	s.notify(ctx, o, items)

	return &PlaceOrderResult{Order: o, Items: items}, nil
}

// create persists the order, retrying once with a fresh order number if the
// random suffix collides with an existing order.
func (s *Service) create(ctx context.Context, o *Order, items []Item) error {
	for attempt := 0; attempt < 2; attempt++ {
		o.OrderNumber = NewNumber(s.now())
		err := s.orders.Create(ctx, o, items)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNumberConflict) && attempt == 0 {
			zctx.From(ctx).Warn("order number collision, regenerating",
				zap.String("order_number", o.OrderNumber))
			continue
		}
		return errors.Wrap(err, "create order")
	}
	return errors.Wrap(ErrNumberConflict, "create order")
}

// notify dispatches both emails concurrently and awaits them. Failures are
// logged but not surfaced; a placed order is never failed over email.
func (s *Service) notify(ctx context.Context, o *Order, items []Item) {
	if s.notifier == nil {
		return
	}
	// The two sends are independent: a failure on one must not cancel the
	// other, so no shared group context here.
	var g errgroup.Group
	g.Go(func() error {
		return errors.Wrap(s.notifier.NotifyOperator(ctx, o, items), "operator notification")
	})
	g.Go(func() error {
		return errors.Wrap(s.notifier.ConfirmCustomer(ctx, o, items), "customer confirmation")
	})
	if err := g.Wait(); err != nil {
		zctx.From(ctx).Warn("order notification failed",
			zap.String("order_number", o.OrderNumber), zap.Error(err))
	}
}

// GetByReference resolves an order by its human-readable number, falling back
// to the internal ID, and returns the header with its items in creation order.
func (s *Service) GetByReference(ctx context.Context, ref string) (*Order, []Item, error) {
	o, err := s.orders.GetByNumber(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		o, err = s.orders.GetByID(ctx, ref)
	}
	if err != nil {
		return nil, nil, err
	}

	items, err := s.orders.ListItems(ctx, o.ID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list order items")
	}
	return o, items, nil
}

// UpdateStatus validates the fulfillment transition and persists it.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, to) {
		return &InvalidTransitionError{From: o.Status, To: to}
	}
	return s.orders.UpdateStatus(ctx, id, to)
}

type requiredField struct {
	name  string
	value string
}

// requiredFields lists the checkout fields that must be non-empty, in the
// order they are reported.
func (r *PlaceOrderRequest) requiredFields() []requiredField {
	return []requiredField{
		{"name", r.CustomerName},
		{"email", r.CustomerEmail},
		{"address", r.Address.Address},
		{"city", r.Address.City},
		{"state", r.Address.State},
		{"zip", r.Address.Zip},
		{"country", r.Address.Country},
	}
}

// trim normalizes all free-text fields before validation.
func (r *PlaceOrderRequest) trim() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.Address.Address = strings.TrimSpace(r.Address.Address)
	r.Address.City = strings.TrimSpace(r.Address.City)
	r.Address.State = strings.TrimSpace(r.Address.State)
	r.Address.Zip = strings.TrimSpace(r.Address.Zip)
	r.Address.Country = strings.TrimSpace(r.Address.Country)
}

// summaryItem synthesizes a single ad hoc item from the summary fields.
func (r *PlaceOrderRequest) summaryItem() ItemInput {
	name := strings.TrimSpace(r.SummaryName)
	if name == "" {
		name = "Product"
	}
	qty := r.SummaryQty
	if qty == 0 {
		qty = 1
	}
	subtotal := r.SummaryTotal
	if subtotal.IsZero() {
		subtotal = r.SummaryPrice
	}
	return ItemInput{
		ProductName:  name,
		ProductPrice: r.SummaryPrice,
		Quantity:     qty,
		Subtotal:     subtotal,
	}
}
