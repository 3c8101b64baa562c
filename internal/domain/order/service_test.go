package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	lastOrder *Order
	lastItems []Item
	creates   int
	createErr error
	// conflictTimes makes the first N Create calls fail with ErrNumberConflict.
	conflictTimes int

	byNumber map[string]*Order
	byID     map[string]*Order
	items    map[string][]Item

	updatedID     string
	updatedStatus Status
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order, items []Item) error {
	m.creates++
	if m.conflictTimes > 0 {
		m.conflictTimes--
		return ErrNumberConflict
	}
	if m.createErr != nil {
		return m.createErr
	}
	m.lastOrder = o
	m.lastItems = items
	return nil
}

func (m *mockOrderRepo) GetByNumber(_ context.Context, number string) (*Order, error) {
	if o, ok := m.byNumber[number]; ok {
		return o, nil
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	if o, ok := m.byID[id]; ok {
		return o, nil
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) ListItems(_ context.Context, orderID string) ([]Item, error) {
	return m.items[orderID], nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	m.updatedID = id
	m.updatedStatus = status
	return nil
}

type mockNotifier struct {
	operatorCalls int
	customerCalls int
	operatorErr   error
	customerErr   error
}

func (m *mockNotifier) NotifyOperator(_ context.Context, _ *Order, _ []Item) error {
	m.operatorCalls++
	return m.operatorErr
}

func (m *mockNotifier) ConfirmCustomer(_ context.Context, _ *Order, _ []Item) error {
	m.customerCalls++
	return m.customerErr
}

// --- Helpers ---

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@x.com",
		Address: Address{
			Address: "1 Main St",
			City:    "Metropolis",
			State:   "NY",
			Zip:     "10001",
			Country: "US",
		},
		Items: []ItemInput{{
			ProductName:  "Katana",
			ProductPrice: decimal.NewFromInt(599),
			Quantity:     1,
			Subtotal:     decimal.NewFromInt(599),
		}},
	}
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-[0-9A-Z]{6}$`)

// --- Tests ---

func TestPlaceOrder_Valid(t *testing.T) {
	repo := &mockOrderRepo{}
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier)

	result, err := svc.PlaceOrder(context.Background(), validRequest())
	require.NoError(t, err)

	o := result.Order
	assert.Regexp(t, orderNumberPattern, o.OrderNumber)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.True(t, decimal.NewFromInt(599).Equal(o.TotalAmount))

	require.Len(t, result.Items, 1)
	assert.Equal(t, o.ID, result.Items[0].OrderID)
	assert.True(t, decimal.NewFromInt(599).Equal(result.Items[0].Subtotal))

	// Exactly one header and its items persisted, both emails dispatched.
	assert.Equal(t, 1, repo.creates)
	require.NotNil(t, repo.lastOrder)
	assert.Len(t, repo.lastItems, 1)
	assert.Equal(t, 1, notifier.operatorCalls)
	assert.Equal(t, 1, notifier.customerCalls)
}

func TestPlaceOrder_MissingRequiredFields(t *testing.T) {
	blank := func(mutate func(*PlaceOrderRequest)) PlaceOrderRequest {
		req := validRequest()
		mutate(&req)
		return req
	}

	cases := []struct {
		field string
		req   PlaceOrderRequest
	}{
		{"name", blank(func(r *PlaceOrderRequest) { r.CustomerName = "" })},
		{"email", blank(func(r *PlaceOrderRequest) { r.CustomerEmail = "  " })},
		{"address", blank(func(r *PlaceOrderRequest) { r.Address.Address = "" })},
		{"city", blank(func(r *PlaceOrderRequest) { r.Address.City = "" })},
		{"state", blank(func(r *PlaceOrderRequest) { r.Address.State = "\t" })},
		{"zip", blank(func(r *PlaceOrderRequest) { r.Address.Zip = "" })},
		{"country", blank(func(r *PlaceOrderRequest) { r.Address.Country = "" })},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			repo := &mockOrderRepo{}
			svc := NewService(repo, &mockNotifier{})

			_, err := svc.PlaceOrder(context.Background(), tc.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, repo.creates, "nothing persisted on validation failure")
		})
	}
}

func TestPlaceOrder_SubtotalFallback(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo, &mockNotifier{})

	req := validRequest()
	req.Items = []ItemInput{
		{ProductName: "Katana", ProductPrice: decimal.NewFromInt(599), Quantity: 2}, // no subtotal
		{ProductName: "Tanto", ProductPrice: decimal.NewFromInt(149), Quantity: 1, Subtotal: decimal.NewFromInt(149)},
	}

	result, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1198).Equal(result.Items[0].Subtotal), "price*qty fallback")
	assert.True(t, decimal.NewFromInt(1347).Equal(result.Order.TotalAmount))
}

func TestPlaceOrder_SummaryFallback(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo, &mockNotifier{})

	req := validRequest()
	req.Items = nil
	req.SummaryName = "Wakizashi"
	req.SummaryPrice = decimal.NewFromInt(349)
	req.SummaryQty = 1

	result, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, "Wakizashi", item.ProductName)
	assert.Equal(t, 1, item.Quantity)
	assert.Empty(t, item.ProductID, "ad hoc item has no catalog reference")
	assert.True(t, decimal.NewFromInt(349).Equal(item.Subtotal))
}

func TestPlaceOrder_SummaryDefaults(t *testing.T) {
	svc := NewService(&mockOrderRepo{}, &mockNotifier{})

	req := validRequest()
	req.Items = nil

	result, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Product", result.Items[0].ProductName)
	assert.Equal(t, 1, result.Items[0].Quantity)
}

func TestPlaceOrder_TotalMismatch(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo, &mockNotifier{})

	req := validRequest()
	submitted := decimal.NewFromInt(1) // client claims $1 for a $599 order
	req.Total = &submitted

	_, err := svc.PlaceOrder(context.Background(), req)

	var tmErr *TotalMismatchError
	require.ErrorAs(t, err, &tmErr)
	assert.True(t, decimal.NewFromInt(599).Equal(tmErr.Computed))
	assert.Zero(t, repo.creates)
}

func TestPlaceOrder_MatchingTotalAccepted(t *testing.T) {
	svc := NewService(&mockOrderRepo{}, &mockNotifier{})

	req := validRequest()
	submitted := decimal.NewFromInt(599)
	req.Total = &submitted

	result, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(599).Equal(result.Order.TotalAmount))
}

func TestPlaceOrder_NumberConflictRetries(t *testing.T) {
	repo := &mockOrderRepo{conflictTimes: 1}
	svc := NewService(repo, &mockNotifier{})

	result, err := svc.PlaceOrder(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.creates)
	assert.Regexp(t, orderNumberPattern, result.Order.OrderNumber)
}

func TestPlaceOrder_NumberConflictExhausted(t *testing.T) {
	repo := &mockOrderRepo{conflictTimes: 2}
	svc := NewService(repo, &mockNotifier{})

	_, err := svc.PlaceOrder(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrNumberConflict)
}

func TestPlaceOrder_PersistenceError(t *testing.T) {
	repo := &mockOrderRepo{createErr: errors.New("connection refused")}
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier)

	_, err := svc.PlaceOrder(context.Background(), validRequest())
	require.Error(t, err)
	assert.Zero(t, notifier.operatorCalls, "no notification after failed persist")
}

func TestPlaceOrder_NotificationFailureNotSurfaced(t *testing.T) {
	notifier := &mockNotifier{
		operatorErr: errors.New("smtp timeout"),
		customerErr: errors.New("rejected recipient"),
	}
	svc := NewService(&mockOrderRepo{}, notifier)

	result, err := svc.PlaceOrder(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotNil(t, result.Order)
	assert.Equal(t, 1, notifier.operatorCalls)
	assert.Equal(t, 1, notifier.customerCalls)
}

// slowCustomerNotifier fails the operator send immediately while the customer
// send watches its context. It records whether the customer send finished or
// was cut short by a cancellation.
type slowCustomerNotifier struct {
	customerSent     bool
	customerCanceled bool
}

func (m *slowCustomerNotifier) NotifyOperator(_ context.Context, _ *Order, _ []Item) error {
	return errors.New("smtp timeout")
}

func (m *slowCustomerNotifier) ConfirmCustomer(ctx context.Context, _ *Order, _ []Item) error {
	select {
	case <-ctx.Done():
		m.customerCanceled = true
		return ctx.Err()
	case <-time.After(50 * time.Millisecond):
		m.customerSent = true
		return nil
	}
}

func TestPlaceOrder_OperatorFailureDoesNotCancelCustomer(t *testing.T) {
	notifier := &slowCustomerNotifier{}
	svc := NewService(&mockOrderRepo{}, notifier)

	result, err := svc.PlaceOrder(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotNil(t, result.Order)
	assert.True(t, notifier.customerSent, "customer confirmation should complete")
	assert.False(t, notifier.customerCanceled, "operator failure must not cancel the customer send")
}

func TestGetByReference(t *testing.T) {
	o := &Order{ID: "id-1", OrderNumber: "ORD-20260830-AB12CD"}
	repo := &mockOrderRepo{
		byNumber: map[string]*Order{o.OrderNumber: o},
		byID:     map[string]*Order{o.ID: o},
		items:    map[string][]Item{"id-1": {{ID: "item-1", OrderID: "id-1"}}},
	}
	svc := NewService(repo, &mockNotifier{})

	t.Run("by order number", func(t *testing.T) {
		got, items, err := svc.GetByReference(context.Background(), "ORD-20260830-AB12CD")
		require.NoError(t, err)
		assert.Equal(t, "id-1", got.ID)
		assert.Len(t, items, 1)
	})

	t.Run("falls back to id", func(t *testing.T) {
		got, _, err := svc.GetByReference(context.Background(), "id-1")
		require.NoError(t, err)
		assert.Equal(t, "ORD-20260830-AB12CD", got.OrderNumber)
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, _, err := svc.GetByReference(context.Background(), "nope")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("valid transition", func(t *testing.T) {
		repo := &mockOrderRepo{byID: map[string]*Order{
			"id-1": {ID: "id-1", Status: StatusPending},
		}}
		svc := NewService(repo, &mockNotifier{})

		err := svc.UpdateStatus(context.Background(), "id-1", StatusProcessing)
		require.NoError(t, err)
		assert.Equal(t, "id-1", repo.updatedID)
		assert.Equal(t, StatusProcessing, repo.updatedStatus)
	})

	t.Run("invalid transition", func(t *testing.T) {
		repo := &mockOrderRepo{byID: map[string]*Order{
			"id-1": {ID: "id-1", Status: StatusDelivered},
		}}
		svc := NewService(repo, &mockNotifier{})

		err := svc.UpdateStatus(context.Background(), "id-1", StatusPending)
		var itErr *InvalidTransitionError
		require.ErrorAs(t, err, &itErr)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := NewService(&mockOrderRepo{}, &mockNotifier{})
		err := svc.UpdateStatus(context.Background(), "missing", StatusProcessing)
		require.ErrorIs(t, err, ErrNotFound)
	})
}
