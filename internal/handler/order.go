package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/steelhaven/storefront/internal/domain/order"
)

// checkoutItem is one submitted order line. product_price and subtotal accept
// JSON numbers or numeric strings.
type checkoutItem struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// checkoutPayload mirrors the checkout form. Several fields have legacy
// aliases (full_name/customer_name, email/customer_email, zip/postal) kept
// for older storefront clients.
type checkoutPayload struct {
	FullName      string `json:"full_name"`
	CustomerName  string `json:"customer_name"`
	Email         string `json:"email"`
	CustomerEmail string `json:"customer_email"`
	Phone         string `json:"phone"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Postal  string `json:"postal"`
	Country string `json:"country"`

	Items       []checkoutItem   `json:"items"`
	TotalAmount *decimal.Decimal `json:"total_amount"`

	SummaryName  string          `json:"summary_name"`
	SummaryPrice decimal.Decimal `json:"summary_price"`
	SummaryQty   int             `json:"summary_qty"`
	SummaryTotal decimal.Decimal `json:"summary_total"`
}

func (p *checkoutPayload) toDomain() order.PlaceOrderRequest {
	req := order.PlaceOrderRequest{
		CustomerName:  firstNonEmpty(p.FullName, p.CustomerName),
		CustomerEmail: firstNonEmpty(p.Email, p.CustomerEmail),
		CustomerPhone: p.Phone,
		Address: order.Address{
			Address: p.Address,
			City:    p.City,
			State:   p.State,
			Zip:     firstNonEmpty(p.Zip, p.Postal),
			Country: p.Country,
		},
		SummaryName:  p.SummaryName,
		SummaryPrice: p.SummaryPrice,
		SummaryQty:   p.SummaryQty,
		SummaryTotal: p.SummaryTotal,
		Total:        p.TotalAmount,
	}
	for _, it := range p.Items {
		req.Items = append(req.Items, order.ItemInput{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			Subtotal:     it.Subtotal,
		})
	}
	return req
}

// placeOrder handles the checkout submission: parse (JSON or form), delegate
// to the order pipeline, and map domain errors to status codes.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	payload, err := parseCheckout(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.orders.PlaceOrder(r.Context(), payload.toDomain())
	if err != nil {
		var verr *order.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		var tmErr *order.TotalMismatchError
		if errors.As(err, &tmErr) {
			respondError(w, http.StatusUnprocessableEntity, tmErr.Error())
			return
		}
		serverError(w, r, "failed to create order", err)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"ok":           true,
		"order_id":     result.Order.ID,
		"order_number": result.Order.OrderNumber,
	})
}

// parseCheckout decodes the request body by content type. In form mode the
// items field arrives as a JSON-encoded string; a malformed items value is a
// hard error rather than being passed through unparsed.
func parseCheckout(r *http.Request) (*checkoutPayload, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var p checkoutPayload
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return nil, errors.New("invalid JSON body")
		}
		return &p, nil
	}

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, errors.New("invalid form body")
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, errors.New("invalid form body")
	}

	form := r.PostForm
	p.FullName = form.Get("full_name")
	p.CustomerName = form.Get("customer_name")
	p.Email = form.Get("email")
	p.CustomerEmail = form.Get("customer_email")
	p.Phone = form.Get("phone")
	p.Address = form.Get("address")
	p.City = form.Get("city")
	p.State = form.Get("state")
	p.Zip = form.Get("zip")
	p.Postal = form.Get("postal")
	p.Country = form.Get("country")
	p.SummaryName = form.Get("summary_name")

	var err error
	if p.SummaryPrice, err = formDecimal(form.Get("summary_price")); err != nil {
		return nil, errors.New("invalid summary_price")
	}
	if p.SummaryTotal, err = formDecimal(form.Get("summary_total")); err != nil {
		return nil, errors.New("invalid summary_total")
	}
	if p.SummaryQty, err = formInt(form.Get("summary_qty")); err != nil {
		return nil, errors.New("invalid summary_qty")
	}

	if v := form.Get("total_amount"); v != "" {
		total, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errors.New("invalid total_amount")
		}
		p.TotalAmount = &total
	}

	if v := form.Get("items"); v != "" {
		if err := json.Unmarshal([]byte(v), &p.Items); err != nil {
			return nil, errors.New("invalid items field")
		}
	}

	return &p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func formDecimal(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(v)
}

func formInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// orderDTO is the wire shape of an order header.
type orderDTO struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	ShippingAddress order.Address   `json:"shipping_address"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          order.Status    `json:"status"`
	PaymentStatus   order.PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// orderItemDTO is the wire shape of one order item.
type orderItemDTO struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	ProductID    string          `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// getOrder serves the confirmation read path: resolve by order number with an
// ID fallback and return the header plus its items.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	o, items, err := h.orders.GetByReference(r.Context(), ref)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		serverError(w, r, "failed to load order", err)
		return
	}

	itemDTOs := make([]orderItemDTO, len(items))
	for i, it := range items {
		itemDTOs[i] = orderItemDTO{
			ID:           it.ID,
			OrderID:      it.OrderID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			Subtotal:     it.Subtotal,
		}
	}

	respond(w, http.StatusOK, map[string]any{
		"order": orderDTO{
			ID:              o.ID,
			OrderNumber:     o.OrderNumber,
			CustomerName:    o.CustomerName,
			CustomerEmail:   o.CustomerEmail,
			CustomerPhone:   o.CustomerPhone,
			ShippingAddress: o.ShippingAddress,
			TotalAmount:     o.TotalAmount,
			Status:          o.Status,
			PaymentStatus:   o.PaymentStatus,
			CreatedAt:       o.CreatedAt,
		},
		"items": itemDTOs,
	})
}

// updateOrderStatus performs an admin fulfillment transition.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, body.Status); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		var itErr *order.InvalidTransitionError
		if errors.As(err, &itErr) {
			respondError(w, http.StatusConflict, itErr.Error())
			return
		}
		serverError(w, r, "failed to update order status", err)
		return
	}

	respond(w, http.StatusOK, map[string]any{"ok": true})
}
