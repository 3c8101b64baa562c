package email

import (
	"html/template"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/steelhaven/storefront/internal/domain/contact"
	"github.com/steelhaven/storefront/internal/domain/order"
)

// Templates use html/template so every interpolated field is escaped against
// HTML injection into the message body.
var (
	orderNotificationTmpl = template.Must(template.New("order_notification").Parse(`
<div style="font-family: Arial, sans-serif; color:#111;">
  <h2 style="margin:0 0 12px;">New Order: {{.Order.OrderNumber}}</h2>
  <p style="margin:0 0 16px; color:#666;">{{.Brand}}</p>
  <h3 style="margin:16px 0 8px;">Buyer</h3>
  <table cellpadding="8" cellspacing="0" style="border-collapse:collapse; width:100%; background:#f7f7f7;">
    <tr><td style="width:180px; font-weight:bold;">Name</td><td>{{.Order.CustomerName}}</td></tr>
    <tr><td style="width:180px; font-weight:bold;">Email</td><td>{{.Order.CustomerEmail}}</td></tr>
    {{if .Order.CustomerPhone}}<tr><td style="width:180px; font-weight:bold;">Phone</td><td>{{.Order.CustomerPhone}}</td></tr>{{end}}
  </table>
  <h3 style="margin:16px 0 8px;">Shipping Address</h3>
  {{template "address" .Order.ShippingAddress}}
  <h3 style="margin:16px 0 8px;">Items</h3>
  {{template "items" .Items}}
  <h3 style="margin:16px 0 8px;">Totals</h3>
  <table cellpadding="8" cellspacing="0" style="border-collapse:collapse; width:100%; background:#f7f7f7;">
    <tr><td style="width:180px; font-weight:bold;">Total</td><td>${{.Total}}</td></tr>
    <tr><td style="width:180px; font-weight:bold;">Payment Status</td><td>{{.Order.PaymentStatus}}</td></tr>
    <tr><td style="width:180px; font-weight:bold;">Order Status</td><td>{{.Order.Status}}</td></tr>
  </table>
</div>`))

	customerConfirmationTmpl = template.Must(template.New("customer_confirmation").Parse(`
<div style="font-family: Arial, sans-serif; color:#111;">
  <h2 style="margin:0 0 12px;">Thank you for your order, {{.Order.CustomerName}}!</h2>
  <p style="margin:0 0 16px; color:#666;">Order <strong>{{.Order.OrderNumber}}</strong> &mdash; {{.Brand}}</p>
  <p style="margin:0 0 16px;">We've received your order and will begin processing it shortly. Below is a summary of your purchase.</p>
  <h3 style="margin:16px 0 8px;">Items</h3>
  {{template "items" .Items}}
  <h3 style="margin:16px 0 8px;">Shipping Address</h3>
  {{template "address" .Order.ShippingAddress}}
  <h3 style="margin:16px 0 8px;">Total</h3>
  <p style="margin:0 0 16px; font-size:16px;"><strong>${{.Total}}</strong></p>
  <p style="margin:16px 0 0; color:#666;">If you have any questions, reply to this email and we'll be happy to help.</p>
</div>`))

	contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(`
<div style="font-family: Arial, sans-serif; color:#111;">
  <h2 style="margin:0 0 12px;">New Contact Submission</h2>
  <p style="margin:0 0 16px; color:#666;">{{.Brand}}</p>
  <table cellpadding="8" cellspacing="0" style="border-collapse:collapse; width:100%; background:#f7f7f7;">
    <tr><td style="width:160px; font-weight:bold;">Name</td><td>{{.Submission.Name}}</td></tr>
    <tr><td style="width:160px; font-weight:bold;">Email</td><td>{{.Submission.Email}}</td></tr>
    {{if .Submission.Phone}}<tr><td style="width:160px; font-weight:bold;">Phone</td><td>{{.Submission.Phone}}</td></tr>{{end}}
    <tr><td style="width:160px; font-weight:bold;">Subject</td><td>{{.Submission.Subject}}</td></tr>
    <tr><td style="width:160px; font-weight:bold; vertical-align:top;">Message</td>
      <td>{{range $i, $line := .MessageLines}}{{if $i}}<br/>{{end}}{{$line}}{{end}}</td></tr>
  </table>
</div>`))
)

// Shared sub-templates for the order emails.
func init() {
	const addressTmpl = `{{define "address"}}<table cellpadding="8" cellspacing="0" style="border-collapse:collapse; width:100%; background:#f7f7f7;">
  <tr><td style="width:180px; font-weight:bold;">Address</td><td>{{.Address}}</td></tr>
  <tr><td style="width:180px; font-weight:bold;">City</td><td>{{.City}}</td></tr>
  <tr><td style="width:180px; font-weight:bold;">State</td><td>{{.State}}</td></tr>
  <tr><td style="width:180px; font-weight:bold;">ZIP</td><td>{{.Zip}}</td></tr>
  <tr><td style="width:180px; font-weight:bold;">Country</td><td>{{.Country}}</td></tr>
</table>{{end}}`

	const itemsTmpl = `{{define "items"}}<table cellpadding="0" cellspacing="0" style="border-collapse:collapse; width:100%; background:#fff;">
  <thead><tr>
    <th align="left" style="padding:8px;border:1px solid #eee;background:#fafafa;">Item</th>
    <th align="left" style="padding:8px;border:1px solid #eee;background:#fafafa;">Unit Price</th>
    <th align="left" style="padding:8px;border:1px solid #eee;background:#fafafa;">Qty</th>
    <th align="left" style="padding:8px;border:1px solid #eee;background:#fafafa;">Subtotal</th>
  </tr></thead>
  <tbody>{{range .}}<tr>
    <td style="padding:8px;border:1px solid #eee;">{{.Name}}</td>
    <td style="padding:8px;border:1px solid #eee;">${{.Price}}</td>
    <td style="padding:8px;border:1px solid #eee;">{{.Quantity}}</td>
    <td style="padding:8px;border:1px solid #eee;">${{.Subtotal}}</td>
  </tr>{{end}}</tbody>
</table>{{end}}`

	for _, tmpl := range []*template.Template{
		orderNotificationTmpl, customerConfirmationTmpl, contactNotificationTmpl,
	} {
		template.Must(tmpl.Parse(addressTmpl))
		template.Must(tmpl.Parse(itemsTmpl))
	}
}

// itemRow is one rendered line of the items table, with money preformatted
// to two decimal places.
type itemRow struct {
	Name     string
	Price    string
	Quantity int
	Subtotal string
}

func itemRows(items []order.Item) []itemRow {
	rows := make([]itemRow, len(items))
	for i, it := range items {
		rows[i] = itemRow{
			Name:     it.ProductName,
			Price:    money(it.ProductPrice),
			Quantity: it.Quantity,
			Subtotal: money(it.Subtotal),
		}
	}
	return rows
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type orderTemplateData struct {
	Brand string
	Order *order.Order
	Items []itemRow
	Total string
}

type contactTemplateData struct {
	Brand        string
	Submission   *contact.Submission
	MessageLines []string
}

func renderOrderNotification(brand string, o *order.Order, items []order.Item) (string, error) {
	return render(orderNotificationTmpl, orderTemplateData{
		Brand: brand,
		Order: o,
		Items: itemRows(items),
		Total: money(o.TotalAmount),
	})
}

func renderCustomerConfirmation(brand string, o *order.Order, items []order.Item) (string, error) {
	return render(customerConfirmationTmpl, orderTemplateData{
		Brand: brand,
		Order: o,
		Items: itemRows(items),
		Total: money(o.TotalAmount),
	})
}

func renderContactNotification(brand string, s *contact.Submission) (string, error) {
	return render(contactNotificationTmpl, contactTemplateData{
		Brand:        brand,
		Submission:   s,
		MessageLines: strings.Split(s.Message, "\n"),
	})
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", errors.Wrapf(err, "render %s", tmpl.Name())
	}
	return sb.String(), nil
}
