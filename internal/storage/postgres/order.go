package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steelhaven/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, order_number, customer_name, customer_email, customer_phone,
		 shipping_address, total_amount, status, payment_status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)`

	createOrderItemSQL = `INSERT INTO order_items
		(id, order_id, product_id, product_name, product_price, quantity, subtotal)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)`

	selectOrderSQL = `SELECT id, order_number, customer_name, customer_email,
		COALESCE(customer_phone, ''), shipping_address, total_amount, status,
		payment_status, created_at, updated_at
		FROM orders`

	getOrderByNumberSQL = selectOrderSQL + ` WHERE order_number = $1`
	getOrderByIDSQL     = selectOrderSQL + ` WHERE id = $1`

	listOrderItemsSQL = `SELECT id, order_id, COALESCE(product_id, ''), product_name,
		product_price, quantity, subtotal, created_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at, id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and all of its items in one transaction,
// so a failed item insert never leaves an orphaned header behind. An
// order-number collision is reported as order.ErrNumberConflict.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, items []order.Item) error {
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.OrderNumber, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		addressJSON, o.TotalAmount, o.Status, o.PaymentStatus,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return order.ErrNumberConflict
		}
		return fmt.Errorf("creating order %q: %w", o.OrderNumber, err)
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(createOrderItemSQL,
			item.ID, o.ID, item.ProductID, item.ProductName,
			item.ProductPrice, item.Quantity, item.Subtotal,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("creating order items for %q: %w", o.OrderNumber, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.OrderNumber, err)
	}
	return nil
}

// GetByNumber returns the order with the given human-readable number.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	return r.getOne(ctx, getOrderByNumberSQL, number)
}

// GetByID returns the order with the given internal ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.getOne(ctx, getOrderByIDSQL, id)
}

func (r *OrderRepository) getOne(ctx context.Context, sql, arg string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", arg, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", arg, err)
	}
	return &o, nil
}

// ListItems returns the order's items in creation order.
func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx, listOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items for order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanOrderItem)
}

// UpdateStatus sets the order's fulfillment status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		addressJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&addressJSON, &o.TotalAmount, &o.Status, &o.PaymentStatus,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	return o, nil
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
		&it.ProductPrice, &it.Quantity, &it.Subtotal, &it.CreatedAt,
	)
	return it, err
}
