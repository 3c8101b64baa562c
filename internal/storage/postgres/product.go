package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/steelhaven/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, slug, description, price,
		COALESCE(original_price, 0), category_id, image_url,
		in_stock, stock_quantity, featured`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY name`

	getProductByIDSQL   = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	getProductBySlugSQL = `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	upsertProductSQL = `INSERT INTO products
		(id, name, slug, description, price, original_price, category_id,
		 image_url, in_stock, stock_quantity, featured)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0::numeric), $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, slug = EXCLUDED.slug,
			description = EXCLUDED.description, price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			category_id = EXCLUDED.category_id, image_url = EXCLUDED.image_url,
			in_stock = EXCLUDED.in_stock,
			stock_quantity = EXCLUDED.stock_quantity,
			featured = EXCLUDED.featured, updated_at = now()`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

// GetBySlug returns a single product by its URL slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.getOne(ctx, getProductBySlugSQL, slug)
}

func (r *ProductRepository) getOne(ctx context.Context, sql, arg string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}
	return &p, nil
}

// Upsert inserts or updates a catalog entry. Used by the seeding tool.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.OriginalPrice,
		p.CategoryID, p.ImageURL, p.InStock, p.StockQuantity, p.Featured,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
		orig  decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &price, &orig,
		&p.CategoryID, &p.ImageURL, &p.InStock, &p.StockQuantity, &p.Featured,
	)
	p.Price = price
	p.OriginalPrice = orig
	return p, err
}
