// internal/adapters/out/db/product_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	productdom "primepicks/internal/domain/product"
)

// RowScanner は *sql.Row, *sql.Rows の両方に共通の Scan() メソッドを持つ抽象型です。
type RowScanner interface {
	Scan(dest ...any) error
}

// ProductCatalogPG implements product.Catalog on a Postgres products table.
//
//	products(id text pk, name text, brand text null, price numeric,
//	         image text null, thumbnail text null, stock int, in_stock bool)
type ProductCatalogPG struct {
	DB *sql.DB
}

func NewProductCatalogPG(db *sql.DB) *ProductCatalogPG {
	return &ProductCatalogPG{DB: db}
}

const selectProductByID = `
SELECT
  id, name, brand, price, image, thumbnail, stock, in_stock
FROM products
WHERE id = $1`

func (r *ProductCatalogPG) GetProductByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.DB == nil {
		return productdom.Product{}, errors.New("product_catalog_pg: db is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}

	p, err := scanProduct(r.DB.QueryRowContext(ctx, selectProductByID, pid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return productdom.Product{}, fmt.Errorf("%w: id=%q", productdom.ErrNotFound, pid)
		}
		return productdom.Product{}, fmt.Errorf("product_catalog_pg: select id=%q: %w", pid, err)
	}
	return p, nil
}

func scanProduct(s RowScanner) (productdom.Product, error) {
	var (
		id, name                string
		brand, image, thumbnail sql.NullString
		price                   decimal.Decimal
		stock                   sql.NullInt64
		inStock                 sql.NullBool
	)

	if err := s.Scan(&id, &name, &brand, &price, &image, &thumbnail, &stock, &inStock); err != nil {
		return productdom.Product{}, err
	}

	p := productdom.Product{
		ID:        id,
		Name:      name,
		Brand:     brand.String,
		Price:     price,
		Image:     image.String,
		Thumbnail: thumbnail.String,
		Stock:     int(stock.Int64),
	}
	if inStock.Valid {
		p.InStock = inStock.Bool
	} else {
		p.InStock = p.Stock > 0
	}
	return p.Normalize(), nil
}
