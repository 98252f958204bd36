// internal/domain/product/repository_port.go
package product

import "context"

// Catalog is the read port to the product catalog.
//
// Contract:
// - unknown id -> ErrNotFound (never a zero Product with nil error)
// - transport / backend failures are returned as-is
//
// Callers that only care about availability may treat every error the same.
type Catalog interface {
	GetProductByID(ctx context.Context, id string) (Product, error)
}

// CatalogFunc adapts a function to Catalog.
type CatalogFunc func(ctx context.Context, id string) (Product, error)

func (f CatalogFunc) GetProductByID(ctx context.Context, id string) (Product, error) {
	return f(ctx, id)
}
