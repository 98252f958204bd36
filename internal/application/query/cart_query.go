// internal/application/query/cart_query.go
package query

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"primepicks/internal/application/query/dto"
	cartdom "primepicks/internal/domain/cart"
	productdom "primepicks/internal/domain/product"
)

const defaultEnrichConcurrency = 4

// CartReader hands out detached cart snapshots (usecase.CartStore).
type CartReader interface {
	GetOrCreate(identity string) *cartdom.Cart
}

// ViewObserver receives one call per view and one per catalog lookup.
type ViewObserver interface {
	ObserveOperation(op string, err error, elapsed time.Duration)
	ObserveEnrichment(ok bool)
}

type noopViewObserver struct{}

func (noopViewObserver) ObserveOperation(string, error, time.Duration) {}
func (noopViewObserver) ObserveEnrichment(bool)                        {}

// CartQuery is the read model for cart views: stored lines plus live catalog data.
// It never writes to the store; a failed lookup leaves that line unenriched.
type CartQuery struct {
	carts    CartReader
	catalog  productdom.Catalog
	observer ViewObserver
	limit    int
}

type CartQueryOption func(*CartQuery)

func WithViewObserver(o ViewObserver) CartQueryOption {
	return func(q *CartQuery) {
		if o != nil {
			q.observer = o
		}
	}
}

// WithEnrichConcurrency bounds parallel catalog lookups per view.
func WithEnrichConcurrency(n int) CartQueryOption {
	return func(q *CartQuery) {
		if n > 0 {
			q.limit = n
		}
	}
}

func NewCartQuery(carts CartReader, catalog productdom.Catalog, opts ...CartQueryOption) *CartQuery {
	q := &CartQuery{
		carts:    carts,
		catalog:  catalog,
		observer: noopViewObserver{},
		limit:    defaultEnrichConcurrency,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// GetCartView returns the identity's cart with a product view attached per line.
// The snapshot is taken under the store's identity lock; lookups run after it is released.
func (q *CartQuery) GetCartView(ctx context.Context, identity string) dto.EnrichedCart {
	start := time.Now()

	var c *cartdom.Cart
	if q != nil && q.carts != nil {
		c = q.carts.GetOrCreate(identity)
	}
	out := dto.NewEnrichedCart(c)

	if q != nil && q.catalog != nil && len(out.Items) > 0 {
		var g errgroup.Group
		g.SetLimit(q.limit)
		for i := range out.Items {
			g.Go(func() error {
				pid := out.Items[i].ProductID
				p, err := q.catalog.GetProductByID(ctx, pid)
				if err != nil {
					q.observer.ObserveEnrichment(false)
					log.Printf("[cart_query] identity=%q productId=%q enrichment skipped err=%v", maskID(identity), pid, err)
					return nil
				}
				q.observer.ObserveEnrichment(true)
				out.Items[i].Product = dto.NewProductView(p)
				return nil
			})
		}
		_ = g.Wait()
	}

	elapsed := time.Since(start)
	if q != nil {
		q.observer.ObserveOperation("view", nil, elapsed)
	}
	log.Printf("[cart_query] op=view identity=%q lines=%d elapsed=%s", maskID(identity), len(out.Items), elapsed)
	return out
}
