// internal/adapters/out/memory/static_catalog.go
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	productdom "primepicks/internal/domain/product"
)

// StaticCatalog is a fixed product set held in memory.
// Used for local runs (CATALOG_BACKEND=static) and tests.
type StaticCatalog struct {
	mu       sync.RWMutex
	products map[string]productdom.Product
}

func NewStaticCatalog(products ...productdom.Product) *StaticCatalog {
	c := &StaticCatalog{products: map[string]productdom.Product{}}
	for _, p := range products {
		c.Put(p)
	}
	return c
}

// LoadStaticCatalog reads a JSON array of products from path.
func LoadStaticCatalog(path string) (*StaticCatalog, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, fmt.Errorf("static_catalog: path is empty")
	}

	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("static_catalog: read %s: %w", p, err)
	}

	var products []productdom.Product
	if err := json.Unmarshal(b, &products); err != nil {
		return nil, fmt.Errorf("static_catalog: decode %s: %w", p, err)
	}
	return NewStaticCatalog(products...), nil
}

// Put inserts or replaces a product. Entries without id are ignored.
func (c *StaticCatalog) Put(p productdom.Product) {
	p = p.Normalize()
	if p.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

// Len reports how many products were loaded.
func (c *StaticCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

func (c *StaticCatalog) GetProductByID(ctx context.Context, id string) (productdom.Product, error) {
	if err := ctx.Err(); err != nil {
		return productdom.Product{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[strings.TrimSpace(id)]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}
