// internal/adapters/out/http/catalog_client.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	productdom "primepicks/internal/domain/product"
)

const defaultCatalogTimeout = 5 * time.Second

// CatalogClient reads products from a REST catalog.
//
// baseURL example:
// - https://dummyjson.com
// - http://localhost:9000
//
// Request: GET {baseURL}/products/{id}
type CatalogClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCatalogClient(baseURL, apiKey string, timeout time.Duration) *CatalogClient {
	if timeout <= 0 {
		timeout = defaultCatalogTimeout
	}
	return &CatalogClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: timeout},
	}
}

// NewCatalogClientWithHTTP is useful for tests (httptest server client).
func NewCatalogClientWithHTTP(baseURL, apiKey string, hc *http.Client) *CatalogClient {
	c := NewCatalogClient(baseURL, apiKey, 0)
	if hc != nil {
		c.client = hc
	}
	return c
}

// GetProductByID implements product.Catalog.
func (c *CatalogClient) GetProductByID(ctx context.Context, id string) (productdom.Product, error) {
	if c == nil || c.client == nil {
		return productdom.Product{}, fmt.Errorf("catalog client is nil")
	}
	if c.baseURL == "" {
		return productdom.Product{}, fmt.Errorf("catalog client baseURL is empty")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}

	endpoint := c.baseURL + "/products/" + url.PathEscape(pid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return productdom.Product{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return productdom.Product{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return productdom.Product{}, err
	}

	switch {
	case res.StatusCode == http.StatusNotFound:
		return productdom.Product{}, fmt.Errorf("%w: id=%q", productdom.ErrNotFound, pid)
	case res.StatusCode != http.StatusOK:
		log.Printf("[catalog_http] error status=%d productId=%q", res.StatusCode, pid)
		return productdom.Product{}, fmt.Errorf("catalog call failed status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc catalogProductDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return productdom.Product{}, fmt.Errorf("catalog decode failed: %w", err)
	}
	p := doc.toDomain()
	if p.ID == "" {
		p.ID = pid
	}
	return p, nil
}

// -----------------------------------------
// wire DTO
// -----------------------------------------

// catalogProductDoc accepts the dummyjson shape (title/images/availabilityStatus)
// and a plain shape (name/image/inStock).
type catalogProductDoc struct {
	ID                 json.RawMessage `json:"id"`
	Title              string          `json:"title"`
	Name               string          `json:"name"`
	Brand              string          `json:"brand"`
	Price              decimal.Decimal `json:"price"`
	Images             []string        `json:"images"`
	Image              string          `json:"image"`
	Thumbnail          string          `json:"thumbnail"`
	Stock              int             `json:"stock"`
	InStock            *bool           `json:"inStock"`
	AvailabilityStatus string          `json:"availabilityStatus"`
}

func (d catalogProductDoc) toDomain() productdom.Product {
	name := d.Title
	if strings.TrimSpace(name) == "" {
		name = d.Name
	}

	image := d.Image
	if strings.TrimSpace(image) == "" && len(d.Images) > 0 {
		image = d.Images[0]
	}

	return productdom.Product{
		ID:        rawID(d.ID),
		Name:      name,
		Brand:     d.Brand,
		Price:     d.Price,
		Image:     image,
		Thumbnail: d.Thumbnail,
		InStock:   d.inStock(),
		Stock:     d.Stock,
	}.Normalize()
}

func (d catalogProductDoc) inStock() bool {
	if d.InStock != nil {
		return *d.InStock
	}
	switch strings.ToLower(strings.TrimSpace(d.AvailabilityStatus)) {
	case "in stock", "low stock":
		return true
	case "out of stock":
		return false
	}
	return d.Stock > 0
}

// rawID renders numeric or string ids as a plain string.
func rawID(raw json.RawMessage) string {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return string(b)
}
