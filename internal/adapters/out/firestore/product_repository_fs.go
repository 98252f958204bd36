// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "primepicks/internal/domain/product"
)

const defaultProductsCollection = "products"

// ImageResolver maps a stored image reference to a display URL.
type ImageResolver interface {
	Resolve(stored string) string
}

// ProductCatalogFS implements product.Catalog on Firestore.
//
// Collection design:
// - collection: products (configurable)
// - docId: productId
// - fields: name|title, brand, price, imagePath|image, thumbnail, stock, inStock
type ProductCatalogFS struct {
	Client     *firestore.Client
	Collection string
	Images     ImageResolver
}

func NewProductCatalogFS(client *firestore.Client, collection string, images ImageResolver) *ProductCatalogFS {
	col := strings.TrimSpace(collection)
	if col == "" {
		col = defaultProductsCollection
	}
	return &ProductCatalogFS{Client: client, Collection: col, Images: images}
}

func (r *ProductCatalogFS) col() *firestore.CollectionRef {
	return r.Client.Collection(r.Collection)
}

// GetProductByID returns product.ErrNotFound when the doc does not exist.
func (r *ProductCatalogFS) GetProductByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errors.New("product_catalog_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}

	snap, err := r.col().Doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, fmt.Errorf("%w: id=%q", productdom.ErrNotFound, pid)
		}
		return productdom.Product{}, err
	}
	if snap == nil || !snap.Exists() {
		return productdom.Product{}, fmt.Errorf("%w: id=%q", productdom.ErrNotFound, pid)
	}

	return productFromData(pid, snap.Data(), r.Images), nil
}

// productFromData decodes a products doc. Field shapes are parsed best-effort
// so older docs (title instead of name, price stored as string) still decode.
func productFromData(id string, raw map[string]any, images ImageResolver) productdom.Product {
	p := productdom.Product{ID: id}
	if raw == nil {
		return p.Normalize()
	}

	p.Name = firstString(raw, "name", "title")
	p.Brand = firstString(raw, "brand")
	if d, ok := asDecimal(raw["price"]); ok {
		p.Price = d
	}
	p.Stock = asInt(raw["stock"])

	if b, ok := asBool(raw["inStock"]); ok {
		p.InStock = b
	} else {
		p.InStock = p.Stock > 0
	}

	image := firstString(raw, "imagePath", "image")
	thumb := firstString(raw, "thumbnailPath", "thumbnail")
	if images != nil {
		image = images.Resolve(image)
		thumb = images.Resolve(thumb)
	}
	p.Image = image
	p.Thumbnail = thumb

	return p.Normalize()
}
