// internal/adapters/out/gcs/image_url_resolver.go
package gcs

import (
	"log"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	gcscommon "primepicks/internal/adapters/out/gcs/common"
)

const defaultProductImageBucket = "primepicks-product-images"

// signFunc returns a signed GET URL for bucket/object valid until expires.
type signFunc func(bucket, object string, expires time.Time) (string, error)

// ImageURLResolver turns stored product image references into URLs for cart views.
//
// stored can be:
// - http(s)://... (returned as-is unless it is a GCS URL and signing is enabled)
// - gs://bucket/object or https://storage.googleapis.com/... (parsed)
// - objectPath (treated as object path within Bucket)
//
// With a TTL and a storage client, GCS objects are returned as V4 signed URLs;
// otherwise as public URLs.
type ImageURLResolver struct {
	Bucket string
	TTL    time.Duration

	sign signFunc
	now  func() time.Time
}

func NewImageURLResolver(bucket string) *ImageURLResolver {
	return &ImageURLResolver{
		Bucket: strings.TrimSpace(bucket),
		now:    time.Now,
	}
}

// NewSignedImageURLResolver signs object URLs with the given client.
// ttl <= 0 disables signing.
func NewSignedImageURLResolver(client *storage.Client, bucket string, ttl time.Duration) *ImageURLResolver {
	r := NewImageURLResolver(bucket)
	if client == nil || ttl <= 0 {
		return r
	}
	r.TTL = ttl
	r.sign = func(b, obj string, expires time.Time) (string, error) {
		return client.Bucket(b).SignedURL(obj, &storage.SignedURLOptions{
			Scheme:  storage.SigningSchemeV4,
			Method:  http.MethodGet,
			Expires: expires,
		})
	}
	return r
}

// Resolve returns a URL for stored, or "" when stored is empty.
func (r *ImageURLResolver) Resolve(stored string) string {
	p := strings.TrimSpace(stored)
	if p == "" {
		return ""
	}

	bucket, obj, isGCS := gcscommon.ParseGCSURL(p)
	if !isGCS {
		// absolute non-GCS URL
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			return p
		}
		bucket = r.bucket()
		obj = strings.TrimLeft(p, "/")
	}

	if r != nil && r.sign != nil && r.TTL > 0 {
		now := time.Now
		if r.now != nil {
			now = r.now
		}
		u, err := r.sign(bucket, obj, now().Add(r.TTL))
		if err == nil {
			return u
		}
		log.Printf("[gcs_image_resolver] WARN: sign failed bucket=%q object=%q err=%v (falling back to public url)", bucket, obj, err)
	}

	return gcscommon.GCSPublicURL(bucket, obj, defaultProductImageBucket)
}

func (r *ImageURLResolver) bucket() string {
	if r == nil || strings.TrimSpace(r.Bucket) == "" {
		return defaultProductImageBucket
	}
	return strings.TrimSpace(r.Bucket)
}
