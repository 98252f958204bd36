// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	dbadapter "primepicks/internal/adapters/out/db"
	fsadapter "primepicks/internal/adapters/out/firestore"
	gcsadapter "primepicks/internal/adapters/out/gcs"
	httpout "primepicks/internal/adapters/out/http"
	"primepicks/internal/adapters/out/memory"
	"primepicks/internal/application/query"
	"primepicks/internal/application/usecase"
	productdom "primepicks/internal/domain/product"
	"primepicks/internal/infra/config"
	"primepicks/internal/infra/database"
	firestoreinfra "primepicks/internal/infra/firestore"
	"primepicks/internal/infra/secrets"
	storageinfra "primepicks/internal/infra/storage"
	"primepicks/internal/platform/metrics"
)

// Container は main.go から使う依存オブジェクトの束。
type Container struct {
	Config   *config.Config
	Catalog  productdom.Catalog
	Store    *usecase.CartStore
	Query    *query.CartQuery
	Metrics  *metrics.CartMetrics
	Registry *prometheus.Registry

	cleanupFn []func()
}

// Close releases clients in reverse construction order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.cleanupFn) - 1; i >= 0; i-- {
		c.cleanupFn[i]()
	}
	c.cleanupFn = nil
}

// Build wires config -> catalog -> metrics -> store -> query.
func Build(ctx context.Context, cfg *config.Config, opts ...usecase.CartStoreOption) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("di: config is nil")
	}

	c := &Container{Config: cfg, Registry: prometheus.NewRegistry()}

	catalog, err := c.buildCatalog(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Catalog = catalog

	var store *usecase.CartStore
	c.Metrics = metrics.NewCartMetrics(c.Registry, func() int { return store.CartCount() })

	storeOpts := []usecase.CartStoreOption{usecase.WithObserver(c.Metrics)}
	store = usecase.NewCartStore(catalog, append(storeOpts, opts...)...)
	c.Store = store

	c.Query = query.NewCartQuery(store, catalog,
		query.WithViewObserver(c.Metrics),
		query.WithEnrichConcurrency(cfg.EnrichConcurrency),
	)

	log.Printf("[di] cart store ready catalog=%s (%T)", cfg.CatalogBackend, catalog)
	return c, nil
}

func (c *Container) buildCatalog(ctx context.Context) (productdom.Catalog, error) {
	cfg := c.Config

	switch cfg.CatalogBackend {
	case config.CatalogStatic:
		sc, err := memory.LoadStaticCatalog(cfg.CatalogStaticFile)
		if err != nil {
			return nil, err
		}
		log.Printf("[di] static catalog loaded file=%q products=%d", cfg.CatalogStaticFile, sc.Len())
		return sc, nil

	case config.CatalogHTTP:
		apiKey, err := c.catalogAPIKey(ctx)
		if err != nil {
			return nil, err
		}
		return httpout.NewCatalogClient(cfg.CatalogBaseURL, apiKey, cfg.CatalogTimeout), nil

	case config.CatalogFirestore:
		fs, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, err
		}
		c.cleanupFn = append(c.cleanupFn, func() { _ = fs.Close() })
		if err := fs.Ping(ctx, cfg.ProductsCollection); err != nil {
			log.Printf("[di] WARN: firestore ping failed collection=%q err=%v", cfg.ProductsCollection, err)
		}

		images, err := c.imageResolver(ctx)
		if err != nil {
			return nil, err
		}
		return fsadapter.NewProductCatalogFS(fs.Client, cfg.ProductsCollection, images), nil

	case config.CatalogPostgres:
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.cleanupFn = append(c.cleanupFn, func() { _ = db.Close() })
		return dbadapter.NewProductCatalogPG(db.Client), nil
	}

	return nil, fmt.Errorf("di: unknown catalog backend %q", cfg.CatalogBackend)
}

// catalogAPIKey prefers CATALOG_API_KEY, then CATALOG_API_KEY_SECRET from Secret Manager.
func (c *Container) catalogAPIKey(ctx context.Context) (string, error) {
	cfg := c.Config
	if cfg.CatalogAPIKey != "" || cfg.CatalogAPIKeySecret == "" {
		return cfg.CatalogAPIKey, nil
	}

	sm, err := secrets.NewSecretManager(ctx, cfg.SecretProjectID())
	if err != nil {
		return "", err
	}
	defer func() { _ = sm.Close() }()

	key, err := sm.Access(ctx, cfg.CatalogAPIKeySecret)
	if err != nil {
		return "", fmt.Errorf("di: catalog api key: %w", err)
	}
	log.Printf("[di] catalog api key loaded from secret manager")
	return key, nil
}

// imageResolver returns a signing resolver when IMAGE_SIGNED_URL_TTL > 0.
func (c *Container) imageResolver(ctx context.Context) (*gcsadapter.ImageURLResolver, error) {
	cfg := c.Config
	if cfg.ImageSignedURLTTL <= 0 {
		return gcsadapter.NewImageURLResolver(cfg.GCSBucket), nil
	}

	sc, err := storageinfra.NewClient(ctx, cfg.GCPCreds)
	if err != nil {
		return nil, err
	}
	c.cleanupFn = append(c.cleanupFn, func() { _ = sc.Close() })
	return gcsadapter.NewSignedImageURLResolver(sc.Client, cfg.GCSBucket, cfg.ImageSignedURLTTL), nil
}
