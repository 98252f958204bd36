// internal/infra/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Catalog backends.
const (
	CatalogStatic    = "static"
	CatalogHTTP      = "http"
	CatalogFirestore = "firestore"
	CatalogPostgres  = "postgres"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	CatalogBackend      string        `env:"CATALOG_BACKEND" envDefault:"http"`
	CatalogBaseURL      string        `env:"CATALOG_BASE_URL" envDefault:"https://dummyjson.com"`
	CatalogAPIKey       string        `env:"CATALOG_API_KEY"`
	CatalogAPIKeySecret string        `env:"CATALOG_API_KEY_SECRET"`
	CatalogTimeout      time.Duration `env:"CATALOG_TIMEOUT" envDefault:"5s"`
	CatalogStaticFile   string        `env:"CATALOG_STATIC_FILE"`

	GCPProjectID             string `env:"GCP_PROJECT_ID"`
	FirestoreProjectID       string `env:"FIRESTORE_PROJECT_ID"`
	FirestoreCredentialsFile string `env:"FIRESTORE_CREDENTIALS_FILE"`
	ProductsCollection       string `env:"PRODUCTS_COLLECTION" envDefault:"products"`

	DatabaseURL string `env:"DATABASE_URL"`

	GCSBucket         string        `env:"GCS_BUCKET"`
	GCPCreds          string        `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	ImageSignedURLTTL time.Duration `env:"IMAGE_SIGNED_URL_TTL" envDefault:"0s"`

	EnrichConcurrency int    `env:"CART_ENRICH_CONCURRENCY" envDefault:"4"`
	LogFile           string `env:"CART_LOG_FILE"`
}

// Load は環境変数を読み込み Config を返します。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.CatalogBackend = strings.ToLower(strings.TrimSpace(cfg.CatalogBackend))
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)

	// FIRESTORE_PROJECT_ID が未指定なら GCP のデフォルトを使う
	if strings.TrimSpace(cfg.FirestoreProjectID) == "" {
		cfg.FirestoreProjectID = strings.TrimSpace(cfg.GCPProjectID)
	}
	if cfg.EnrichConcurrency <= 0 {
		cfg.EnrichConcurrency = 4
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected catalog backend has what it needs.
func (c *Config) Validate() error {
	switch c.CatalogBackend {
	case CatalogStatic:
		if strings.TrimSpace(c.CatalogStaticFile) == "" {
			return fmt.Errorf("config: CATALOG_STATIC_FILE is required for catalog backend %q", c.CatalogBackend)
		}
	case CatalogHTTP:
		if strings.TrimSpace(c.CatalogBaseURL) == "" {
			return fmt.Errorf("config: CATALOG_BASE_URL is required for catalog backend %q", c.CatalogBackend)
		}
	case CatalogFirestore:
		if strings.TrimSpace(c.FirestoreProjectID) == "" {
			return fmt.Errorf("config: FIRESTORE_PROJECT_ID or GCP_PROJECT_ID is required for catalog backend %q", c.CatalogBackend)
		}
	case CatalogPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("config: DATABASE_URL is required for catalog backend %q", c.CatalogBackend)
		}
	default:
		return fmt.Errorf("config: unknown CATALOG_BACKEND %q", c.CatalogBackend)
	}

	if c.CatalogTimeout <= 0 {
		return fmt.Errorf("config: CATALOG_TIMEOUT must be positive")
	}
	return nil
}

// SecretProjectID は Secret Manager を引く GCP プロジェクト ID を返します。
func (c *Config) SecretProjectID() string {
	if p := strings.TrimSpace(c.GCPProjectID); p != "" {
		return p
	}
	return strings.TrimSpace(c.FirestoreProjectID)
}
