// internal/infra/storage/client.go
package storageinfra

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ClientWrapper wraps the GCS client used for product image URLs.
type ClientWrapper struct {
	Client *storage.Client
}

// NewClient は GCS クライアントを初期化します。
// credentialsFile が空文字の場合、ADC を使用します。
func NewClient(ctx context.Context, credentialsFile string) (*ClientWrapper, error) {
	var opts []option.ClientOption
	if cf := strings.TrimSpace(credentialsFile); cf != "" {
		opts = append(opts, option.WithCredentialsFile(cf))
	}

	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	log.Printf("[gcs] storage client ready")
	return &ClientWrapper{Client: c}, nil
}

func (cw *ClientWrapper) Close() error {
	if cw == nil || cw.Client == nil {
		return nil
	}
	return cw.Client.Close()
}
