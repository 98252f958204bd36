// internal/infra/secrets/secret_manager.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrSecretNotConfigured = errors.New("secret_manager: not configured")
	ErrSecretNotFound      = errors.New("secret_manager: secret not found")
	ErrSecretEmpty         = errors.New("secret_manager: secret payload is empty")
)

// accessor is the subset of the Secret Manager client we call.
type accessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// SecretManager reads secret payloads (e.g. the catalog API key).
type SecretManager struct {
	client    accessor
	closer    func() error
	ProjectID string
}

func NewSecretManager(ctx context.Context, projectID string) (*SecretManager, error) {
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		return nil, fmt.Errorf("%w: projectID is empty", ErrSecretNotConfigured)
	}

	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secret_manager: new client: %w", err)
	}
	return &SecretManager{client: c, closer: c.Close, ProjectID: pid}, nil
}

// ResourceName expands a short secret id to its "latest" version name.
// Full names (projects/.../versions/...) are returned unchanged.
func (m *SecretManager) ResourceName(secret string) string {
	s := strings.TrimSpace(secret)
	if strings.HasPrefix(s, "projects/") {
		if !strings.Contains(s, "/versions/") {
			return s + "/versions/latest"
		}
		return s
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", m.ProjectID, s)
}

// Access returns the payload of secret, trimmed.
func (m *SecretManager) Access(ctx context.Context, secret string) (string, error) {
	if m == nil || m.client == nil {
		return "", ErrSecretNotConfigured
	}
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("%w: secret name is empty", ErrSecretNotConfigured)
	}

	name := m.ResourceName(secret)
	res, err := m.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("secret_manager: access %s: %w", name, err)
	}
	if res == nil || res.GetPayload() == nil {
		return "", fmt.Errorf("%w: %s", ErrSecretEmpty, name)
	}

	v := strings.TrimSpace(string(res.GetPayload().GetData()))
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretEmpty, name)
	}
	return v, nil
}

func (m *SecretManager) Close() error {
	if m == nil || m.closer == nil {
		return nil
	}
	return m.closer()
}
