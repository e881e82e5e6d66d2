// Package blob wraps the external object-storage gateway. The service only
// ever deletes objects (cleaning up uploaded source spreadsheets after a
// wildcard deletion); uploads happen in the client before import is called.
package blob

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wms-platform/production-service/pkg/resilience"
)

// Store deletes stored objects by path. Deleting a missing object is not an error.
type Store interface {
	DeleteObject(ctx context.Context, path string) error
}

// Config holds blob gateway configuration
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:    baseURL,
		Timeout:    10 * time.Second,
		RetryCount: 2,
	}
}

// HTTPStore is a resty-backed implementation of Store talking to the storage gateway.
type HTTPStore struct {
	httpClient *resty.Client
	breaker    *resilience.CircuitBreaker
}

// NewHTTPStore creates a new HTTPStore
func NewHTTPStore(config *Config, logger *slog.Logger) *HTTPStore {
	restyClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetHeader("Accept", "application/json")

	if config.APIKey != "" {
		restyClient.SetHeader("Authorization", "Bearer "+config.APIKey)
	}

	return &HTTPStore{
		httpClient: restyClient,
		breaker:    resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("blob-store"), logger),
	}
}

// DeleteObject removes the object at path. A 404 from the gateway is treated
// as success so the call stays idempotent.
func (s *HTTPStore) DeleteObject(ctx context.Context, path string) error {
	_, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		resp, err := s.httpClient.R().
			SetContext(ctx).
			SetQueryParam("path", path).
			Delete("/objects")
		if err != nil {
			return nil, err
		}

		if resp.StatusCode() == http.StatusNotFound {
			return nil, nil
		}
		if resp.IsError() {
			return nil, fmt.Errorf("blob gateway returned %d for %s", resp.StatusCode(), path)
		}
		return nil, nil
	})
	return err
}
