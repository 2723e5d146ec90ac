// Package supabase provides a client for Supabase (PostgREST + Storage).
// It is the data backend for the portfolio tracker: row-level tables for
// projects, requirements, comments and attachments, plus the attachments
// object-storage bucket.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to Supabase PostgREST and Storage.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	bucket         string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewClient creates a Supabase client. bucket names the object-storage
// bucket that attachment files live in.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey, bucket string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		bucket:         bucket,
		cb:             cb,
		cfg:            cfg,
		metrics:        metrics,
		logger:         logger,
	}
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
}

// doGet executes one GET against PostgREST and returns the raw body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	c.setAuthHeaders(req)
	req.Header.Set("Accept", "application/json")

	c.metrics.IncrUpstreamRequest("supabase")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: GET request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: GET non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("supabase GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	return body, nil
}

// getJSON reads a PostgREST path into dest with retry + circuit breaker.
// Only reads go through here; mutations are not replayed.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doGet(ctx, path)
			if err != nil {
				return err
			}
			return json.Unmarshal(body, dest)
		})
	})
	if err != nil {
		c.metrics.IncrExternalError("supabase")
		return &domain.ErrExternalService{Service: "supabase", Err: err}
	}
	return nil
}
