// Package phorest is a client for the Phorest salon-booking API.
// All list endpoints are paginated with a HAL-style "_embedded"
// envelope; the client follows the page metadata until every page of
// a listing has been retrieved.
package phorest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("phorest")

const (
	pageSize        = 100
	clientBatchSize = 100
)

// Config holds the credential pair and addressing for the booking API.
// All four values must be present before any call is attempted.
type Config struct {
	APIURL     string
	BusinessID string
	Username   string
	Password   string
}

// Client wraps authenticated paginated HTTP calls to the booking API.
// Calls are never retried: a non-2xx response is fatal to the fetch
// that issued it and surfaces the upstream status and body.
type Client struct {
	httpClient *http.Client
	cfg        Config
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a booking API client.
func NewClient(httpClient *http.Client, cfg Config, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		cb:         cb,
		bulkhead:   bulkhead,
		metrics:    metrics,
		logger:     logger,
	}
}

// checkConfigured fails fast, before any network call, when any of the
// four credential values is absent.
func (c *Client) checkConfigured() error {
	var missing []string
	if c.cfg.APIURL == "" {
		missing = append(missing, "PHOREST_API_URL")
	}
	if c.cfg.BusinessID == "" {
		missing = append(missing, "PHOREST_BUSINESS_ID")
	}
	if c.cfg.Username == "" {
		missing = append(missing, "PHOREST_USERNAME")
	}
	if c.cfg.Password == "" {
		missing = append(missing, "PHOREST_PASSWORD")
	}
	if len(missing) > 0 {
		return &domain.ErrNotConfigured{Service: "phorest", Missing: missing}
	}
	return nil
}

// Configured reports whether the credential pair is fully present.
// Used by the health endpoint.
func (c *Client) Configured() bool {
	return c.checkConfigured() == nil
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("%s/api/business/%s", strings.TrimRight(c.cfg.APIURL, "/"), c.cfg.BusinessID)
}

// get issues one authenticated GET. Concurrency across all callers is
// bounded by the shared bulkhead; the circuit breaker opens after
// repeated upstream failures. There is no retry.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	body, err := c.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+path, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
		req.Header.Set("Accept", "application/json")

		c.metrics.IncrUpstreamRequest("phorest")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("phorest: request failed",
				zap.String("path", path),
				zap.Error(err),
			)
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("phorest: non-2xx response",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(raw)),
			)
			return nil, &domain.ErrUpstream{Service: "phorest", Status: resp.StatusCode, Body: string(raw)}
		}

		return raw, nil
	})
	if err != nil {
		c.metrics.IncrExternalError("phorest")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "phorest"}
		}
		return nil, err
	}

	return body.([]byte), nil
}

// pageEnvelope is the HAL-style page wrapper every listing returns.
type pageEnvelope struct {
	Embedded map[string]json.RawMessage `json:"_embedded"`
	Page     domain.PageMetadata        `json:"page"`
}

// fetchAllPages follows the page-count metadata until all pages of a
// listing are retrieved, concatenating items in arrival order.
func fetchAllPages[T any](ctx context.Context, c *Client, path, embeddedKey string) ([]T, error) {
	var all []T

	page := 0
	totalPages := 1
	for page < totalPages {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		raw, err := c.get(ctx, fmt.Sprintf("%s%spage=%d&size=%d", path, sep, page, pageSize))
		if err != nil {
			return nil, err
		}

		var env pageEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode %s page %d: %w", embeddedKey, page, err)
		}

		if itemsRaw, ok := env.Embedded[embeddedKey]; ok {
			var items []T
			if err := json.Unmarshal(itemsRaw, &items); err != nil {
				return nil, fmt.Errorf("decode %s items: %w", embeddedKey, err)
			}
			all = append(all, items...)
		}

		totalPages = env.Page.TotalPages
		page++
	}

	return all, nil
}

// FetchBranches retrieves all branches of the business.
func (c *Client) FetchBranches(ctx context.Context) ([]domain.Branch, error) {
	ctx, span := tracer.Start(ctx, "Phorest.FetchBranches")
	defer span.End()

	return fetchAllPages[domain.Branch](ctx, c, "/branch", "branches")
}

// FetchStaff retrieves all staff members of one branch.
func (c *Client) FetchStaff(ctx context.Context, branchID string) ([]domain.Staff, error) {
	ctx, span := tracer.Start(ctx, "Phorest.FetchStaff")
	defer span.End()
	span.SetAttributes(attribute.String("branch.id", branchID))

	return fetchAllPages[domain.Staff](ctx, c, fmt.Sprintf("/branch/%s/staff", branchID), "staffs")
}

// FetchAppointments retrieves a branch's appointments in [fromDate,
// toDate]. The API rejects ranges longer than one month, so the range
// is split into monthly sub-ranges and fetched one sub-range at a time.
func (c *Client) FetchAppointments(ctx context.Context, branchID, fromDate, toDate string) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Phorest.FetchAppointments")
	defer span.End()
	span.SetAttributes(
		attribute.String("branch.id", branchID),
		attribute.String("range.from", fromDate),
		attribute.String("range.to", toDate),
	)

	chunks, err := SplitMonthlyRanges(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	var all []domain.Appointment
	for _, chunk := range chunks {
		path := fmt.Sprintf("/branch/%s/appointment?from_date=%s&to_date=%s", branchID, chunk.From, chunk.To)
		appointments, err := fetchAllPages[domain.Appointment](ctx, c, path, "appointments")
		if err != nil {
			return nil, err
		}
		all = append(all, appointments...)
	}

	return all, nil
}

// FetchClientsBatch retrieves full client records for the given ids.
// The client-batch endpoint accepts at most 100 ids per call, so the
// list is partitioned and fetched one batch at a time. Returned order
// is whatever the API sends back.
func (c *Client) FetchClientsBatch(ctx context.Context, clientIDs []string) ([]domain.Client, error) {
	ctx, span := tracer.Start(ctx, "Phorest.FetchClientsBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("client.count", len(clientIDs)))

	if len(clientIDs) == 0 {
		return nil, nil
	}

	var all []domain.Client
	for _, batch := range chunkIDs(clientIDs, clientBatchSize) {
		params := url.Values{}
		for _, id := range batch {
			params.Add("client_id", id)
		}
		clients, err := fetchAllPages[domain.Client](ctx, c, "/client-batch?"+params.Encode(), "clients")
		if err != nil {
			return nil, err
		}
		all = append(all, clients...)
	}

	return all, nil
}
