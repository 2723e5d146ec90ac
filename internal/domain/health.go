package domain

// ============================================================
// Health & ops API responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// OpsSnapshot is returned by GET /v1/metrics/snapshot.
type OpsSnapshot struct {
	TotalReports     int64   `json:"totalReports"`
	ErrorRate        float64 `json:"errorRate"`
	CacheHitRate     float64 `json:"cacheHitRate"`
	UpstreamErrors   int64   `json:"upstreamErrors"`
	UpstreamRequests int64   `json:"upstreamRequests"`
	Period           string  `json:"period"`
}

// SuccessResponse wraps a successful mutation with no body to return.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
