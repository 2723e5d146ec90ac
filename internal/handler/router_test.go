package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/handler"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/cache"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/service"

	"go.uber.org/zap"
)

type stubBookingAPI struct{}

func (stubBookingAPI) FetchBranches(_ context.Context) ([]domain.Branch, error) {
	return []domain.Branch{{BranchID: "br-1", Name: "Downtown"}}, nil
}

func (stubBookingAPI) FetchStaff(_ context.Context, _ string) ([]domain.Staff, error) {
	return []domain.Staff{{StaffID: "st-1", FirstName: "Maria", LastName: "Lopez"}}, nil
}

func (stubBookingAPI) FetchAppointments(_ context.Context, _, _, _ string) ([]domain.Appointment, error) {
	price := 100.0
	return []domain.Appointment{
		{AppointmentID: "ap-1", ClientID: "cl-1", StaffID: "st-1", AppointmentDate: "2024-01-10T10:00:00Z", Price: &price},
	}, nil
}

func (stubBookingAPI) FetchClientsBatch(_ context.Context, _ []string) ([]domain.Client, error) {
	return []domain.Client{{ClientID: "cl-1", FirstName: "Anna", LastName: "Berg", FirstVisit: "2024-01-10"}}, nil
}

func newTestRouter() http.Handler {
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	commission := service.NewCommissionService(
		stubBookingAPI{},
		cache.New[*domain.CommissionReport](time.Minute),
		metrics,
		logger,
	)
	return handler.NewRouter(handler.Dependencies{
		Commission:         commission,
		SupabaseConfigured: func() bool { return true },
		BookingConfigured:  func() bool { return true },
		Metrics:            metrics,
		Logger:             logger,
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("invalid healthz body: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %q", health.Status)
	}
}

func TestHealthz_ReportsDegradedDependencies(t *testing.T) {
	router := handler.NewRouter(handler.Dependencies{
		SupabaseConfigured: func() bool { return false },
		BookingConfigured:  func() bool { return true },
		Metrics:            observability.NewMetrics(),
		Logger:             zap.NewNop(),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("invalid healthz body: %v", err)
	}
	if health.Status != "degraded" {
		t.Errorf("expected degraded, got %q", health.Status)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/snapshot", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var snapshot domain.OpsSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("invalid snapshot body: %v", err)
	}
}

func TestCommissionReport_Success(t *testing.T) {
	router := newTestRouter()

	body := strings.NewReader(`{"startDate":"2024-01-01","endDate":"2024-01-31"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/commissions", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report domain.CommissionReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("invalid report body: %v", err)
	}
	if report.TotalCommission != 20.00 {
		t.Errorf("expected total 20.00, got %v", report.TotalCommission)
	}
}

func TestCommissionReport_MissingDates(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/commissions", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCommissionReport_InvalidRange(t *testing.T) {
	router := newTestRouter()

	body := strings.NewReader(`{"startDate":"2024-02-01","endDate":"2024-01-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/commissions", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
