package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/cache"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockBookingAPI struct {
	branches     []domain.Branch
	staff        map[string][]domain.Staff
	appointments map[string][]domain.Appointment
	clients      []domain.Client

	branchesErr     error
	staffErr        error
	appointmentsErr error
	clientsErr      error

	fetchCalls int
}

func (m *mockBookingAPI) FetchBranches(_ context.Context) ([]domain.Branch, error) {
	m.fetchCalls++
	return m.branches, m.branchesErr
}

func (m *mockBookingAPI) FetchStaff(_ context.Context, branchID string) ([]domain.Staff, error) {
	return m.staff[branchID], m.staffErr
}

func (m *mockBookingAPI) FetchAppointments(_ context.Context, branchID, _, _ string) ([]domain.Appointment, error) {
	return m.appointments[branchID], m.appointmentsErr
}

func (m *mockBookingAPI) FetchClientsBatch(_ context.Context, _ []string) ([]domain.Client, error) {
	return m.clients, m.clientsErr
}

func newBookingFixture() *mockBookingAPI {
	return &mockBookingAPI{
		branches: []domain.Branch{{BranchID: "br-1", Name: "Downtown"}},
		staff: map[string][]domain.Staff{
			"br-1": {{StaffID: "st-1", FirstName: "Maria", LastName: "Lopez"}},
		},
		appointments: map[string][]domain.Appointment{
			"br-1": {
				{AppointmentID: "ap-1", ClientID: "cl-1", StaffID: "st-1", AppointmentDate: "2024-01-10T10:00:00Z", Price: price(100)},
			},
		},
		clients: []domain.Client{
			{ClientID: "cl-1", FirstName: "Anna", LastName: "Berg", FirstVisit: "2024-01-10"},
		},
	}
}

func newCommissionService(booking *mockBookingAPI) *service.CommissionService {
	return service.NewCommissionService(
		booking,
		cache.New[*domain.CommissionReport](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

// --- Tests ---

func TestGetReport_Success(t *testing.T) {
	svc := newCommissionService(newBookingFixture())

	report, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.TotalCommission != 20.00 {
		t.Errorf("expected total commission 20.00, got %v", report.TotalCommission)
	}
	if report.TotalNewClients != 1 {
		t.Errorf("expected 1 new client, got %d", report.TotalNewClients)
	}
}

func TestGetReport_ServesSecondCallFromCache(t *testing.T) {
	booking := newBookingFixture()
	svc := newCommissionService(booking)
	req := &domain.CommissionReportRequest{StartDate: "2024-01-01", EndDate: "2024-01-31"}

	first, err := svc.GetReport(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.GetReport(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if booking.fetchCalls != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", booking.fetchCalls)
	}
	if first.FetchedAt != second.FetchedAt {
		t.Error("expected the cached report instance on the second call")
	}
}

func TestGetReport_ForceRefreshBypassesCache(t *testing.T) {
	booking := newBookingFixture()
	svc := newCommissionService(booking)

	if _, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-31",
	}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-31", ForceRefresh: true,
	}); err != nil {
		t.Fatalf("refresh call: %v", err)
	}

	if booking.fetchCalls != 2 {
		t.Errorf("expected 2 upstream fetches, got %d", booking.fetchCalls)
	}
}

func TestGetReport_DifferentRangesCacheSeparately(t *testing.T) {
	booking := newBookingFixture()
	svc := newCommissionService(booking)

	if _, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-31",
	}); err != nil {
		t.Fatalf("january: %v", err)
	}
	if _, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-02-01", EndDate: "2024-02-29",
	}); err != nil {
		t.Fatalf("february: %v", err)
	}

	if booking.fetchCalls != 2 {
		t.Errorf("expected a fetch per range, got %d", booking.fetchCalls)
	}
}

func TestGetReport_InvalidDates(t *testing.T) {
	svc := newCommissionService(newBookingFixture())

	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"malformed start", "01/01/2024", "2024-01-31"},
		{"malformed end", "2024-01-01", "Jan 31"},
		{"end before start", "2024-02-01", "2024-01-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
				StartDate: tc.start,
				EndDate:   tc.end,
			})
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetReport_BranchFetchError(t *testing.T) {
	booking := newBookingFixture()
	booking.branchesErr = &domain.ErrUpstream{Service: "phorest", Status: 502, Body: "bad gateway"}
	svc := newCommissionService(booking)

	_, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-31",
	})
	var uerr *domain.ErrUpstream
	if !errors.As(err, &uerr) {
		t.Fatalf("expected upstream error to propagate, got %v", err)
	}
}

func TestGetReport_AppointmentsErrorFailsWholeReport(t *testing.T) {
	booking := newBookingFixture()
	booking.appointmentsErr = errors.New("connection reset")
	svc := newCommissionService(booking)

	_, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-31",
	})
	if err == nil {
		t.Fatal("expected error, got report")
	}
}

func TestGetReport_ClientsErrorFailsWholeReport(t *testing.T) {
	booking := newBookingFixture()
	booking.clientsErr = errors.New("connection reset")
	svc := newCommissionService(booking)

	_, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-31",
	})
	if err == nil {
		t.Fatal("expected error, got report")
	}

	// The failed computation must not poison the cache.
	booking.clientsErr = nil
	report, err := svc.GetReport(context.Background(), &domain.CommissionReportRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-31",
	})
	if err != nil {
		t.Fatalf("expected recovery after upstream heals, got %v", err)
	}
	if report.TotalNewClients != 1 {
		t.Errorf("expected 1 new client, got %d", report.TotalNewClients)
	}
}
