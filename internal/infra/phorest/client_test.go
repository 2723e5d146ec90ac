package phorest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/phorest"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/resilience"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, serverURL string) *phorest.Client {
	t.Helper()
	return phorest.NewClient(
		&http.Client{Timeout: 5 * time.Second},
		phorest.Config{
			APIURL:     serverURL,
			BusinessID: "biz-1",
			Username:   "user",
			Password:   "pass",
		},
		resilience.NewCircuitBreaker("phorest-test"),
		resilience.NewBulkhead(4),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func writePage(w http.ResponseWriter, embeddedKey string, items any, page, totalPages int) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"_embedded": map[string]any{embeddedKey: items},
		"page": domain.PageMetadata{
			Size:       100,
			TotalPages: totalPages,
			Number:     page,
		},
	})
}

func TestFetchBranches_FollowsAllPages(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if user, pass, ok := r.BasicAuth(); !ok || user != "user" || pass != "pass" {
			t.Errorf("expected basic auth user/pass, got %q/%q", user, pass)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		branches := []domain.Branch{{BranchID: fmt.Sprintf("b-%d", page), Name: fmt.Sprintf("Branch %d", page)}}
		writePage(w, "branches", branches, page, 3)
	}))
	defer server.Close()

	branches, err := newTestClient(t, server.URL).FetchBranches(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if calls != 3 {
		t.Errorf("expected 3 page fetches, got %d", calls)
	}
	if len(branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(branches))
	}
	// Items concatenate in arrival order.
	for i, b := range branches {
		if b.BranchID != fmt.Sprintf("b-%d", i) {
			t.Errorf("expected branch b-%d at index %d, got %s", i, i, b.BranchID)
		}
	}
}

func TestFetchAppointments_SplitsLongRangeIntoMonthlyCalls(t *testing.T) {
	var ranges []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ranges = append(ranges, r.URL.Query().Get("from_date")+".."+r.URL.Query().Get("to_date"))
		writePage(w, "appointments", []domain.Appointment{}, 0, 1)
	}))
	defer server.Close()

	// 95-day range: 2024-01-01 .. 2024-04-04
	_, err := newTestClient(t, server.URL).FetchAppointments(context.Background(), "b-1", "2024-01-01", "2024-04-04")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(ranges) < 4 {
		t.Fatalf("expected at least 4 sub-range calls for a 95-day range, got %d: %v", len(ranges), ranges)
	}

	// Contiguous, non-overlapping, full coverage.
	prevEnd := ""
	for i, rg := range ranges {
		var from, to string
		fmt.Sscanf(rg, "%10s..%10s", &from, &to)
		fromT, _ := time.Parse("2006-01-02", from)
		toT, _ := time.Parse("2006-01-02", to)

		if i == 0 && from != "2024-01-01" {
			t.Errorf("first sub-range must start at the requested start date, got %s", from)
		}
		if i > 0 {
			prev, _ := time.Parse("2006-01-02", prevEnd)
			if !fromT.Equal(prev.AddDate(0, 0, 1)) {
				t.Errorf("sub-range %d starts %s, expected day after %s", i, from, prevEnd)
			}
		}
		if days := int(toT.Sub(fromT).Hours()/24) + 1; days > 31 {
			t.Errorf("sub-range %d spans %d days, exceeds one month", i, days)
		}
		prevEnd = to
	}
	if prevEnd != "2024-04-04" {
		t.Errorf("last sub-range must end at the requested end date, got %s", prevEnd)
	}
}

func TestSplitMonthlyRanges_SingleDay(t *testing.T) {
	ranges, err := phorest.SplitMonthlyRanges("2024-06-15", "2024-06-15")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}
	if ranges[0].From != "2024-06-15" || ranges[0].To != "2024-06-15" {
		t.Errorf("unexpected range %+v", ranges[0])
	}
}

func TestSplitMonthlyRanges_EndBeforeStart(t *testing.T) {
	_, err := phorest.SplitMonthlyRanges("2024-06-15", "2024-06-01")

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetchClientsBatch_ChunksAtOneHundredIDs(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["client_id"]
		batchSizes = append(batchSizes, len(ids))

		clients := make([]domain.Client, 0, len(ids))
		for _, id := range ids {
			clients = append(clients, domain.Client{ClientID: id})
		}
		writePage(w, "clients", clients, 0, 1)
	}))
	defer server.Close()

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("client-%03d", i)
	}

	clients, err := newTestClient(t, server.URL).FetchClientsBatch(context.Background(), ids)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(batchSizes) != 3 {
		t.Fatalf("expected 3 batch calls, got %d", len(batchSizes))
	}
	if batchSizes[0] != 100 || batchSizes[1] != 100 || batchSizes[2] != 50 {
		t.Errorf("expected batches of 100, 100, 50, got %v", batchSizes)
	}

	seen := make(map[string]bool, len(clients))
	for _, cl := range clients {
		if seen[cl.ClientID] {
			t.Errorf("client id %s returned twice", cl.ClientID)
		}
		seen[cl.ClientID] = true
	}
	if len(clients) != 250 {
		t.Errorf("expected 250 clients, got %d", len(clients))
	}
}

func TestFetchClientsBatch_EmptyInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no call expected for empty id list")
	}))
	defer server.Close()

	clients, err := newTestClient(t, server.URL).FetchClientsBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(clients) != 0 {
		t.Errorf("expected no clients, got %d", len(clients))
	}
}

func TestFetchBranches_MissingCredentialsFailsBeforeNetwork(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := phorest.NewClient(
		&http.Client{Timeout: time.Second},
		phorest.Config{APIURL: server.URL}, // business id + credentials absent
		resilience.NewCircuitBreaker("phorest-noconf"),
		resilience.NewBulkhead(1),
		observability.NewMetrics(),
		zap.NewNop(),
	)

	_, err := c.FetchBranches(context.Background())

	var notConfigured *domain.ErrNotConfigured
	if !errors.As(err, &notConfigured) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no network calls on missing config, got %d", calls)
	}
}

func TestFetchStaff_UpstreamErrorCarriesStatusAndBody_NoRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"upstream exploded"}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).FetchStaff(context.Background(), "b-1")

	var upstream *domain.ErrUpstream
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if upstream.Status != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", upstream.Status)
	}
	if upstream.Body == "" {
		t.Error("expected response body on upstream error")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call (no retry), got %d", calls)
	}
}
