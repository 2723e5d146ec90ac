package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var commissionTracer = otel.Tracer("service/commission")

// CommissionService computes first-visit commission reports from
// booking API data. Reports are cached per date range; a force refresh
// bypasses the cached entry and recomputes.
type CommissionService struct {
	booking port.BookingAPI
	cache   port.Cache[*domain.CommissionReport]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCommissionService creates the commission service with all
// dependencies injected.
func NewCommissionService(
	booking port.BookingAPI,
	cache port.Cache[*domain.CommissionReport],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CommissionService {
	return &CommissionService{
		booking: booking,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

func validateReportRange(req *domain.CommissionReportRequest) error {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return &domain.ErrValidation{Field: "startDate", Message: "expected YYYY-MM-DD"}
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return &domain.ErrValidation{Field: "endDate", Message: "expected YYYY-MM-DD"}
	}
	if end.Before(start) {
		return &domain.ErrValidation{Field: "endDate", Message: "must not precede startDate"}
	}
	return nil
}

// GetReport returns the commission report for the requested range.
// All booking data is fetched fresh (or served from the report cache),
// aggregated in memory, and discarded; nothing is persisted. Any fetch
// failure fails the whole report — there are no partial results.
func (s *CommissionService) GetReport(ctx context.Context, req *domain.CommissionReportRequest) (*domain.CommissionReport, error) {
	ctx, span := commissionTracer.Start(ctx, "CommissionService.GetReport")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.start", req.StartDate),
		attribute.String("report.end", req.EndDate),
		attribute.Bool("report.force_refresh", req.ForceRefresh),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("commission_report", time.Since(start)) }()

	if err := validateReportRange(req); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("commissions:%s:%s", req.StartDate, req.EndDate)
	if !req.ForceRefresh {
		if cached, ok := s.cache.Get(cacheKey); ok {
			s.metrics.IncrCacheHit("commissions")
			return cached, nil
		}
	}
	s.metrics.IncrCacheMiss("commissions")

	report, err := s.computeReport(ctx, req.StartDate, req.EndDate)
	if err != nil {
		s.metrics.IncrReport("error")
		return nil, err
	}
	s.metrics.IncrReport("success")

	s.cache.Set(cacheKey, report)
	return report, nil
}

func (s *CommissionService) computeReport(ctx context.Context, startDate, endDate string) (*domain.CommissionReport, error) {
	branches, err := s.booking.FetchBranches(ctx)
	if err != nil {
		s.logger.Error("failed to fetch branches", zap.Error(err))
		return nil, err
	}

	// Staff and appointments are independent per branch; fan out and
	// keep results indexed so branch order is preserved.
	branchData := make([]domain.BranchData, len(branches))
	g, gCtx := errgroup.WithContext(ctx)
	for i, branch := range branches {
		i, branch := i, branch
		branchData[i].Branch = branch
		g.Go(func() error {
			staff, err := s.booking.FetchStaff(gCtx, branch.BranchID)
			if err != nil {
				s.logger.Error("failed to fetch staff",
					zap.String("branch_id", branch.BranchID),
					zap.Error(err),
				)
				return err
			}
			appointments, err := s.booking.FetchAppointments(gCtx, branch.BranchID, startDate, endDate)
			if err != nil {
				s.logger.Error("failed to fetch appointments",
					zap.String("branch_id", branch.BranchID),
					zap.Error(err),
				)
				return err
			}
			branchData[i].Staff = staff
			branchData[i].Appointments = appointments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Distinct client ids in first-seen order across all branches.
	seen := make(map[string]bool)
	var clientIDs []string
	for _, bd := range branchData {
		for _, appt := range bd.Appointments {
			if appt.ClientID != "" && !seen[appt.ClientID] {
				seen[appt.ClientID] = true
				clientIDs = append(clientIDs, appt.ClientID)
			}
		}
	}

	clients, err := s.booking.FetchClientsBatch(ctx, clientIDs)
	if err != nil {
		s.logger.Error("failed to fetch clients", zap.Int("count", len(clientIDs)), zap.Error(err))
		return nil, err
	}

	report := CalculateCommissions(branchData, clients, startDate, endDate)

	s.logger.Info("commission report computed",
		zap.String("start", startDate),
		zap.String("end", endDate),
		zap.Int("branches", len(report.Branches)),
		zap.Int("new_clients", report.TotalNewClients),
		zap.Float64("total_commission", report.TotalCommission),
	)

	return report, nil
}
