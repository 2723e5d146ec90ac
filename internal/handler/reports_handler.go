package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Commission reports — POST /v1/reports/commissions
// ============================================================

func commissionReportHandler(svc *service.CommissionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/reports/commissions")
		defer span.End()

		var req domain.CommissionReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.StartDate == "" || req.EndDate == "" {
			writeError(w, http.StatusBadRequest, "startDate and endDate are required")
			return
		}
		span.SetAttributes(
			attribute.String("report.start", req.StartDate),
			attribute.String("report.end", req.EndDate),
		)

		report, err := svc.GetReport(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
