package handler

import (
	"net/http"
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Dependencies carries everything the router needs.
type Dependencies struct {
	Tracker    *service.TrackerService
	Commission *service.CommissionService

	// SupabaseConfigured and BookingConfigured report whether the
	// respective credentials are present; healthz reports them as
	// degraded dependencies rather than failing the whole process.
	SupabaseConfigured func() bool
	BookingConfigured  func() bool

	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract the dashboard frontend consumes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	logger := deps.Logger

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// The dashboard frontend is served from a different origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(deps))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Commission reports
		// POST /v1/reports/commissions
		// =============================================
		r.Post("/reports/commissions", commissionReportHandler(deps.Commission, logger))

		// =============================================
		// Portfolio projects
		// =============================================
		r.Get("/projects", listProjectsHandler(deps.Tracker, logger))
		r.Post("/projects", createProjectHandler(deps.Tracker, logger))
		r.Patch("/projects/{projectId}", updateProjectHandler(deps.Tracker, logger))
		r.Delete("/projects/{projectId}", deleteProjectHandler(deps.Tracker, logger))

		// =============================================
		// Requirements checklist
		// =============================================
		r.Post("/projects/{projectId}/requirements", addRequirementHandler(deps.Tracker, logger))
		r.Post("/projects/{projectId}/requirements/reorder", reorderRequirementsHandler(deps.Tracker, logger))
		r.Patch("/requirements/{requirementId}", updateRequirementHandler(deps.Tracker, logger))
		r.Post("/requirements/{requirementId}/toggle", toggleRequirementHandler(deps.Tracker, logger))
		r.Delete("/requirements/{requirementId}", deleteRequirementHandler(deps.Tracker, logger))
		r.Post("/requirements/bulk/toggle", bulkToggleRequirementsHandler(deps.Tracker, logger))
		r.Post("/requirements/bulk/delete", bulkDeleteRequirementsHandler(deps.Tracker, logger))

		// =============================================
		// Comments
		// =============================================
		r.Post("/projects/{projectId}/comments", addCommentHandler(deps.Tracker, logger))
		r.Delete("/comments/{commentId}", deleteCommentHandler(deps.Tracker, logger))

		// =============================================
		// Attachments
		// =============================================
		r.Post("/projects/{projectId}/attachments", uploadAttachmentHandler(deps.Tracker, logger))
		r.Get("/attachments/{attachmentId}/url", attachmentURLHandler(deps.Tracker, logger))
		r.Delete("/attachments/{attachmentId}", deleteAttachmentHandler(deps.Tracker, logger))

		// =============================================
		// Ops metrics snapshot
		// GET /v1/metrics/snapshot
		// =============================================
		r.Get("/metrics/snapshot", metricsSnapshotHandler(deps.Metrics))
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "dashboard-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		supabaseStatus := "healthy"
		if deps.SupabaseConfigured == nil || !deps.SupabaseConfigured() {
			supabaseStatus = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "supabase", Status: supabaseStatus, LastChecked: now,
		})

		bookingStatus := "healthy"
		if deps.BookingConfigured == nil || !deps.BookingConfigured() {
			bookingStatus = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "phorest", Status: bookingStatus, LastChecked: now,
		})

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSnapshotHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
