package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Requirements checklist
// ============================================================

func addRequirementHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/projects/{projectId}/requirements")
		defer span.End()

		projectID := chi.URLParam(r, "projectId")

		var ins domain.RequirementInsert
		if err := json.NewDecoder(r.Body).Decode(&ins); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req, err := svc.AddRequirement(ctx, projectID, &ins)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	}
}

func updateRequirementHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/requirements/{requirementId}")
		defer span.End()

		requirementID := chi.URLParam(r, "requirementId")

		var updates map[string]any
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.UpdateRequirement(ctx, requirementID, updates); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "requirement updated", ID: requirementID})
	}
}

func toggleRequirementHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/requirements/{requirementId}/toggle")
		defer span.End()

		requirementID := chi.URLParam(r, "requirementId")
		req, err := svc.ToggleRequirement(ctx, requirementID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

func deleteRequirementHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/requirements/{requirementId}")
		defer span.End()

		requirementID := chi.URLParam(r, "requirementId")
		if err := svc.DeleteRequirement(ctx, requirementID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "requirement deleted", ID: requirementID})
	}
}

func bulkToggleRequirementsHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/requirements/bulk/toggle")
		defer span.End()

		var req struct {
			RequirementIDs []string `json:"requirementIds"`
			Done           bool     `json:"done"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.BulkToggleRequirements(ctx, req.RequirementIDs, req.Done); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "requirements updated"})
	}
}

func bulkDeleteRequirementsHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/requirements/bulk/delete")
		defer span.End()

		var req struct {
			RequirementIDs []string `json:"requirementIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.BulkDeleteRequirements(ctx, req.RequirementIDs); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "requirements deleted"})
	}
}

func reorderRequirementsHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/projects/{projectId}/requirements/reorder")
		defer span.End()

		var req struct {
			RequirementIDs []string `json:"requirementIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.ReorderRequirements(ctx, req.RequirementIDs); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "requirements reordered"})
	}
}
