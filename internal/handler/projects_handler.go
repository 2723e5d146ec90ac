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
// Portfolio projects
// ============================================================

func listProjectsHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/projects")
		defer span.End()

		projects, err := svc.ListProjects(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if projects == nil {
			projects = []domain.Project{}
		}
		writeJSON(w, http.StatusOK, projects)
	}
}

func createProjectHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/projects")
		defer span.End()

		var ins domain.ProjectInsert
		if err := json.NewDecoder(r.Body).Decode(&ins); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		project, err := svc.CreateProject(ctx, &ins)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	}
}

func updateProjectHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/projects/{projectId}")
		defer span.End()

		projectID := chi.URLParam(r, "projectId")

		var updates map[string]any
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.UpdateProject(ctx, projectID, updates); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "project updated", ID: projectID})
	}
}

func deleteProjectHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/projects/{projectId}")
		defer span.End()

		projectID := chi.URLParam(r, "projectId")
		if err := svc.DeleteProject(ctx, projectID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "project deleted", ID: projectID})
	}
}
