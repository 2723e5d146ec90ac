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
// Comments
// ============================================================

func addCommentHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/projects/{projectId}/comments")
		defer span.End()

		projectID := chi.URLParam(r, "projectId")

		var req struct {
			Text   string `json:"text"`
			Author string `json:"author,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		comment, err := svc.AddComment(ctx, projectID, req.Text, req.Author)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, comment)
	}
}

func deleteCommentHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/comments/{commentId}")
		defer span.End()

		commentID := chi.URLParam(r, "commentId")
		if err := svc.DeleteComment(ctx, commentID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "comment deleted", ID: commentID})
	}
}
