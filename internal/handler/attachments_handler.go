package handler

import (
	"io"
	"net/http"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Attachments
// ============================================================

// maxAttachmentSize caps uploads at 25 MiB, matching the bucket limit.
const maxAttachmentSize = 25 << 20

func uploadAttachmentHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/projects/{projectId}/attachments")
		defer span.End()

		projectID := chi.URLParam(r, "projectId")

		r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)
		if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body or file too large")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read file")
			return
		}

		contentType := header.Header.Get("Content-Type")
		attachment, err := svc.UploadAttachment(ctx, projectID, header.Filename, contentType, data)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, attachment)
	}
}

func attachmentURLHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/attachments/{attachmentId}/url")
		defer span.End()

		attachmentID := chi.URLParam(r, "attachmentId")
		url, err := svc.AttachmentURL(ctx, attachmentID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}

func deleteAttachmentHandler(svc *service.TrackerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/attachments/{attachmentId}")
		defer span.End()

		attachmentID := chi.URLParam(r, "attachmentId")
		if err := svc.DeleteAttachment(ctx, attachmentID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "attachment deleted", ID: attachmentID})
	}
}
