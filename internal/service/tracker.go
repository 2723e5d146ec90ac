package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var trackerTracer = otel.Tracer("service/tracker")

// TrackerService implements the portfolio tracker: projects with
// requirements checklists, comments and file attachments.
type TrackerService struct {
	store   port.ProjectStore
	files   port.FileStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewTrackerService creates the tracker service.
func NewTrackerService(store port.ProjectStore, files port.FileStore, metrics *observability.Metrics, logger *zap.Logger) *TrackerService {
	return &TrackerService{
		store:   store,
		files:   files,
		metrics: metrics,
		logger:  logger,
	}
}

// projectColumns are the columns callers may set on a project row.
var projectColumns = map[string]bool{
	"name": true, "status": true, "priority": true,
	"category": true, "icon": true, "summary": true, "notes": true,
}

// requirementColumns are the columns callers may set on a requirement row.
var requirementColumns = map[string]bool{
	"text": true, "tags": true, "done": true, "sort_order": true,
}

func filterColumns(updates map[string]any, allowed map[string]bool) map[string]any {
	filtered := make(map[string]any, len(updates))
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	return filtered
}

// ListProjects returns every project with its requirements, comments
// and attachments nested, in dashboard display order.
func (s *TrackerService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.ListProjects")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("list_projects", time.Since(start)) }()

	var (
		projects     []domain.Project
		requirements []domain.Requirement
		comments     []domain.Comment
		attachments  []domain.Attachment
	)

	// The four tables are independent reads.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = s.store.ListProjects(gCtx)
		return err
	})
	g.Go(func() (err error) {
		requirements, err = s.store.ListRequirements(gCtx)
		return err
	})
	g.Go(func() (err error) {
		comments, err = s.store.ListComments(gCtx)
		return err
	})
	g.Go(func() (err error) {
		attachments, err = s.store.ListAttachments(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reqsByProject := make(map[string][]domain.Requirement)
	for _, r := range requirements {
		reqsByProject[r.ProjectID] = append(reqsByProject[r.ProjectID], r)
	}
	commentsByProject := make(map[string][]domain.Comment)
	for _, c := range comments {
		commentsByProject[c.ProjectID] = append(commentsByProject[c.ProjectID], c)
	}
	attachmentsByProject := make(map[string][]domain.Attachment)
	for _, a := range attachments {
		attachmentsByProject[a.ProjectID] = append(attachmentsByProject[a.ProjectID], a)
	}

	for i := range projects {
		p := &projects[i]
		p.Requirements = reqsByProject[p.ID]
		p.Comments = commentsByProject[p.ID]
		p.Attachments = attachmentsByProject[p.ID]
		if p.Requirements == nil {
			p.Requirements = []domain.Requirement{}
		}
		if p.Comments == nil {
			p.Comments = []domain.Comment{}
		}
		if p.Attachments == nil {
			p.Attachments = []domain.Attachment{}
		}
	}

	return projects, nil
}

// CreateProject inserts a new project.
func (s *TrackerService) CreateProject(ctx context.Context, ins *domain.ProjectInsert) (*domain.Project, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.CreateProject")
	defer span.End()

	if strings.TrimSpace(ins.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if ins.Status == "" {
		ins.Status = "not-launched"
	}
	if ins.Priority == "" {
		ins.Priority = "medium"
	}

	project, err := s.store.CreateProject(ctx, ins)
	if err != nil {
		s.logger.Error("failed to create project", zap.String("name", ins.Name), zap.Error(err))
		return nil, err
	}

	project.Requirements = []domain.Requirement{}
	project.Comments = []domain.Comment{}
	project.Attachments = []domain.Attachment{}

	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("name", project.Name))
	return project, nil
}

// UpdateProject patches editable project columns.
func (s *TrackerService) UpdateProject(ctx context.Context, projectID string, updates map[string]any) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.UpdateProject")
	defer span.End()

	filtered := filterColumns(updates, projectColumns)
	if len(filtered) == 0 {
		return &domain.ErrValidation{Field: "updates", Message: "no editable fields present"}
	}
	filtered["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	return s.store.UpdateProject(ctx, projectID, filtered)
}

// DeleteProject removes a project and everything hanging off it.
func (s *TrackerService) DeleteProject(ctx context.Context, projectID string) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.DeleteProject")
	defer span.End()

	return s.store.DeleteProject(ctx, projectID)
}

// ============================================================
// Requirements
// ============================================================

// AddRequirement appends a checklist item at the end of the project's
// list.
func (s *TrackerService) AddRequirement(ctx context.Context, projectID string, ins *domain.RequirementInsert) (*domain.Requirement, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.AddRequirement")
	defer span.End()

	if strings.TrimSpace(ins.Text) == "" {
		return nil, &domain.ErrValidation{Field: "text", Message: "required"}
	}

	existing, err := s.store.ListProjectRequirements(ctx, projectID)
	if err != nil {
		return nil, err
	}
	maxSortOrder := 0
	for _, r := range existing {
		if r.SortOrder > maxSortOrder {
			maxSortOrder = r.SortOrder
		}
	}

	tags := ins.Tags
	if tags == nil {
		tags = []string{}
	}

	return s.store.CreateRequirement(ctx, map[string]any{
		"project_id": projectID,
		"text":       ins.Text,
		"tags":       tags,
		"done":       false,
		"sort_order": maxSortOrder + 1,
	})
}

// UpdateRequirement patches editable requirement columns.
func (s *TrackerService) UpdateRequirement(ctx context.Context, requirementID string, updates map[string]any) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.UpdateRequirement")
	defer span.End()

	filtered := filterColumns(updates, requirementColumns)
	if len(filtered) == 0 {
		return &domain.ErrValidation{Field: "updates", Message: "no editable fields present"}
	}
	filtered["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	return s.store.UpdateRequirement(ctx, requirementID, filtered)
}

// ToggleRequirement flips one checklist item's done flag and returns
// the new state.
func (s *TrackerService) ToggleRequirement(ctx context.Context, requirementID string) (*domain.Requirement, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.ToggleRequirement")
	defer span.End()

	req, err := s.store.GetRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateRequirement(ctx, requirementID, map[string]any{"done": !req.Done}); err != nil {
		return nil, err
	}
	req.Done = !req.Done
	return req, nil
}

// DeleteRequirement removes one checklist item.
func (s *TrackerService) DeleteRequirement(ctx context.Context, requirementID string) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.DeleteRequirement")
	defer span.End()

	return s.store.DeleteRequirement(ctx, requirementID)
}

// BulkToggleRequirements sets done on every listed checklist item.
func (s *TrackerService) BulkToggleRequirements(ctx context.Context, requirementIDs []string, done bool) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.BulkToggleRequirements")
	defer span.End()

	if len(requirementIDs) == 0 {
		return &domain.ErrValidation{Field: "requirementIds", Message: "required"}
	}
	return s.store.UpdateRequirements(ctx, requirementIDs, map[string]any{"done": done})
}

// BulkDeleteRequirements removes every listed checklist item.
func (s *TrackerService) BulkDeleteRequirements(ctx context.Context, requirementIDs []string) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.BulkDeleteRequirements")
	defer span.End()

	if len(requirementIDs) == 0 {
		return &domain.ErrValidation{Field: "requirementIds", Message: "required"}
	}
	return s.store.DeleteRequirements(ctx, requirementIDs)
}

// ReorderRequirements rewrites sort_order so the rows land in the
// given order.
func (s *TrackerService) ReorderRequirements(ctx context.Context, requirementIDs []string) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.ReorderRequirements")
	defer span.End()

	if len(requirementIDs) == 0 {
		return &domain.ErrValidation{Field: "requirementIds", Message: "required"}
	}

	for i, id := range requirementIDs {
		if err := s.store.UpdateRequirement(ctx, id, map[string]any{"sort_order": i}); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// Comments
// ============================================================

// AddComment appends a note to a project.
func (s *TrackerService) AddComment(ctx context.Context, projectID, text, author string) (*domain.Comment, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.AddComment")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return nil, &domain.ErrValidation{Field: "text", Message: "required"}
	}
	if author == "" {
		author = "User"
	}

	return s.store.CreateComment(ctx, map[string]any{
		"project_id": projectID,
		"text":       text,
		"author":     author,
	})
}

// DeleteComment removes a note.
func (s *TrackerService) DeleteComment(ctx context.Context, commentID string) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.DeleteComment")
	defer span.End()

	return s.store.DeleteComment(ctx, commentID)
}

// ============================================================
// Attachments
// ============================================================

// UploadAttachment stores the file bytes in the attachments bucket and
// records a row pointing at the object.
func (s *TrackerService) UploadAttachment(ctx context.Context, projectID, fileName, contentType string, data []byte) (*domain.Attachment, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.UploadAttachment")
	defer span.End()

	if fileName == "" {
		return nil, &domain.ErrValidation{Field: "file", Message: "file name required"}
	}
	if len(data) == 0 {
		return nil, &domain.ErrValidation{Field: "file", Message: "file is empty"}
	}

	// Object keys are unique per upload so repeated uploads of the
	// same file name never collide.
	objectPath := projectID + "/" + uuid.New().String() + filepath.Ext(fileName)

	if err := s.files.Upload(ctx, objectPath, contentType, data); err != nil {
		s.logger.Error("attachment upload failed",
			zap.String("project_id", projectID),
			zap.String("file_name", fileName),
			zap.Error(err),
		)
		return nil, err
	}

	attachment, err := s.store.CreateAttachment(ctx, map[string]any{
		"project_id": projectID,
		"file_name":  fileName,
		"file_path":  objectPath,
		"file_type":  contentType,
		"file_size":  len(data),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("attachment uploaded",
		zap.String("project_id", projectID),
		zap.String("attachment_id", attachment.ID),
		zap.String("object", objectPath),
	)
	return attachment, nil
}

// DeleteAttachment removes the object then the row. A storage failure
// is logged but does not block removing the row, matching the
// dashboard's behavior of never stranding a dead row over an orphaned
// object.
func (s *TrackerService) DeleteAttachment(ctx context.Context, attachmentID string) error {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.DeleteAttachment")
	defer span.End()

	attachment, err := s.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}

	if err := s.files.Remove(ctx, attachment.FilePath); err != nil {
		s.logger.Warn("storage delete failed, removing row anyway",
			zap.String("attachment_id", attachmentID),
			zap.String("object", attachment.FilePath),
			zap.Error(err),
		)
	}

	return s.store.DeleteAttachment(ctx, attachmentID)
}

// AttachmentURL resolves the public download URL for an attachment.
func (s *TrackerService) AttachmentURL(ctx context.Context, attachmentID string) (string, error) {
	ctx, span := trackerTracer.Start(ctx, "TrackerService.AttachmentURL")
	defer span.End()

	attachment, err := s.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	return s.files.PublicURL(attachment.FilePath), nil
}
