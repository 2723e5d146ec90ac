package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
)

// ============================================================
// Projects — CRUD via PostgREST
// ============================================================

// ListProjects returns all project rows ordered by priority then name.
// Nested requirements/comments/attachments are assembled by the service.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProjects")
	defer span.End()

	var rows []domain.Project
	if err := c.getJSON(ctx, "projects?select=*&order=priority.asc,name.asc", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateProject inserts a project row and returns the stored row.
func (c *Client) CreateProject(ctx context.Context, ins *domain.ProjectInsert) (*domain.Project, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProject")
	defer span.End()

	row := map[string]any{
		"name":     ins.Name,
		"status":   ins.Status,
		"priority": ins.Priority,
		"category": ins.Category,
		"icon":     ins.Icon,
		"summary":  ins.Summary,
		"notes":    ins.Notes,
	}

	body, err := c.doPost(ctx, "projects", row)
	if err != nil {
		return nil, err
	}

	var results []domain.Project
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from projects insert")
	}
	return &results[0], nil
}

// UpdateProject patches the given columns of one project row.
func (c *Client) UpdateProject(ctx context.Context, projectID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProject")
	defer span.End()

	return c.doPatch(ctx, fmt.Sprintf("projects?id=eq.%s", url.QueryEscape(projectID)), updates)
}

// DeleteProject removes one project row. Child rows cascade in the
// database schema.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteProject")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("projects?id=eq.%s", url.QueryEscape(projectID)))
}
