package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
)

// ============================================================
// Requirements — checklist rows
// ============================================================

// ListRequirements returns every requirement row ordered by sort_order.
func (c *Client) ListRequirements(ctx context.Context) ([]domain.Requirement, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRequirements")
	defer span.End()

	var rows []domain.Requirement
	if err := c.getJSON(ctx, "requirements?select=*&order=sort_order.asc", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProjectRequirements returns one project's requirements ordered by
// sort_order.
func (c *Client) ListProjectRequirements(ctx context.Context, projectID string) ([]domain.Requirement, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProjectRequirements")
	defer span.End()

	path := fmt.Sprintf("requirements?project_id=eq.%s&order=sort_order.asc", url.QueryEscape(projectID))
	var rows []domain.Requirement
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRequirement returns one requirement row.
func (c *Client) GetRequirement(ctx context.Context, requirementID string) (*domain.Requirement, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRequirement")
	defer span.End()

	path := fmt.Sprintf("requirements?id=eq.%s&limit=1", url.QueryEscape(requirementID))
	var rows []domain.Requirement
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "requirement", ID: requirementID}
	}
	return &rows[0], nil
}

// CreateRequirement inserts one requirement row and returns the stored row.
func (c *Client) CreateRequirement(ctx context.Context, row map[string]any) (*domain.Requirement, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateRequirement")
	defer span.End()

	body, err := c.doPost(ctx, "requirements", row)
	if err != nil {
		return nil, err
	}

	var results []domain.Requirement
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode requirement: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from requirements insert")
	}
	return &results[0], nil
}

// UpdateRequirement patches one requirement row.
func (c *Client) UpdateRequirement(ctx context.Context, requirementID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateRequirement")
	defer span.End()

	return c.doPatch(ctx, fmt.Sprintf("requirements?id=eq.%s", url.QueryEscape(requirementID)), updates)
}

// UpdateRequirements patches all requirement rows in ids at once.
func (c *Client) UpdateRequirements(ctx context.Context, requirementIDs []string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateRequirements")
	defer span.End()

	if len(requirementIDs) == 0 {
		return nil
	}
	return c.doPatch(ctx, "requirements?id="+inFilter(requirementIDs), updates)
}

// DeleteRequirement removes one requirement row.
func (c *Client) DeleteRequirement(ctx context.Context, requirementID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteRequirement")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("requirements?id=eq.%s", url.QueryEscape(requirementID)))
}

// DeleteRequirements removes all requirement rows in ids at once.
func (c *Client) DeleteRequirements(ctx context.Context, requirementIDs []string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteRequirements")
	defer span.End()

	if len(requirementIDs) == 0 {
		return nil
	}
	return c.doDelete(ctx, "requirements?id="+inFilter(requirementIDs))
}
