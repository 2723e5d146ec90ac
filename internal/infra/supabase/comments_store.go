package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
)

// ============================================================
// Comments
// ============================================================

// ListComments returns every comment row, newest first.
func (c *Client) ListComments(ctx context.Context) ([]domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListComments")
	defer span.End()

	var rows []domain.Comment
	if err := c.getJSON(ctx, "comments?select=*&order=created_at.desc", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateComment inserts one comment row and returns the stored row.
func (c *Client) CreateComment(ctx context.Context, row map[string]any) (*domain.Comment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateComment")
	defer span.End()

	body, err := c.doPost(ctx, "comments", row)
	if err != nil {
		return nil, err
	}

	var results []domain.Comment
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode comment: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from comments insert")
	}
	return &results[0], nil
}

// DeleteComment removes one comment row.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteComment")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("comments?id=eq.%s", url.QueryEscape(commentID)))
}
