package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
)

// ============================================================
// Attachments — rows pointing at objects in the storage bucket
// ============================================================

// ListAttachments returns every attachment row, newest first.
func (c *Client) ListAttachments(ctx context.Context) ([]domain.Attachment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAttachments")
	defer span.End()

	var rows []domain.Attachment
	if err := c.getJSON(ctx, "attachments?select=*&order=created_at.desc", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAttachment returns one attachment row.
func (c *Client) GetAttachment(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAttachment")
	defer span.End()

	path := fmt.Sprintf("attachments?id=eq.%s&limit=1", url.QueryEscape(attachmentID))
	var rows []domain.Attachment
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "attachment", ID: attachmentID}
	}
	return &rows[0], nil
}

// CreateAttachment inserts one attachment row and returns the stored row.
func (c *Client) CreateAttachment(ctx context.Context, row map[string]any) (*domain.Attachment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAttachment")
	defer span.End()

	body, err := c.doPost(ctx, "attachments", row)
	if err != nil {
		return nil, err
	}

	var results []domain.Attachment
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode attachment: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from attachments insert")
	}
	return &results[0], nil
}

// DeleteAttachment removes one attachment row.
func (c *Client) DeleteAttachment(ctx context.Context, attachmentID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAttachment")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("attachments?id=eq.%s", url.QueryEscape(attachmentID)))
}
