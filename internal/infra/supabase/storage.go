package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ============================================================
// Storage — attachment files in the object bucket
// ============================================================

// Upload stores data as an object at objectPath in the attachments
// bucket. The object path encodes the owning project, e.g.
// "{projectID}/{timestamp}.{ext}".
func (c *Client) Upload(ctx context.Context, objectPath, contentType string, data []byte) error {
	ctx, span := tracer.Start(ctx, "Supabase.StorageUpload")
	defer span.End()

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}

	c.setAuthHeaders(req)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	c.metrics.IncrUpstreamRequest("supabase")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: storage upload failed",
			zap.String("object", objectPath),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.IncrExternalError("supabase")
		c.logger.Warn("supabase: storage upload non-2xx",
			zap.String("object", objectPath),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return fmt.Errorf("supabase storage upload %s returned %d: %s", objectPath, resp.StatusCode, string(body))
	}

	c.logger.Debug("supabase: storage upload OK", zap.String("object", objectPath), zap.Int("bytes", len(data)))
	return nil
}

// Remove deletes an object from the attachments bucket.
func (c *Client) Remove(ctx context.Context, objectPath string) error {
	ctx, span := tracer.Start(ctx, "Supabase.StorageRemove")
	defer span.End()

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	c.setAuthHeaders(req)

	c.metrics.IncrUpstreamRequest("supabase")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: storage delete failed",
			zap.String("object", objectPath),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.IncrExternalError("supabase")
		return fmt.Errorf("supabase storage delete %s returned %d: %s", objectPath, resp.StatusCode, string(body))
	}

	return nil
}

// PublicURL returns the public download URL for an object in the
// attachments bucket.
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, objectPath)
}
