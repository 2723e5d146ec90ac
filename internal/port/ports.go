// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
)

// BookingAPI retrieves branch, staff, appointment and client data from
// the external salon-booking system.
type BookingAPI interface {
	FetchBranches(ctx context.Context) ([]domain.Branch, error)
	FetchStaff(ctx context.Context, branchID string) ([]domain.Staff, error)
	FetchAppointments(ctx context.Context, branchID, fromDate, toDate string) ([]domain.Appointment, error)
	FetchClientsBatch(ctx context.Context, clientIDs []string) ([]domain.Client, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// ProjectStore defines all data operations for the portfolio tracker.
// Implemented by the Supabase adapter (or any other persistence layer).
type ProjectStore interface {
	// Projects
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, ins *domain.ProjectInsert) (*domain.Project, error)
	UpdateProject(ctx context.Context, projectID string, updates map[string]any) error
	DeleteProject(ctx context.Context, projectID string) error

	// Requirements
	ListRequirements(ctx context.Context) ([]domain.Requirement, error)
	ListProjectRequirements(ctx context.Context, projectID string) ([]domain.Requirement, error)
	GetRequirement(ctx context.Context, requirementID string) (*domain.Requirement, error)
	CreateRequirement(ctx context.Context, row map[string]any) (*domain.Requirement, error)
	UpdateRequirement(ctx context.Context, requirementID string, updates map[string]any) error
	UpdateRequirements(ctx context.Context, requirementIDs []string, updates map[string]any) error
	DeleteRequirement(ctx context.Context, requirementID string) error
	DeleteRequirements(ctx context.Context, requirementIDs []string) error

	// Comments
	ListComments(ctx context.Context) ([]domain.Comment, error)
	CreateComment(ctx context.Context, row map[string]any) (*domain.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error

	// Attachments
	ListAttachments(ctx context.Context) ([]domain.Attachment, error)
	GetAttachment(ctx context.Context, attachmentID string) (*domain.Attachment, error)
	CreateAttachment(ctx context.Context, row map[string]any) (*domain.Attachment, error)
	DeleteAttachment(ctx context.Context, attachmentID string) error
}

// FileStore defines object-storage operations for attachment files.
type FileStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) error
	Remove(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
}
