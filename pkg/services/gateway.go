package services

import (
	"context"

	"content-dashboard/pkg/models"
)

//go:generate mockgen -destination=mocks/gateway.go -package=mocks content-dashboard/pkg/services Gateway

// Gateway reads and writes files of the backing repository. Writes and
// deletes are compare-and-swap on the revision the caller read; the store
// rejects stale revisions with ErrConflict. Nothing is retried.
type Gateway interface {
	// ReadFile fails with ErrNotFound when path is absent or a directory.
	ReadFile(ctx context.Context, path string) (*models.ContentFile, error)
	// ListDirectory fails with ErrNotFound when path is absent or a file.
	ListDirectory(ctx context.Context, path string) ([]models.DirectoryEntry, error)
	// WriteFile creates path when revision is empty and updates it otherwise.
	WriteFile(ctx context.Context, path string, content []byte, revision, message string) (models.Commit, error)
	DeleteFile(ctx context.Context, path, revision, message string) (models.Commit, error)
}
