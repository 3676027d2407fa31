package handlers

import (
	"context"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
	"github.com/PaulRosu01/PrivatePixel/internal/syncer"
)

// SyncService runs the I/O-bound library operations.
type SyncService interface {
	ScanDevice(ctx context.Context) (int, error)
	SyncServer(ctx context.Context) (int, error)
	Upload(ctx context.Context, ids []string, progress syncer.ProgressFunc) (models.UploadReport, error)
	UploadSelection(ctx context.Context, progress syncer.ProgressFunc) (models.UploadReport, error)
	DeleteFromServer(ctx context.Context, mediaID string) error
}

// LibraryPersister saves the library after local edits.
type LibraryPersister interface {
	Persist(ctx context.Context) error
}
