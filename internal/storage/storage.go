package storage

import (
	"context"

	"reportbot/internal/models"
)

// Storage defines the interface for the report archive. The archive backs
// the admin /stats query only; conversational state is never persisted,
// so losing the archive loses statistics and nothing else.
type Storage interface {
	// SaveReport archives a submitted report.
	SaveReport(ctx context.Context, record models.ReportRecord) error

	// Stats returns aggregate counts over the archive.
	Stats(ctx context.Context) (models.ReportStats, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
