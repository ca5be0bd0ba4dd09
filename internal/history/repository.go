package history

import (
	"context"
	"time"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/chronicle"
)

// Record is one completed file download.
type Record struct {
	ID            int64              `json:"id"`
	RunID         string             `json:"run_id"`
	StudyID       string             `json:"study_id"`
	ParticipantID string             `json:"participant_id"`
	DataType      chronicle.DataType `json:"data_type"`
	File          string             `json:"file"`
	Bytes         int64              `json:"bytes"`
	DownloadedAt  time.Time          `json:"downloaded_at"`
}

// Repository defines the interface for download history persistence.
type Repository interface {
	// Save stores one download record.
	Save(ctx context.Context, rec Record) error

	// ListByRun retrieves all records for a run, oldest first.
	ListByRun(ctx context.Context, runID string) ([]Record, error)

	// Close closes the storage connection.
	Close() error
}
