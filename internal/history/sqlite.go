package history

import (
	"context"
	"fmt"

	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/chronicle"
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the history database at path.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history tables: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		study_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		data_type TEXT NOT NULL,
		file TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		downloaded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_downloads_run_id ON downloads(run_id);
	CREATE INDEX IF NOT EXISTS idx_downloads_participant ON downloads(participant_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Save stores one download record.
func (r *SQLiteRepository) Save(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO downloads (run_id, study_id, participant_id, data_type, file, bytes, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.RunID, rec.StudyID, rec.ParticipantID, string(rec.DataType),
		rec.File, rec.Bytes, rec.DownloadedAt)
	if err != nil {
		return fmt.Errorf("save download record: %w", err)
	}
	return nil
}

// ListByRun retrieves all records for a run, oldest first.
func (r *SQLiteRepository) ListByRun(ctx context.Context, runID string) ([]Record, error) {
	query := `
		SELECT id, run_id, study_id, participant_id, data_type, file, bytes, downloaded_at
		FROM downloads WHERE run_id = ? ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list download records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var dataType string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.StudyID, &rec.ParticipantID,
			&dataType, &rec.File, &rec.Bytes, &rec.DownloadedAt); err != nil {
			return nil, fmt.Errorf("scan download record: %w", err)
		}
		rec.DataType = chronicle.DataType(dataType)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list download records: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
