package history

import (
	"context"
	"testing"
	"time"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/chronicle"
)

func TestMockSaveAndListByRun(t *testing.T) {
	repo := NewMockRepository()
	defer repo.Close()

	ctx := context.Background()
	now := time.Now()

	recs := []Record{
		{RunID: "run-1", StudyID: "study", ParticipantID: "P1", DataType: chronicle.Raw, File: "a.csv", Bytes: 10, DownloadedAt: now},
		{RunID: "run-1", StudyID: "study", ParticipantID: "P1", DataType: chronicle.Survey, File: "b.csv", Bytes: 20, DownloadedAt: now},
		{RunID: "run-2", StudyID: "study", ParticipantID: "P2", DataType: chronicle.Raw, File: "c.csv", Bytes: 30, DownloadedAt: now},
	}
	for _, rec := range recs {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := repo.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for run-1, got %d", len(got))
	}
	if got[0].File != "a.csv" || got[1].File != "b.csv" {
		t.Errorf("records out of order: %v, %v", got[0].File, got[1].File)
	}
	if got[0].ID == 0 || got[1].ID == got[0].ID {
		t.Error("expected distinct non-zero IDs")
	}

	empty, err := repo.ListByRun(ctx, "run-3")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no records for unknown run, got %d", len(empty))
	}
}
