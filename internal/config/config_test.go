package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/chronicle"
)

func TestLoadFromJSON(t *testing.T) {
	jsonContent := `{
  "download_folder": "/data/study",
  "study_id": "3fa85f64-5717-4562-b3fc-2c963f66afa6",
  "participant_ids_to_filter": "123, 456",
  "inclusive_checked": true,
  "raw_checked": true,
  "survey_checked": true,
  "time_use_diary_nighttime_checked": true,
  "delete_zero_byte_files_checked": true
}`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(jsonContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.DownloadFolder != "/data/study" {
		t.Errorf("download folder = %q", cfg.DownloadFolder)
	}
	if cfg.StudyID != "3fa85f64-5717-4562-b3fc-2c963f66afa6" {
		t.Errorf("study id = %q", cfg.StudyID)
	}
	if !cfg.InclusiveChecked || !cfg.RawChecked || !cfg.SurveyChecked {
		t.Error("expected inclusive, raw and survey checked")
	}
	if cfg.PreprocessedChecked || cfg.IOSSensorChecked {
		t.Error("unset flags should stay false")
	}
	if !cfg.DeleteZeroByteChecked {
		t.Error("expected delete_zero_byte_files_checked true")
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
download_folder: /data/study
study_id: 3fa85f64-5717-4562-b3fc-2c963f66afa6
raw_checked: true
preprocessed_checked: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.DownloadFolder != "/data/study" {
		t.Errorf("download folder = %q", cfg.DownloadFolder)
	}
	if !cfg.RawChecked || !cfg.PreprocessedChecked {
		t.Error("expected raw and preprocessed checked")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Config{
		DownloadFolder:         "/data/study",
		StudyID:                "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		ParticipantIDsToFilter: "123,456",
		RawChecked:             true,
		DiarySummarizedChecked: true,
	}

	path := filepath.Join(t.TempDir(), "config.json")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", cfg, loaded)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHRONICLE_DOWNLOAD_FOLDER", "/env/folder")
	t.Setenv("CHRONICLE_STUDY_ID", "env-study-id")
	t.Setenv("CHRONICLE_INCLUSIVE", "1")

	cfg := Default()
	cfg.LoadFromEnv()

	if cfg.DownloadFolder != "/env/folder" {
		t.Errorf("download folder = %q", cfg.DownloadFolder)
	}
	if cfg.StudyID != "env-study-id" {
		t.Errorf("study id = %q", cfg.StudyID)
	}
	if !cfg.InclusiveChecked {
		t.Error("expected inclusive checked from env")
	}
}

func TestDataTypesDispatchOrder(t *testing.T) {
	cfg := Config{
		RawChecked:             true,
		SurveyChecked:          true,
		DiaryDaytimeChecked:    true,
		DiarySummarizedChecked: true,
	}

	want := []chronicle.DataType{
		chronicle.Raw,
		chronicle.Survey,
		chronicle.DiaryDaytime,
		chronicle.DiarySummarized,
	}
	if got := cfg.DataTypes(); !reflect.DeepEqual(got, want) {
		t.Errorf("DataTypes() = %v, want %v", got, want)
	}
}

func TestFilterHelpers(t *testing.T) {
	cfg := Config{ParticipantIDsToFilter: " 123 ,, 456,  "}

	if got := cfg.FilterMode(); got != chronicle.FilterExclusive {
		t.Errorf("FilterMode() = %v, want exclusive default", got)
	}

	cfg.InclusiveChecked = true
	if got := cfg.FilterMode(); got != chronicle.FilterInclusive {
		t.Errorf("FilterMode() = %v, want inclusive", got)
	}

	want := []string{"123", "456"}
	if got := cfg.FilterList(); !reflect.DeepEqual(got, want) {
		t.Errorf("FilterList() = %v, want %v", got, want)
	}
}
