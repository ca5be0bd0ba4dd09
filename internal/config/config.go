package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/chronicle"
)

// Config defines configuration for the chronicle downloader. The field
// keys match the settings file format carried between runs, so a saved
// file round-trips unchanged.
type Config struct {
	DownloadFolder          string `json:"download_folder" yaml:"download_folder"`
	StudyID                 string `json:"study_id" yaml:"study_id"`
	ParticipantIDsToFilter  string `json:"participant_ids_to_filter" yaml:"participant_ids_to_filter"`
	InclusiveChecked        bool   `json:"inclusive_checked" yaml:"inclusive_checked"`
	RawChecked              bool   `json:"raw_checked" yaml:"raw_checked"`
	PreprocessedChecked     bool   `json:"preprocessed_checked" yaml:"preprocessed_checked"`
	SurveyChecked           bool   `json:"survey_checked" yaml:"survey_checked"`
	IOSSensorChecked        bool   `json:"ios_sensor_checked" yaml:"ios_sensor_checked"`
	DiaryDaytimeChecked     bool   `json:"time_use_diary_daytime_checked" yaml:"time_use_diary_daytime_checked"`
	DiaryNighttimeChecked   bool   `json:"time_use_diary_nighttime_checked" yaml:"time_use_diary_nighttime_checked"`
	DiarySummarizedChecked  bool   `json:"time_use_diary_summarized_checked" yaml:"time_use_diary_summarized_checked"`
	DeleteZeroByteChecked   bool   `json:"delete_zero_byte_files_checked" yaml:"delete_zero_byte_files_checked"`
}

// Default returns an empty Config; every download option starts
// unselected.
func Default() Config {
	return Config{}
}

// LoadFromFile loads configuration from a JSON or YAML file, chosen by
// extension. A missing file is not an error and yields the defaults,
// so first runs work without a settings file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	return cfg, nil
}

// SaveToFile writes the configuration back out in the format the
// extension names.
func (c Config) SaveToFile(path string) error {
	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadFromEnv overlays configuration from environment variables.
// Environment variables use the CHRONICLE_ prefix.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("CHRONICLE_DOWNLOAD_FOLDER"); v != "" {
		c.DownloadFolder = v
	}
	if v := os.Getenv("CHRONICLE_STUDY_ID"); v != "" {
		c.StudyID = v
	}
	if v := os.Getenv("CHRONICLE_PARTICIPANT_IDS_TO_FILTER"); v != "" {
		c.ParticipantIDsToFilter = v
	}
	if v := os.Getenv("CHRONICLE_INCLUSIVE"); v != "" {
		c.InclusiveChecked = v == "true" || v == "1"
	}
	if v := os.Getenv("CHRONICLE_DELETE_ZERO_BYTE_FILES"); v != "" {
		c.DeleteZeroByteChecked = v == "true" || v == "1"
	}
}

// DataTypes returns the selected data types in dispatch order.
func (c Config) DataTypes() []chronicle.DataType {
	var types []chronicle.DataType
	if c.RawChecked {
		types = append(types, chronicle.Raw)
	}
	if c.PreprocessedChecked {
		types = append(types, chronicle.Preprocessed)
	}
	if c.SurveyChecked {
		types = append(types, chronicle.Survey)
	}
	if c.IOSSensorChecked {
		types = append(types, chronicle.IOSSensor)
	}
	if c.DiaryDaytimeChecked {
		types = append(types, chronicle.DiaryDaytime)
	}
	if c.DiaryNighttimeChecked {
		types = append(types, chronicle.DiaryNighttime)
	}
	if c.DiarySummarizedChecked {
		types = append(types, chronicle.DiarySummarized)
	}
	return types
}

// FilterMode returns the participant filter interpretation.
func (c Config) FilterMode() chronicle.FilterType {
	if c.InclusiveChecked {
		return chronicle.FilterInclusive
	}
	return chronicle.FilterExclusive
}

// FilterList splits the comma-separated filter entry into matchers.
// Blank entries are dropped here so callers see only usable matchers.
func (c Config) FilterList() []string {
	var list []string
	for _, entry := range strings.Split(c.ParticipantIDsToFilter, ",") {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
