package chronicle

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Chronicle API endpoint.
const DefaultBaseURL = "https://api.getmethodic.com"

// DateLayout is the date format embedded in output filenames.
const DateLayout = "01-02-2006"

// DataType identifies one Chronicle data export category. The string
// value is the dataType query parameter the API expects.
type DataType string

const (
	Raw             DataType = "UsageEvents"
	Preprocessed    DataType = "Preprocessed"
	Survey          DataType = "AppUsageSurvey"
	IOSSensor       DataType = "IOSSensor"
	DiaryDaytime    DataType = "DayTime"
	DiaryNighttime  DataType = "NightTime"
	DiarySummarized DataType = "Summarized"
)

// AllDataTypes lists every data type in the fixed order downloads are
// dispatched per participant.
var AllDataTypes = []DataType{
	Raw,
	Preprocessed,
	Survey,
	IOSSensor,
	DiaryDaytime,
	DiaryNighttime,
	DiarySummarized,
}

// DeviceType tags the device family a data type is collected from.
type DeviceType string

const (
	DeviceAmazon  DeviceType = "Amazon Fire"
	DeviceAndroid DeviceType = "Android"
	DeviceIPhone  DeviceType = "iPhone"
)

// FilterType selects how the participant filter list is interpreted.
type FilterType string

const (
	FilterInclusive FilterType = "Inclusive"
	FilterExclusive FilterType = "Exclusive"
)

// entry is one row of the data type lookup table.
type entry struct {
	label  string
	device DeviceType // empty for data types with no device tag
	diary  bool       // true for time-use-diary endpoints
}

var registry = map[DataType]entry{
	Raw:             {label: "Raw Data", device: DeviceAndroid},
	Preprocessed:    {label: "Preprocessed Data", device: DeviceAndroid},
	Survey:          {label: "Survey Data", device: DeviceAndroid},
	IOSSensor:       {label: "IOSSensor Data", device: DeviceIPhone},
	DiaryDaytime:    {label: "Time Use Diary Daytime Data", diary: true},
	DiaryNighttime:  {label: "Time Use Diary Nighttime Data", diary: true},
	DiarySummarized: {label: "Time Use Diary Summarized Data", diary: true},
}

// Label returns the human-readable output label for d.
func (d DataType) Label() (string, error) {
	e, ok := registry[d]
	if !ok {
		return "", fmt.Errorf("chronicle: unrecognized data type %q", string(d))
	}
	return e.label, nil
}

// Device returns the device tag for d, or the empty string for data
// types that carry none.
func (d DataType) Device() DeviceType {
	return registry[d].device
}

// IsDiary reports whether d is served by the time-use-diary endpoint
// family.
func (d DataType) IsDiary() bool {
	return registry[d].diary
}

// Valid reports whether d is one of the known data types.
func (d DataType) Valid() bool {
	_, ok := registry[d]
	return ok
}

// StatsURL returns the participant-stats endpoint for a study. The
// response enumerates every participant with data available.
func StatsURL(baseURL, studyID string) string {
	return fmt.Sprintf("%s/chronicle/v3/study/%s/participants/stats", baseURL, studyID)
}

// DownloadURL resolves the per-participant export URL for d. The two
// endpoint families differ: participant data carries a fileType=csv
// parameter, time-use-diary does not.
func DownloadURL(baseURL, studyID, participantID string, d DataType) (string, error) {
	e, ok := registry[d]
	if !ok {
		return "", fmt.Errorf("chronicle: unrecognized data type %q", string(d))
	}

	q := url.Values{}
	q.Set("participantId", participantID)
	q.Set("dataType", string(d))

	if e.diary {
		return fmt.Sprintf("%s/chronicle/v3/time-use-diary/%s/participants/data?%s", baseURL, studyID, q.Encode()), nil
	}

	q.Set("fileType", "csv")
	return fmt.Sprintf("%s/chronicle/v3/study/%s/participants/data?%s", baseURL, studyID, q.Encode()), nil
}

// OutputFileName builds the on-disk name for one export. The device
// segment appears only for data types that carry a device tag, and the
// date is the local calendar date at write time. The archival and
// organize passes depend on this exact shape.
func OutputFileName(participantID string, d DataType, now time.Time) (string, error) {
	e, ok := registry[d]
	if !ok {
		return "", fmt.Errorf("chronicle: unrecognized data type %q", string(d))
	}

	device := ""
	if e.device != "" {
		device = " " + string(e.device)
	}

	return fmt.Sprintf("%s Chronicle%s %s %s.csv", participantID, device, e.label, now.Format(DateLayout)), nil
}
