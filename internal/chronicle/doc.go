// Package chronicle defines the Chronicle study-data domain model.
//
// This package holds the closed set of downloadable data types, the
// device tags some of them carry, and the lookup table that resolves a
// (study, participant, data type) triple into the API URL and output
// filename for that export.
//
// # Usage
//
//	url, err := chronicle.DownloadURL(chronicle.DefaultBaseURL, studyID, participantID, chronicle.Raw)
//	name, err := chronicle.OutputFileName(participantID, chronicle.Raw, time.Now())
package chronicle
