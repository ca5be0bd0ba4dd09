// Package filter narrows a study's participant list before download.
//
// Matching is case-insensitive substring containment: exclusive mode
// keeps participants matching none of the filter entries, inclusive mode
// keeps participants matching at least one. Results are always sorted so
// the downstream download order is deterministic.
package filter
