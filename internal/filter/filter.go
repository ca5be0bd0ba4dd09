package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/chronicle"
)

// ErrNoParticipants is returned when filtering leaves nothing to
// download. This is fatal for a run: the filter or the study roster
// needs fixing, not the downloader.
var ErrNoParticipants = errors.New("filter: no participant IDs with data available to download were found after filtering")

// Apply filters ids by mode and returns the survivors sorted ascending.
// Both ids and matchers are trimmed, and blank entries are dropped
// before matching.
func Apply(ids []string, mode chronicle.FilterType, matchers []string) ([]string, error) {
	cleanedIDs := clean(ids)
	cleanedMatchers := clean(matchers)

	var filtered []string
	switch mode {
	case chronicle.FilterInclusive:
		filtered = inclusive(cleanedIDs, cleanedMatchers)
	case chronicle.FilterExclusive:
		filtered = exclusive(cleanedIDs, cleanedMatchers)
	default:
		return nil, fmt.Errorf("filter: unrecognized filter mode %q", string(mode))
	}

	sort.Strings(filtered)

	if len(filtered) == 0 {
		return nil, ErrNoParticipants
	}
	return filtered, nil
}

// inclusive keeps ids containing at least one matcher as a substring.
func inclusive(ids, matchers []string) []string {
	var out []string
	for _, id := range ids {
		if matchesAny(id, matchers) {
			out = append(out, id)
		}
	}
	return out
}

// exclusive keeps ids containing none of the matchers as a substring.
func exclusive(ids, matchers []string) []string {
	var out []string
	for _, id := range ids {
		if !matchesAny(id, matchers) {
			out = append(out, id)
		}
	}
	return out
}

func matchesAny(id string, matchers []string) bool {
	lower := strings.ToLower(id)
	for _, m := range matchers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// clean trims whitespace and drops empty entries.
func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
