package progress

import "fmt"

// Percent converts (completed, total) download counts into the 10-90
// band of the progress scale. Callers must not pass total == 0; runs
// with nothing to download are rejected by validation before any
// progress is reported.
func Percent(completed, total int) int {
	if total <= 0 {
		return 10
	}
	return 10 + (completed*80)/total
}

// Status renders the human-readable progress line for the given state.
func Status(percent, completed, total int) string {
	if percent >= 100 {
		return fmt.Sprintf("Complete! Downloaded %d files", total)
	}
	return fmt.Sprintf("Downloaded %d of %d files", completed, total)
}
