// Package progress converts download counts into user-facing progress
// values and fans run events out to subscribers.
//
// The percentage scale is fixed: a run starts at 10% once the task list
// is known, the download phase spans 10-90%, and archival/organization
// fill the remainder up to 100%.
//
// # Usage
//
//	percent := progress.Percent(completed, total)
//	text := progress.Status(percent, completed, total)
//
//	events := progress.NewBroadcaster()
//	ch := events.Subscribe()
//	defer events.Unsubscribe(ch)
package progress
