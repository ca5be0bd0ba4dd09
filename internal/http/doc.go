// Package http manages the single shared HTTP client used against the
// Chronicle API and classifies its failures for retry.
//
// This package handles:
//   - Lazy creation and mutex-guarded sharing of one client handle
//   - Recreation after connection-level failures
//   - Idempotent close at the end of a run
//   - Retry classification and exponential backoff for downloads
//
// # Usage
//
//	manager := http.NewManager(http.DefaultOptions())
//	defer manager.Close()
//
//	client := manager.Acquire()
//	resp, err := client.Do(req)
//	if http.IsTransport(err) {
//	    manager.Recreate() // next Acquire dials fresh
//	}
package http
