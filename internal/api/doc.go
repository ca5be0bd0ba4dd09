// Package api exposes an optional HTTP endpoint for observing and
// cancelling a running download: current status, per-run download
// history, and a WebSocket event stream.
package api
