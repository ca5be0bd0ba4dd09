// Package downloader orchestrates a full Chronicle study download:
// participant enumeration, filtering, the serialized per-participant
// download loop, and the post-run archival passes.
//
// All HTTP requests in a run pass through a single permit, so no two
// requests are ever concurrent. This is deliberate rate limiting, not
// incidental serialization. Retryable failures (HTTP 429/502/503/504
// and transport errors) are retried a bounded number of times with
// exponential backoff before failing the run; already-downloaded files
// are never rolled back.
//
// # Usage
//
//	o := downloader.New(downloader.Options{})
//	go o.Run(ctx, params, sink)
//	...
//	o.Cancel()
package downloader
