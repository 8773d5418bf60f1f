// Package fetcher walks the replay search listing of one format and downloads
// every listed replay that is not on disk yet.
//
// Pages are requested in order starting at 1. All records of a page are
// handled before the next page is requested. A page holding fewer records
// than the page size threshold (51 by default) is the last one; a page that
// cannot be fetched or decoded also ends the run. The Summary returned by Run
// tells the two apart through StopReason.
//
// Per record:
//   - no id: warning, skipped
//   - id that is not a safe file name: warning, counted as failed
//   - <output>/<id>.json exists: info message, no request, no delay
//   - otherwise the replay is downloaded and saved, and the pacer sleeps
//     whether or not the download worked
//
// Usage:
//
//	f := fetcher.New(cfg, client, store, pacer, log, progress)
//	summary, err := f.Run(ctx)
package fetcher
