// Package storage keeps downloaded replays on disk.
//
// The output directory is the only state: a replay counts as downloaded when
// <output_dir>/<id>.json exists. There is no manifest or index.
//
// Features:
//   - Output directory created with parents, idempotently
//   - Atomic writes using a temporary file and rename
//   - Existing replays are never replaced
//   - In-memory claims so concurrent workers never fetch the same id twice
//
// Usage:
//
//	manager, err := storage.NewManager("replays")
//	if err != nil {
//	    return err
//	}
//
//	if manager.Claim(id) {
//	    defer manager.Release(id)
//	    err = manager.SaveReplay(id, doc)
//	}
package storage
