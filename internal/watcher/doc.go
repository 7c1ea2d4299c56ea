// Package watcher re-runs mining when the backing SQLite database changes.
//
// The Watcher subscribes to the database file's directory with fsnotify and
// collapses each burst of Write/Create/Rename events on the file (or its
// -wal sidecar) into a single onChange call after a quiet period.
//
// Key features:
//   - Directory-level subscription so atomic replaces are still seen
//   - Debounced callbacks (one call per burst of writes)
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	w, err := watcher.New("/home/me/.ruleminer/ruleminer.db", 500*time.Millisecond, func() {
//		// re-mine and print
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Block until Ctrl-C
//	if err := w.RunUntilSignal(context.Background()); err != nil {
//		log.Fatal(err)
//	}
package watcher
