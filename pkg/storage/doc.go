// Package storage persists accepted API snapshots ("baselines"), one per
// module.
//
// # Backends
//
//   - FileSystemStore: <root>/<module>/current.txt, written atomically.
//   - S3Store: s3://<bucket>/<prefix><module>/current.txt, with the sha256
//     of the snapshot recorded as object metadata.
//
// Both implement BaselineStore. Module names are slash-separated path
// segments ("core/widget"); ValidateModuleName rejects anything that could
// escape the store's namespace.
//
// A missing baseline is reported as an error wrapping ErrNotFound:
//
//	data, err := store.Get(ctx, "core/widget")
//	if errors.Is(err, storage.ErrNotFound) {
//		// first release: nothing to compare against
//	}
//
// Instrument wraps any store with Prometheus metrics and debug logging.
package storage
