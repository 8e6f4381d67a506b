package driven

import "context"

// SnapshotFetcher downloads a prebuilt index snapshot from a remote,
// content-addressed archive store. Used by the bootstrap path to avoid
// repeating expensive embedding work on startup; a fetch failure is
// never fatal because the caller can always re-ingest from source.
type SnapshotFetcher interface {
	// Fetch downloads the snapshot at uri and returns a local file
	// path. The caller owns the returned file.
	Fetch(ctx context.Context, uri string) (string, error)
}
