package ports

import (
	"context"
	"time"
)

// MetadataWriter defines the port for stamping a capture instant onto a media
// file. Implementations overwrite every date field unconditionally and also
// align the filesystem timestamps; a returned error describes a per-file
// failure and never aborts the batch.
type MetadataWriter interface {
	// Apply writes taken into the file at path.
	Apply(ctx context.Context, path string, taken time.Time) error
}

// MetadataReader defines the port for reading date metadata back out of a
// media file. Used by the audit (scan) command.
type MetadataReader interface {
	// DateFields returns the date/time tags present in the file, keyed by
	// tag name. A file with no date tags returns an empty map.
	DateFields(ctx context.Context, path string) (map[string]string, error)
}
