package exiftool

import (
	"context"
	"fmt"

	barasher "github.com/barasher/go-exiftool"
)

// auditTags are the date tags the scan command looks for, most meaningful
// first. A file carrying none of them will not sort correctly in any photo
// importer and is worth flagging.
var auditTags = []string{
	"DateTimeOriginal",
	"MediaCreateDate",
	"CreationDate",
	"TrackCreateDate",
	"CreateDate",
	"DateTimeDigitized",
	"GPSDateStamp",
	"DateTime",
}

// Reader extracts date metadata through a persistent stay-open exiftool
// process. It implements the ports.MetadataReader interface. Not safe for
// concurrent use; give each worker its own Reader.
type Reader struct {
	et *barasher.Exiftool
}

// NewReader starts the underlying exiftool process.
func NewReader() (*Reader, error) {
	et, err := barasher.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &Reader{et: et}, nil
}

// DateFields returns the audit-relevant date tags present in the file.
func (r *Reader) DateFields(ctx context.Context, path string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metas := r.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return map[string]string{}, nil
	}
	meta := metas[0]
	if meta.Err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", meta.Err)
	}

	fields := make(map[string]string)
	for _, tag := range auditTags {
		if value, err := meta.GetString(tag); err == nil && value != "" {
			fields[tag] = value
		}
	}
	return fields, nil
}

// Close shuts down the exiftool process.
func (r *Reader) Close() error {
	return r.et.Close()
}
