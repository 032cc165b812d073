package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaFile represents one photo or video candidate found during the scan.
// Immutable once created; the exiftool adapter mutates the file on disk,
// never this value.
type MediaFile struct {
	Path string // absolute path
	Name string // base name including extension, e.g. "IMG_001.jpg"
	Dir  string // containing directory
	Ext  string // normalized lowercase extension, e.g. ".jpg"
}

// Sidecar represents a Google Takeout JSON metadata file.
type Sidecar struct {
	Path string // absolute path
	Name string // base name, e.g. "IMG_001.jpg.json"
	Dir  string // containing directory
}

// Base returns the sidecar name with the trailing .json stripped.
// "IMG_001.jpg.suppl.json" -> "IMG_001.jpg.suppl"
func (s Sidecar) Base() string {
	return strings.TrimSuffix(s.Name, ".json")
}

// Pair associates one media file with the sidecar that describes it and the
// capture instant extracted from that sidecar. A media file appears in at
// most one pair, and a sidecar is never shared between two pairs.
type Pair struct {
	Media   MediaFile
	Sidecar Sidecar
	Taken   time.Time // capture instant, UTC
}

// SkipReason explains why a media file was left out of the update batch.
type SkipReason string

const (
	SkipNoSidecar SkipReason = "no matching sidecar"
	SkipMalformed SkipReason = "malformed sidecar"
)

// UpdateStatus is the per-file outcome of one writer invocation.
type UpdateStatus int

const (
	StatusUpdated UpdateStatus = iota
	StatusSkipped
	StatusFailed
)

// UpdateResult is the outcome of processing a single media file.
type UpdateResult struct {
	Media  MediaFile
	Status UpdateStatus
	Reason string // populated for Skipped and Failed
}

// Supported media extensions (lowercase, with dot). Sidecar JSON files are
// classified separately and are never media candidates.
var mediaExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".heic": true, ".heif": true,
	".tif": true, ".tiff": true, ".webp": true, ".dng": true, ".gif": true,
	".bmp": true, ".mp4": true, ".mov": true, ".3gp": true, ".3gpp": true,
}

// IsMediaExtension reports whether ext (any case, with or without dot)
// belongs to the supported media set.
func IsMediaExtension(ext string) bool {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return mediaExtensions[ext]
}

// NewMediaFile builds a MediaFile from an absolute path.
func NewMediaFile(path string) MediaFile {
	return MediaFile{
		Path: path,
		Name: filepath.Base(path),
		Dir:  filepath.Dir(path),
		Ext:  strings.ToLower(filepath.Ext(path)),
	}
}

// NewSidecar builds a Sidecar from an absolute path.
func NewSidecar(path string) Sidecar {
	return Sidecar{
		Path: path,
		Name: filepath.Base(path),
		Dir:  filepath.Dir(path),
	}
}
