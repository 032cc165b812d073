package services

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"takeoutfix/internal/core/domain"
)

// ScanResult holds the two disjoint file sets produced by one traversal.
type ScanResult struct {
	Media      []domain.MediaFile
	Sidecars   []domain.Sidecar
	Unreadable int // entries skipped because they could not be read
}

// ScanService walks a Takeout tree and classifies every file as a media
// candidate, a JSON sidecar, or noise.
type ScanService struct{}

// NewScanService creates a new scan service
func NewScanService() *ScanService {
	return &ScanService{}
}

// Execute traverses root recursively. A single unreadable entry is counted
// and skipped, never fatal; only a root that cannot be opened at all returns
// an error. Output is sorted lexicographically by path so runs are
// reproducible.
func (s *ScanService) Execute(root string) (*ScanResult, error) {
	result := &ScanResult{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			result.Unreadable++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			return nil
		}

		abs, aerr := filepath.Abs(path)
		if aerr != nil {
			abs = path
		}

		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case ext == ".json":
			result.Sidecars = append(result.Sidecars, domain.NewSidecar(abs))
		case domain.IsMediaExtension(ext) && !isMetadataName(name):
			result.Media = append(result.Media, domain.NewMediaFile(abs))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result.Media, func(i, j int) bool {
		return result.Media[i].Path < result.Media[j].Path
	})
	sort.Slice(result.Sidecars, func(i, j int) bool {
		return result.Sidecars[i].Path < result.Sidecars[j].Path
	})

	return result, nil
}

// isMetadataName filters Takeout bookkeeping files that carry a media
// extension in disguise, e.g. "metadata(1).jpg" print-size exports.
func isMetadataName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "metadata") || strings.Contains(lower, "json")
}
