package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"takeoutfix/internal/core/domain"
	"takeoutfix/internal/core/ports"
)

// ReaderFactory builds one metadata reader per worker. Readers hold a
// persistent exiftool process and are not safe for concurrent use, so each
// worker gets its own.
type ReaderFactory func() (ports.MetadataReader, error)

// AuditResult reports which media files carry no date metadata at all.
type AuditResult struct {
	Total      int
	Missing    []string // paths, sorted
	Unreadable int      // files whose metadata could not be extracted
	Elapsed    time.Duration
}

// AuditService checks media files for missing date tags. This is the
// read-only companion to the fix pipeline: run it after an import to see how
// much of the library still needs repair.
type AuditService struct {
	newReader ReaderFactory
}

// NewAuditService creates a new audit service
func NewAuditService(factory ReaderFactory) *AuditService {
	return &AuditService{newReader: factory}
}

type auditOutcome struct {
	path       string
	missing    bool
	unreadable bool
}

// Execute inspects every media file with a bounded worker pool. A file whose
// metadata cannot be read counts as both unreadable and missing; assuming
// the worst keeps the report useful as a repair worklist.
func (s *AuditService) Execute(ctx context.Context, media []domain.MediaFile, workers int) (*AuditResult, error) {
	start := time.Now()

	if workers <= 0 {
		workers = 4
	}

	jobs := make(chan domain.MediaFile, len(media))
	results := make(chan auditOutcome, len(media))

	var wg sync.WaitGroup
	var startupErr error
	var startupOnce sync.Once

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			reader, err := s.newReader()
			if err != nil {
				startupOnce.Do(func() { startupErr = err })
				return
			}
			if closer, ok := reader.(io.Closer); ok {
				defer closer.Close()
			}

			for m := range jobs {
				if ctx.Err() != nil {
					continue
				}
				fields, err := reader.DateFields(ctx, m.Path)
				if err != nil && ctx.Err() != nil {
					// Interrupted, not a verdict on the file. It must not
					// land in the missing-timestamps worklist.
					continue
				}
				results <- auditOutcome{
					path:       m.Path,
					missing:    err != nil || len(fields) == 0,
					unreadable: err != nil,
				}
			}
		}()
	}

	for _, m := range media {
		jobs <- m
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Total counts files actually inspected: a cancelled run reports only
	// what it saw, not the whole input.
	result := &AuditResult{}
	for outcome := range results {
		result.Total++
		if outcome.unreadable {
			result.Unreadable++
		}
		if outcome.missing {
			result.Missing = append(result.Missing, outcome.path)
		}
	}

	// All workers failing to start means exiftool itself is broken; surface
	// that instead of an empty report.
	if startupErr != nil && len(media) > 0 && result.Total == 0 {
		return nil, startupErr
	}

	sort.Strings(result.Missing)
	result.Elapsed = time.Since(start)
	return result, nil
}
