package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"takeoutfix/internal/core/domain"
	"takeoutfix/internal/core/ports"
)

// UpdateRequest carries one batch of work into the orchestrator.
type UpdateRequest struct {
	Pairs      []domain.Pair
	PreSkipped []domain.UpdateResult // unpaired media, already classified by the pairer
	Scanned    int                   // total media files found by the scanner
	Unreadable int                   // entries the scanner could not read
	Workers    int
}

// UpdateProgress reports one completed unit of work.
type UpdateProgress struct {
	Current int
	Total   int
	Result  domain.UpdateResult
}

// Summary is the aggregate outcome of one run. Counts are exact regardless
// of completion order: a single collector goroutine owns them.
type Summary struct {
	RunID       string
	Scanned     int
	Paired      int
	Updated     int
	Skipped     int
	Failed      int
	Unreadable  int
	SkipReasons map[string]int
	Failures    []domain.UpdateResult
	Elapsed     time.Duration
}

// Rate returns processed pairs per second.
func (s *Summary) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Paired) / s.Elapsed.Seconds()
}

// UpdateService drives the metadata writer over every pair with a bounded
// worker pool. Each unit of work is independent; workers block only on their
// own exiftool process, never on each other.
type UpdateService struct {
	writer ports.MetadataWriter
}

// NewUpdateService creates a new update service
func NewUpdateService(writer ports.MetadataWriter) *UpdateService {
	return &UpdateService{writer: writer}
}

// Execute runs the batch without progress reporting.
func (s *UpdateService) Execute(ctx context.Context, req UpdateRequest) *Summary {
	return s.ExecuteWithProgress(ctx, req, nil)
}

// ExecuteWithProgress runs the batch and streams per-file completions into
// progressChan (closed on return when non-nil). Cancelling ctx lets in-flight
// invocations finish via their own contexts while unstarted pairs are marked
// Failed; the summary still reflects every pair exactly once.
func (s *UpdateService) ExecuteWithProgress(ctx context.Context, req UpdateRequest, progressChan chan<- UpdateProgress) *Summary {
	if progressChan != nil {
		defer close(progressChan)
	}

	start := time.Now()

	summary := &Summary{
		RunID:       uuid.NewString(),
		Scanned:     req.Scanned,
		Paired:      len(req.Pairs),
		Unreadable:  req.Unreadable,
		SkipReasons: make(map[string]int),
	}

	for _, sk := range req.PreSkipped {
		summary.Skipped++
		summary.SkipReasons[sk.Reason]++
	}

	workers := req.Workers
	if workers <= 0 {
		workers = 4
	}

	jobs := make(chan domain.Pair, len(req.Pairs))
	results := make(chan domain.UpdateResult, len(req.Pairs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, jobs, results)
		}()
	}

	for _, pair := range req.Pairs {
		jobs <- pair
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single owning accumulator: no shared mutable counters under
	// concurrent completion.
	total := len(req.Pairs)
	current := 0
	for result := range results {
		current++

		switch result.Status {
		case domain.StatusUpdated:
			summary.Updated++
		case domain.StatusSkipped:
			summary.Skipped++
			summary.SkipReasons[result.Reason]++
		case domain.StatusFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, result)
		}

		if progressChan != nil {
			progressChan <- UpdateProgress{
				Current: current,
				Total:   total,
				Result:  result,
			}
		}
	}

	summary.Elapsed = time.Since(start)
	return summary
}

// worker processes pairs until the jobs channel drains. A cancelled context
// converts the remaining work to failures instead of blocking the run.
func (s *UpdateService) worker(ctx context.Context, jobs <-chan domain.Pair, results chan<- domain.UpdateResult) {
	for pair := range jobs {
		select {
		case <-ctx.Done():
			results <- domain.UpdateResult{
				Media:  pair.Media,
				Status: domain.StatusFailed,
				Reason: ctx.Err().Error(),
			}
			continue
		default:
		}

		if err := s.writer.Apply(ctx, pair.Media.Path, pair.Taken); err != nil {
			results <- domain.UpdateResult{
				Media:  pair.Media,
				Status: domain.StatusFailed,
				Reason: err.Error(),
			}
			continue
		}

		results <- domain.UpdateResult{
			Media:  pair.Media,
			Status: domain.StatusUpdated,
		}
	}
}
