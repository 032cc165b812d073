package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"takeoutfix/internal/core/domain"
	"takeoutfix/internal/core/services"
	"takeoutfix/pkg/ui"
)

func runFix(cmd *cobra.Command, args []string) error {
	root, err := requireDir(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	workers := appConfig.EffectiveWorkers()

	fmt.Println(ui.FormatTitle("takeoutfix"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Directory", root))
	fmt.Println(ui.RenderKeyValue("Workers", fmt.Sprintf("%d", workers)))
	if appConfig.ToolTimeoutSeconds > 0 {
		fmt.Println(ui.RenderKeyValue("Per-file timeout", fmt.Sprintf("%ds", appConfig.ToolTimeoutSeconds)))
	}
	if flagDryRun {
		fmt.Println(ui.RenderKeyValue("Mode", ui.StyleWarning.Render("dry run")))
	}
	fmt.Println()

	summary, err := fixTree(ctx, root, workers)
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

// fixTree runs the whole pipeline over one directory tree: scan, pair,
// batch-update.
func fixTree(ctx context.Context, root string, workers int) (*services.Summary, error) {
	ui.Logf(ui.LevelInfo, "scanning %s", root)

	scanned, err := scanService.Execute(root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	ui.Logf(ui.LevelInfo, "found %d media files and %d sidecars (%d unreadable entries)",
		len(scanned.Media), len(scanned.Sidecars), scanned.Unreadable)

	paired := pairService.Execute(scanned.Media, scanned.Sidecars)
	ui.Logf(ui.LevelInfo, "paired %d of %d media files", len(paired.Pairs), len(scanned.Media))

	return runBatch(ctx, services.UpdateRequest{
		Pairs:      paired.Pairs,
		PreSkipped: paired.Skipped,
		Scanned:    len(scanned.Media),
		Unreadable: scanned.Unreadable,
		Workers:    workers,
	}), nil
}

// runBatch drives the update service and renders progress while it runs.
func runBatch(ctx context.Context, req services.UpdateRequest) *services.Summary {
	progressChan := make(chan services.UpdateProgress, len(req.Pairs))
	resultChan := make(chan *services.Summary, 1)

	go func() {
		resultChan <- updateService.ExecuteWithProgress(ctx, req, progressChan)
	}()

	start := time.Now()
	for progress := range progressChan {
		renderProgress(progress, start)
	}
	fmt.Println()

	return <-resultChan
}

func renderProgress(p services.UpdateProgress, start time.Time) {
	if p.Result.Status == domain.StatusFailed {
		// Per-file diagnostics go above the progress bar line.
		fmt.Print("\r\033[K")
		ui.Logf(ui.LevelWarn, "%s: %s", p.Result.Media.Name, p.Result.Reason)
	}

	percentage := float64(p.Current) / float64(p.Total) * 100
	fmt.Printf("\r%s [%d/%d] %s",
		ui.ProgressBar(percentage, 30),
		p.Current,
		p.Total,
		truncate(p.Result.Media.Name, 30),
	)

	if p.Current%appConfig.ProgressEvery == 0 || p.Current == p.Total {
		rate, eta := progressStats(p.Current, p.Total, time.Since(start))
		fmt.Print("\r\033[K")
		ui.Logf(ui.LevelInfo, "progress %d/%d (%.1f%%) %.1f files/sec eta %s",
			p.Current, p.Total, percentage, rate, ui.FormatDuration(eta))
	}
}

// progressStats derives throughput and remaining time for one progress line.
// A zero elapsed reading yields zeros rather than an infinite rate.
func progressStats(current, total int, elapsed time.Duration) (rate float64, eta time.Duration) {
	if elapsed <= 0 || current <= 0 {
		return 0, 0
	}
	rate = float64(current) / elapsed.Seconds()
	eta = time.Duration(float64(total-current)/rate) * time.Second
	return rate, eta
}

func printSummary(s *services.Summary) {
	fmt.Println()
	fmt.Println(ui.FormatTitle("Summary"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Run", s.RunID))
	fmt.Println(ui.RenderKeyValue("Scanned", fmt.Sprintf("%d", s.Scanned)))
	fmt.Println(ui.RenderKeyValue("Paired", fmt.Sprintf("%d", s.Paired)))
	fmt.Println(ui.RenderKeyValue("Updated", ui.StyleSuccess.Render(fmt.Sprintf("%d", s.Updated))))
	fmt.Println(ui.RenderKeyValue("Skipped", fmt.Sprintf("%d", s.Skipped)))
	if s.Failed > 0 {
		fmt.Println(ui.RenderKeyValue("Failed", ui.StyleError.Render(fmt.Sprintf("%d", s.Failed))))
	} else {
		fmt.Println(ui.RenderKeyValue("Failed", "0"))
	}
	if s.Unreadable > 0 {
		fmt.Println(ui.RenderKeyValue("Unreadable entries", fmt.Sprintf("%d", s.Unreadable)))
	}
	fmt.Println(ui.RenderKeyValue("Elapsed", ui.FormatDuration(s.Elapsed)))
	fmt.Println(ui.RenderKeyValue("Rate", fmt.Sprintf("%.1f files/sec", s.Rate())))

	if len(s.SkipReasons) > 0 {
		fmt.Println()
		fmt.Println(ui.FormatMuted("Skip reasons:"))
		for reason, count := range s.SkipReasons {
			fmt.Println(ui.FormatMuted(fmt.Sprintf("  • %s: %d", reason, count)))
		}
	}

	if len(s.Failures) > 0 {
		fmt.Println()
		fmt.Println(ui.FormatWarning("Failed files:"))
		for _, f := range s.Failures {
			fmt.Println(ui.FormatMuted("  • " + f.Media.Path + ": " + f.Reason))
		}
	}

	fmt.Println()
	if s.Failed == 0 && s.Updated > 0 {
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Updated %d files", s.Updated)))
	} else if s.Failed > 0 {
		fmt.Println(ui.FormatWarning(fmt.Sprintf("Updated %d files, %d failed", s.Updated, s.Failed)))
	} else {
		fmt.Println(ui.FormatInfo("Nothing to update"))
	}
}
