package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"takeoutfix/internal/core/domain"
	"takeoutfix/internal/core/services"
	"takeoutfix/pkg/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <takeout-dir>",
	Short: "Watch a directory and fix new media files as they appear",
	Long: `Watch performs a full pass over the directory tree, then keeps
running and processes media files added afterwards. Useful while a
large Takeout archive is still being extracted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := requireDir(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	workers := appConfig.EffectiveWorkers()
	debounce := time.Duration(appConfig.WatchDebounceMS) * time.Millisecond

	fmt.Println(ui.FormatTitle("takeoutfix watch"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Directory", root))
	fmt.Println(ui.RenderKeyValue("Workers", fmt.Sprintf("%d", workers)))
	fmt.Println(ui.RenderKeyValue("Debounce", debounce.String()))
	fmt.Println()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchTree(watcher, root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	// Initial full pass. Everything it touches is remembered so later
	// passes only handle files that appeared after startup.
	seen := make(map[string]bool)
	if err := processNew(ctx, root, workers, seen); err != nil {
		return err
	}

	ui.Logf(ui.LevelInfo, "watching for new files (ctrl-c to stop)")

	bounce := &debouncer{delay: debounce}
	defer bounce.stop()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			ui.Logf(ui.LevelInfo, "stopping watch")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			// New subdirectories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = addWatchTree(watcher, event.Name)
				}
			}
			pending = bounce.trigger()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ui.Logf(ui.LevelWarn, "watch error: %v", watchErr)

		case <-pending:
			pending = nil
			if err := processNew(ctx, root, workers, seen); err != nil {
				ui.Logf(ui.LevelWarn, "pass failed: %v", err)
			}
		}
	}
}

// processNew runs one incremental pass over files not yet handled.
func processNew(ctx context.Context, root string, workers int, seen map[string]bool) error {
	scanned, err := scanService.Execute(root)
	if err != nil {
		return err
	}

	var fresh []domain.MediaFile
	for _, m := range scanned.Media {
		if !seen[m.Path] {
			fresh = append(fresh, m)
			seen[m.Path] = true
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	ui.Logf(ui.LevelInfo, "processing %d new media files", len(fresh))

	paired := pairService.Execute(fresh, scanned.Sidecars)
	summary := runBatch(ctx, services.UpdateRequest{
		Pairs:      paired.Pairs,
		PreSkipped: paired.Skipped,
		Scanned:    len(fresh),
		Unreadable: scanned.Unreadable,
		Workers:    workers,
	})
	printSummary(summary)
	return nil
}

// debouncer coalesces bursts of filesystem events into a single firing.
// Each trigger pushes the deadline out by the full delay; stop releases the
// underlying timer.
type debouncer struct {
	delay time.Duration
	timer *time.Timer
}

func (b *debouncer) trigger() <-chan time.Time {
	if b.timer == nil {
		b.timer = time.NewTimer(b.delay)
	} else {
		b.timer.Reset(b.delay)
	}
	return b.timer.C
}

func (b *debouncer) stop() {
	if b.timer != nil {
		b.timer.Stop()
	}
}

// addWatchTree registers the directory and every subdirectory with the
// watcher. fsnotify watches are not recursive on their own.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if watchErr := watcher.Add(path); watchErr != nil {
				ui.Logf(ui.LevelWarn, "cannot watch %s: %v", path, watchErr)
			}
		}
		return nil
	})
}
