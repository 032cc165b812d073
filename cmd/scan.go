package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"takeoutfix/internal/adapters/exiftool"
	"takeoutfix/internal/core/ports"
	"takeoutfix/internal/core/services"
	"takeoutfix/pkg/ui"
)

var scanCmd = &cobra.Command{
	Use:   "scan <takeout-dir>",
	Short: "Audit media files for missing timestamp metadata",
	Long: `Scan walks the directory tree and reads each media file's embedded
date fields without modifying anything. Files that carry no usable
timestamp are listed in a report so they can be reviewed or re-run
through the fixer.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := requireDir(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	workers := appConfig.EffectiveWorkers()

	fmt.Println(ui.FormatTitle("takeoutfix scan"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Directory", root))
	fmt.Println(ui.RenderKeyValue("Workers", fmt.Sprintf("%d", workers)))
	fmt.Println()

	scanned, err := scanService.Execute(root)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	ui.Logf(ui.LevelInfo, "auditing %d media files", len(scanned.Media))

	audit := services.NewAuditService(func() (ports.MetadataReader, error) {
		return exiftool.NewReader()
	})
	result, err := audit.Execute(ctx, scanned.Media, workers)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Checked", fmt.Sprintf("%d", result.Total)))
	fmt.Println(ui.RenderKeyValue("Missing timestamps", fmt.Sprintf("%d", len(result.Missing))))
	if result.Unreadable > 0 {
		fmt.Println(ui.RenderKeyValue("Unreadable", fmt.Sprintf("%d", result.Unreadable)))
	}
	fmt.Println(ui.RenderKeyValue("Elapsed", ui.FormatDuration(result.Elapsed)))

	if len(result.Missing) == 0 {
		fmt.Println()
		fmt.Println(ui.FormatSuccess("All media files carry a timestamp"))
		return nil
	}

	reportPath, err := writeScanReport(root, result.Missing)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Println()
	fmt.Println(ui.FormatWarning(fmt.Sprintf("%d files are missing timestamps", len(result.Missing))))
	fmt.Println(ui.FormatInfo("Report written to " + reportPath))
	return nil
}

// writeScanReport drops a plain-text list of affected paths next to the
// scanned tree, one path per line.
func writeScanReport(root string, missing []string) (string, error) {
	name := fmt.Sprintf("missing_timestamps_%s.log", time.Now().Format("20060102_150405"))
	path := filepath.Join(root, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	for _, p := range missing {
		if _, err := fmt.Fprintln(f, p); err != nil {
			return "", err
		}
	}
	return path, nil
}
