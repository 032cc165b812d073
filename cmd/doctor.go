package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"takeoutfix/internal/adapters/exiftool"
	"takeoutfix/pkg/config"
	"takeoutfix/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [takeout-dir]",
	Short: "Check the health of your takeoutfix installation",
	Long: `Diagnose issues with the takeoutfix setup.

Checks for:
  - exiftool availability and version
  - Configuration file existence and validity
  - Worker settings
  - Target directory accessibility, when given`,
	Args: cobra.MaximumNArgs(1),
	Run:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println(ui.FormatTitle("Takeoutfix Doctor"))
	fmt.Println()

	if len(args) == 1 {
		checkStep("Takeout Directory", func() error {
			root, err := requireDir(args[0])
			if err != nil {
				return err
			}
			// The fixer rewrites files in place, so the tree must be writable.
			probe := filepath.Join(root, ".takeoutfix-doctor")
			f, err := os.Create(probe)
			if err != nil {
				return fmt.Errorf("not writable: %v", err)
			}
			f.Close()
			os.Remove(probe)
			return nil
		})
	}

	checkStep("exiftool (Metadata Writer)", func() error {
		if !exiftool.IsAvailable() {
			return fmt.Errorf("not found in PATH")
		}
		return nil
	})

	checkStep("exiftool Version", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		version, err := exiftool.Version(ctx)
		if err != nil {
			return fmt.Errorf("could not run exiftool -ver: %v", err)
		}
		fmt.Printf("    %s\n", ui.StyleMuted.Render(version))
		return nil
	})

	checkStep("Configuration File", func() error {
		path := flagConfigPath
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults in effect, run 'takeoutfix config --init')", path)
		}
		if _, err := config.Load(path); err != nil {
			return fmt.Errorf("unreadable: %v", err)
		}
		return nil
	})

	checkStep("Worker Settings", func() error {
		workers := appConfig.EffectiveWorkers()
		if workers < 1 {
			return fmt.Errorf("effective worker count is %d", workers)
		}
		fmt.Printf("    %s\n", ui.StyleMuted.Render(fmt.Sprintf("%d workers (max %d)", workers, appConfig.MaxWorkers)))
		return nil
	})
}

// checkStep runs a check function and prints the result nicely
func checkStep(name string, check func() error) {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.FormatSuccess("✔"), name)
	} else {
		fmt.Printf("%s %s\n", ui.FormatError("✘"), name)
		fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	}
}
