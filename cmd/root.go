package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"takeoutfix/internal/adapters/exiftool"
	"takeoutfix/internal/core/services"
	"takeoutfix/pkg/config"
	"takeoutfix/pkg/ui"
)

var (
	// Global app state, initialized once per invocation
	appConfig *config.Config

	// Services
	scanService   *services.ScanService
	pairService   *services.PairService
	updateService *services.UpdateService

	// Adapters
	metadataWriter *exiftool.Writer
)

var (
	flagConfigPath string
	flagWorkers    int
	flagMaxWorkers int
	flagTimeout    int
	flagDryRun     bool
)

// rootCmd fixes a Takeout tree in place: scan, pair, rewrite timestamps.
var rootCmd = &cobra.Command{
	Use:   "takeoutfix <takeout-dir>",
	Short: "Repair Google Takeout photo and video timestamps",
	Long: ui.StyleTitle.Render("takeoutfix") + " - Google Takeout timestamp repair\n\n" +
		"Pairs every photo and video with its JSON sidecar and rewrites the\n" +
		"embedded and filesystem timestamps to the recorded capture time, so a\n" +
		"bulk import sorts the library correctly.",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: initializeApp,
	RunE:              runFix,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", "", "Path to config file (default: user config dir)")
	pf.IntVarP(&flagWorkers, "workers", "j", 0, "Number of concurrent workers (default: CPU count)")
	pf.IntVar(&flagMaxWorkers, "max-workers", 0, "Override the worker cap (each worker is one exiftool process)")
	pf.IntVar(&flagTimeout, "timeout", -1, "Per-file exiftool timeout in seconds (0 = none)")
	pf.BoolVar(&flagDryRun, "dry-run", false, "Pair and report without modifying any file")
}

// initializeApp loads configuration and wires the services. Flags override
// file values; the resulting Config is immutable for the rest of the run.
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	path := flagConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if flagMaxWorkers > 0 {
		cfg.MaxWorkers = flagMaxWorkers
	}
	if flagTimeout >= 0 {
		cfg.ToolTimeoutSeconds = flagTimeout
	}
	appConfig = cfg

	ui.SetTheme(cfg.ColorTheme)

	// Commands that call exiftool refuse to start without it. Config and
	// doctor still run so the user can diagnose the installation.
	switch cmd.Name() {
	case "takeoutfix", "watch", "scan":
		if !exiftool.IsAvailable() {
			fmt.Println(ui.FormatError("exiftool not found in PATH"))
			fmt.Println(ui.FormatInfo("Install it from https://exiftool.org and re-run"))
			os.Exit(1)
		}
	}

	metadataWriter = exiftool.NewWriter(
		time.Duration(cfg.ToolTimeoutSeconds)*time.Second,
		flagDryRun,
	)

	scanService = services.NewScanService()
	pairService = services.NewPairService(cfg)
	updateService = services.NewUpdateService(metadataWriter)

	return nil
}

// requireDir validates the positional root argument before any work is
// scheduled. An unreadable root is the one fatal configuration error the
// pipeline has besides a missing exiftool.
func requireDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory does not exist: %s", path)
		}
		return "", fmt.Errorf("cannot access directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", path)
	}
	return path, nil
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so in-flight
// exiftool processes can finish while unstarted work is abandoned.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// truncate shortens a string for single-line progress output.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
