package ui

import (
	"fmt"
	"strings"
	"time"
)

// Log levels for progress output. Every line carries a timestamp so runs can
// be redirected to a file and still read like a log.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// LogLine renders one structured progress line: "2006-01-02 15:04:05 LEVEL message".
func LogLine(level, msg string) string {
	ts := time.Now().Format("2006-01-02 15:04:05")

	var styled string
	switch level {
	case LevelError:
		styled = StyleError.Render(level)
	case LevelWarn:
		styled = StyleWarning.Render(level)
	default:
		styled = StyleInfo.Render(level)
	}

	return fmt.Sprintf("%s %s %s", StyleMuted.Render(ts), styled, msg)
}

// Logf prints a formatted structured log line.
func Logf(level, format string, args ...any) {
	fmt.Println(LogLine(level, fmt.Sprintf(format, args...)))
}

// RenderKeyValue formats an aligned "Key: value" line for summaries.
func RenderKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", StyleAccent.Render(key), value)
}

// ProgressBar renders an ASCII bar at the given percentage and width.
func ProgressBar(percentage float64, width int) string {
	filled := int(percentage / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return StyleAccent.Render(bar)
}

// FormatDuration renders a duration the way humans read elapsed run time.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) - 60*minutes
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		hours := int(d.Hours())
		minutes := int(d.Minutes()) - 60*hours
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
}
