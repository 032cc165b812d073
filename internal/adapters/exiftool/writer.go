// Package exiftool adapts the external exiftool binary: writing the full
// date-field set onto media files, and reading date tags back for audits.
package exiftool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const toolName = "exiftool"

// pipeWaitDelay bounds how long Run waits for the stderr pipe after the
// process is killed. exiftool may be installed as a wrapper script whose
// children inherit the pipe and outlive the kill.
const pipeWaitDelay = 3 * time.Second

// dateFields is the fixed, priority-ordered field set stamped onto every
// file. Sub-second variants come first because photo importers prefer the
// most specific tag they can find; video tags and coarse fallbacks follow.
// Every field is written unconditionally, prior values are never read.
var dateFields = []struct {
	name   string
	subsec bool
}{
	{"SubSecDateTimeOriginal", true},
	{"DateTimeOriginal", false},
	{"SubSecCreateDate", true},
	{"CreationDate", false},
	{"CreateDate", false},
	{"SubSecMediaCreateDate", true},
	{"MediaCreateDate", false},
	{"DateTimeCreated", false},
	{"DateTime", false},
	{"DateTimeDigitized", false},
	{"SubSecDateTime", true},
	{"SubSecDateTimeDigitized", true},
	{"ContentCreateDate", false},
	{"TrackCreateDate", false},
	{"MediaModifyDate", false},
	{"FileModifyDate", false},
	{"FileCreateDate", false},
	{"ModifyDate", false},
	{"MetadataDate", false},
	{"DigitalCreationDate", false},
	{"DateCreated", false},
}

// Writer invokes exiftool once per media file. It implements the
// ports.MetadataWriter interface.
type Writer struct {
	timeout time.Duration // per-invocation cap; 0 means no timeout
	dryRun  bool
}

// NewWriter creates a new exiftool writer
func NewWriter(timeout time.Duration, dryRun bool) *Writer {
	return &Writer{timeout: timeout, dryRun: dryRun}
}

// Apply overwrites every date field of the file at path with taken, then
// aligns the filesystem timestamps. All failures come back as ordinary
// errors for the orchestrator to count; nothing here aborts a batch.
// Re-running with the same instant is a pure overwrite and therefore
// idempotent.
func (w *Writer) Apply(ctx context.Context, path string, taken time.Time) error {
	if w.dryRun {
		return nil
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, toolName, Args(path, taken)...)
	cmd.WaitDelay = pipeWaitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	errText := strings.TrimSpace(stderr.String())

	// Exit status zero with a silent error channel is the only success.
	if err != nil || errText != "" {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("exiftool timed out after %s", w.timeout)
		}
		if errText != "" {
			return fmt.Errorf("exiftool: %s", truncateError(errText))
		}
		return fmt.Errorf("exiftool: %w", err)
	}

	// The FileCreateDate tag covers creation time where the platform exposes
	// it; mtime/atime are set directly so filesystem and embedded metadata
	// agree. A chtimes failure does not undo a successful tag write.
	setFileTimes(path, taken)

	return nil
}

// Args builds the full argument list for one invocation: force in-place
// overwrite with no backup copy, quiet output, preserve flag order, then
// every date assignment derived from the same instant.
func Args(path string, taken time.Time) []string {
	args := []string{"-overwrite_original", "-P", "-q"}
	args = append(args, DateArgs(taken)...)
	args = append(args, path)
	return args
}

// DateArgs renders the ordered field assignments for taken. All values are
// formatted in UTC from the same instant; sub-second fields carry a zero
// millisecond suffix since Takeout timestamps have second precision.
func DateArgs(taken time.Time) []string {
	base := taken.UTC().Format("2006:01:02 15:04:05")
	subsec := base + ".000"

	args := make([]string, 0, len(dateFields))
	for _, f := range dateFields {
		value := base
		if f.subsec {
			value = subsec
		}
		args = append(args, fmt.Sprintf("-%s=%s", f.name, value))
	}
	return args
}

// truncateError keeps per-file diagnostics to one readable line.
func truncateError(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// IsAvailable checks if exiftool is installed and on the PATH.
func IsAvailable() bool {
	_, err := exec.LookPath(toolName)
	return err == nil
}

// Version returns the installed exiftool version string.
func Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, toolName, "-ver").Output()
	if err != nil {
		return "", fmt.Errorf("exiftool not available: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
