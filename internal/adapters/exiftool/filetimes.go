package exiftool

import (
	"os"
	"time"
)

// setFileTimes aligns the file's access and modification times with the
// capture instant. Unix-like platforms expose no portable birth-time setter;
// Windows creation time is handled by the FileCreateDate tag in the same
// exiftool invocation.
func setFileTimes(path string, taken time.Time) {
	// Best effort: a read-only filesystem must not fail an otherwise
	// successful metadata write.
	_ = os.Chtimes(path, taken, taken)
}
