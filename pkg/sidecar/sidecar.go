// Package sidecar extracts the capture timestamp from Google Takeout JSON
// sidecar files. The only field this tool relies on is
// photoTakenTime.timestamp, an epoch-seconds value that Takeout emits
// sometimes as a quoted string and sometimes as a bare number.
package sidecar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrMalformed marks a sidecar whose document cannot be parsed or whose
// photoTakenTime.timestamp field is absent or non-numeric. Callers treat it
// as a per-file skip, never a batch failure.
var ErrMalformed = errors.New("malformed sidecar")

// TakenTime reads the sidecar at path and returns the capture instant in UTC.
func TakenTime(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return ParseTakenTime(data)
}

// ParseTakenTime extracts photoTakenTime.timestamp from a raw sidecar
// document. The document is parsed generically and exactly one typed field is
// pulled out by path; any deviation from the expected shape is ErrMalformed.
func ParseTakenTime(data []byte) (time.Time, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	taken, ok := doc["photoTakenTime"].(map[string]any)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing photoTakenTime", ErrMalformed)
	}

	raw, ok := taken["timestamp"]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing photoTakenTime.timestamp", ErrMalformed)
	}

	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case json.Number:
		text = v.String()
	default:
		return time.Time{}, fmt.Errorf("%w: timestamp is not a number or string", ErrMalformed)
	}

	epoch, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: non-numeric timestamp %q", ErrMalformed, text)
	}

	return time.Unix(epoch, 0).UTC(), nil
}
