package services

import (
	"os"
	"path/filepath"
	"testing"

	"takeoutfix/internal/core/domain"
	"takeoutfix/pkg/config"
)

// fixture writes media files and sidecars into a temp dir and scans it, so
// pairing tests run against the same file sets production would see.
func fixture(t *testing.T, files map[string]string) (*ScanResult, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	scanned, err := NewScanService().Execute(root)
	if err != nil {
		t.Fatal(err)
	}
	return scanned, root
}

const tsDoc = `{"photoTakenTime":{"timestamp":"1623760800"}}`

func newPairService() *PairService {
	return NewPairService(config.DefaultConfig())
}

func pairNames(t *testing.T, result *PairResult) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, p := range result.Pairs {
		out[p.Media.Name] = p.Sidecar.Name
	}
	return out
}

func TestPairService_ExactConventionWins(t *testing.T) {
	scanned, _ := fixture(t, map[string]string{
		"IMG_001.jpg":         "img",
		"IMG_001.jpg.json":    tsDoc,
		"IMG_001.jpg(1).json": tsDoc,
		"IMG_001-edited.json": tsDoc,
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	got := pairNames(t, result)
	if got["IMG_001.jpg"] != "IMG_001.jpg.json" {
		t.Errorf("exact sidecar must win over fuzzy candidates, got %q", got["IMG_001.jpg"])
	}
}

func TestPairService_ForwardMatch(t *testing.T) {
	scanned, _ := fixture(t, map[string]string{
		"IMG_002.jpg":                            "img",
		"IMG_002.jpg.supplemental-metadata.json": tsDoc,
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	got := pairNames(t, result)
	if got["IMG_002.jpg"] != "IMG_002.jpg.supplemental-metadata.json" {
		t.Errorf("forward match failed, got %q", got["IMG_002.jpg"])
	}
}

func TestPairService_ReverseMatchTruncatedSidecar(t *testing.T) {
	// Takeout truncated the sidecar name relative to the media name.
	scanned, _ := fixture(t, map[string]string{
		"BonannoJohn1959VacavilleWithEvaK.jpg":       "img",
		"BonannoJohn1959VacavilleWithEva.json":       tsDoc,
		"SomethingCompletelyUnrelatedElsewhere.json": tsDoc,
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	got := pairNames(t, result)
	if got["BonannoJohn1959VacavilleWithEvaK.jpg"] != "BonannoJohn1959VacavilleWithEva.json" {
		t.Errorf("reverse match failed, got %q", got["BonannoJohn1959VacavilleWithEvaK.jpg"])
	}
}

func TestPairService_ReverseMatchRespectsMinLength(t *testing.T) {
	// A five-character base would prefix-match far too much; below the
	// minimum it must not match at all.
	scanned, _ := fixture(t, map[string]string{
		"IMG_0150_Family_Reunion.jpg": "img",
		"IMG_0.json":                  tsDoc,
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	if len(result.Pairs) != 0 {
		t.Errorf("expected no pair for too-short reverse base, got %v", result.Pairs)
	}
}

func TestPairService_FuzzyCounterSuffix(t *testing.T) {
	scanned, _ := fixture(t, map[string]string{
		"IMG_003.mp4":     "vid",
		"IMG_003(1).json": tsDoc,
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	got := pairNames(t, result)
	if got["IMG_003.mp4"] != "IMG_003(1).json" {
		t.Errorf("fuzzy counter match failed, got %q", got["IMG_003.mp4"])
	}
}

func TestPairService_FuzzyEditedMarker(t *testing.T) {
	scanned, _ := fixture(t, map[string]string{
		"Sunset_Over_The_Harbor_2021-edited.jpg": "img",
		"Sunset_Over_The_Harbor_2021.jpg.json":   tsDoc,
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	got := pairNames(t, result)
	if got["Sunset_Over_The_Harbor_2021-edited.jpg"] != "Sunset_Over_The_Harbor_2021.jpg.json" {
		t.Errorf("edited marker match failed, got %q", got["Sunset_Over_The_Harbor_2021-edited.jpg"])
	}
}

func TestPairService_NoSidecarIsSkipped(t *testing.T) {
	scanned, _ := fixture(t, map[string]string{
		"IMG_lonely.heic": "img",
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	if len(result.Pairs) != 0 {
		t.Fatalf("expected no pairs, got %d", len(result.Pairs))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped, got %d", len(result.Skipped))
	}
	sk := result.Skipped[0]
	if sk.Status != domain.StatusSkipped {
		t.Errorf("expected StatusSkipped, got %v", sk.Status)
	}
	if sk.Reason != string(domain.SkipNoSidecar) {
		t.Errorf("expected reason %q, got %q", domain.SkipNoSidecar, sk.Reason)
	}
}

func TestPairService_MalformedSidecarIsSkippedNotFailed(t *testing.T) {
	scanned, _ := fixture(t, map[string]string{
		"IMG_004.jpg":      "img",
		"IMG_004.jpg.json": `{"title":"IMG_004.jpg"}`, // no photoTakenTime
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	if len(result.Pairs) != 0 {
		t.Fatalf("expected no pairs, got %d", len(result.Pairs))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped, got %d", len(result.Skipped))
	}
	if result.Skipped[0].Status != domain.StatusSkipped {
		t.Errorf("malformed sidecar must yield Skipped, got %v", result.Skipped[0].Status)
	}
}

func TestPairService_SidecarNeverReused(t *testing.T) {
	// Two media files competing for overlapping sidecars: each sidecar may
	// back at most one pair.
	scanned, _ := fixture(t, map[string]string{
		"IMG_005.jpg":         "a",
		"IMG_005(1).jpg":      "b",
		"IMG_005.jpg.json":    tsDoc,
		"IMG_005.jpg(1).json": tsDoc,
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	seen := make(map[string]string)
	for _, p := range result.Pairs {
		if prev, dup := seen[p.Sidecar.Path]; dup {
			t.Fatalf("sidecar %s assigned to both %s and %s", p.Sidecar.Name, prev, p.Media.Name)
		}
		seen[p.Sidecar.Path] = p.Media.Name
	}
	if len(result.Pairs) != 2 {
		t.Errorf("expected both media files paired, got %d pairs", len(result.Pairs))
	}
}

func TestPairService_SidecarsScopedToDirectory(t *testing.T) {
	scanned, _ := fixture(t, map[string]string{
		"a/IMG_006.jpg":      "img",
		"b/IMG_006.jpg.json": tsDoc,
	})

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	if len(result.Pairs) != 0 {
		t.Errorf("sidecar from another directory must not pair, got %v", result.Pairs)
	}
}

func TestPairService_DeterministicTieBreak(t *testing.T) {
	// Two forward candidates; the shorter name difference wins, repeatably.
	files := map[string]string{
		"IMG_007.jpg":                            "img",
		"IMG_007.jpg.json":                       tsDoc,
		"IMG_007.jpg.supplemental-metadata.json": tsDoc,
	}

	var first string
	for i := 0; i < 5; i++ {
		scanned, _ := fixture(t, files)
		result := newPairService().Execute(scanned.Media, scanned.Sidecars)
		got := pairNames(t, result)["IMG_007.jpg"]
		if got != "IMG_007.jpg.json" {
			t.Fatalf("expected exact convention to win, got %q", got)
		}
		if first == "" {
			first = got
		} else if got != first {
			t.Fatalf("non-deterministic pick: %q then %q", first, got)
		}
	}
}

func TestPairService_ExampleScenario(t *testing.T) {
	// The canonical scenario: three media files, two pairable.
	scanned, _ := fixture(t, map[string]string{
		"IMG_001.jpg":      "img",
		"IMG_001.jpg.json": `{"photoTakenTime":{"timestamp":"1700000000"}}`,
		"IMG_002.heic":     "img",
		"IMG_003.mp4":      "vid",
		"IMG_003(1).json":  `{"photoTakenTime":{"timestamp":"1700000100"}}`,
	})

	if len(scanned.Media) != 3 {
		t.Fatalf("expected 3 media scanned, got %d", len(scanned.Media))
	}

	result := newPairService().Execute(scanned.Media, scanned.Sidecars)

	if len(result.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(result.Pairs))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped, got %d", len(result.Skipped))
	}

	for _, p := range result.Pairs {
		switch p.Media.Name {
		case "IMG_001.jpg":
			if p.Taken.Unix() != 1700000000 {
				t.Errorf("IMG_001.jpg taken = %d, want 1700000000", p.Taken.Unix())
			}
		case "IMG_003.mp4":
			if p.Taken.Unix() != 1700000100 {
				t.Errorf("IMG_003.mp4 taken = %d, want 1700000100", p.Taken.Unix())
			}
		default:
			t.Errorf("unexpected pair for %s", p.Media.Name)
		}
	}
}

func TestNormalize_StripsStackedNoise(t *testing.T) {
	svc := newPairService()
	tests := []struct {
		in   string
		want string
	}{
		{"IMG_001-edited", "IMG_001"},
		{"IMG_001(2)", "IMG_001"},
		{"IMG_001-edited(1)", "IMG_001"},
		{"IMG_001_", "IMG_001"},
		{"Party-EFFECTS", "Party"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := svc.normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrimExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IMG_001.jpg", "IMG_001"},
		{"IMG_001.jpg(1)", "IMG_001(1)"},
		{"IMG_001", "IMG_001"},
		{"archive.tar", "archive.tar"}, // not a media extension
	}

	for _, tt := range tests {
		if got := trimExtension(tt.in); got != tt.want {
			t.Errorf("trimExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
