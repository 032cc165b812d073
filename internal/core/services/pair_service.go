package services

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"takeoutfix/internal/core/domain"
	"takeoutfix/pkg/config"
	"takeoutfix/pkg/sidecar"
)

// PairResult holds the pairs formed from one scan plus the media files that
// could not be paired.
type PairResult struct {
	Pairs   []domain.Pair
	Skipped []domain.UpdateResult // StatusSkipped entries, one per unpaired media file
}

// matchStrategy is a pure filename predicate. It reports whether sidecarBase
// (the sidecar name with .json stripped) belongs to mediaName, and with what
// strength; higher strength wins within a strategy. Strategies never touch
// the filesystem, which keeps them independently testable.
type matchStrategy struct {
	name  string
	match func(mediaName, sidecarBase string) (strength int, ok bool)
}

// PairService matches every media file to at most one JSON sidecar.
//
// Google Takeout's sidecar naming is inconsistent: the canonical form is
// "<media name>.json", but names get truncated to fit filename limits,
// counter suffixes move around ("IMG(1).jpg" vs "IMG.jpg(1).json"), and
// edited duplicates carry marker suffixes. The strategies below are tried in
// priority order; the first one producing any candidate wins for that file.
type PairService struct {
	strategies []matchStrategy
	noise      []string
}

var counterSuffix = regexp.MustCompile(`\(\d+\)$`)

// NewPairService creates a new pair service
func NewPairService(cfg *config.Config) *PairService {
	s := &PairService{noise: cfg.NoiseSuffixes}
	s.strategies = []matchStrategy{
		{name: "exact", match: matchExact},
		{name: "forward", match: matchForward},
		{name: "reverse", match: reverseMatcher(cfg.ReverseMinLength)},
		{name: "fuzzy", match: s.fuzzyMatcher(cfg.FuzzyMinPrefix)},
	}
	return s
}

// Execute pairs media files with sidecars and extracts each pair's capture
// timestamp. Sidecar candidates are scoped to the media file's own directory.
// A consumed sidecar leaves the pool, so no sidecar ever backs two pairs.
func (s *PairService) Execute(media []domain.MediaFile, sidecars []domain.Sidecar) *PairResult {
	result := &PairResult{}

	// Per-directory candidate pools. Input slices are sorted by the scanner,
	// so pool order (and therefore tie-breaking) is deterministic.
	pool := make(map[string][]*poolEntry)
	for i := range sidecars {
		sc := sidecars[i]
		pool[sc.Dir] = append(pool[sc.Dir], &poolEntry{sidecar: sc})
	}

	for _, m := range media {
		entry := s.findSidecar(m, pool[m.Dir])
		if entry == nil {
			result.Skipped = append(result.Skipped, domain.UpdateResult{
				Media:  m,
				Status: domain.StatusSkipped,
				Reason: string(domain.SkipNoSidecar),
			})
			continue
		}

		entry.consumed = true

		taken, err := sidecar.TakenTime(entry.sidecar.Path)
		if err != nil {
			// The sidecar is this file's sidecar, it is just unusable. Not
			// the media file's fault: count it Skipped, never Failed.
			reason := string(domain.SkipMalformed)
			if !errors.Is(err, sidecar.ErrMalformed) {
				reason = err.Error()
			}
			result.Skipped = append(result.Skipped, domain.UpdateResult{
				Media:  m,
				Status: domain.StatusSkipped,
				Reason: reason,
			})
			continue
		}

		result.Pairs = append(result.Pairs, domain.Pair{
			Media:   m,
			Sidecar: entry.sidecar,
			Taken:   taken,
		})
	}

	return result
}

type poolEntry struct {
	sidecar  domain.Sidecar
	consumed bool
}

type candidate struct {
	entry    *poolEntry
	strength int
}

// findSidecar runs the strategies in priority order and returns the winning
// unconsumed sidecar, or nil when nothing matches.
func (s *PairService) findSidecar(m domain.MediaFile, entries []*poolEntry) *poolEntry {
	for _, strat := range s.strategies {
		var candidates []candidate
		for _, e := range entries {
			if e.consumed {
				continue
			}
			if strength, ok := strat.match(m.Name, e.sidecar.Base()); ok {
				candidates = append(candidates, candidate{entry: e, strength: strength})
			}
		}
		if len(candidates) == 0 {
			continue
		}
		return pickBest(m, candidates).entry
	}
	return nil
}

// pickBest resolves ambiguity deterministically: highest strength, then
// smallest name-length difference, then lexicographic path.
func pickBest(m domain.MediaFile, candidates []candidate) candidate {
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.strength != cj.strength {
			return ci.strength > cj.strength
		}
		di := lenDiff(m.Name, ci.entry.sidecar.Base())
		dj := lenDiff(m.Name, cj.entry.sidecar.Base())
		if di != dj {
			return di < dj
		}
		return ci.entry.sidecar.Path < cj.entry.sidecar.Path
	})
	return candidates[0]
}

func lenDiff(a, b string) int {
	d := len(a) - len(b)
	if d < 0 {
		return -d
	}
	return d
}

// matchExact handles the canonical Takeout convention: the sidecar is the
// full media filename plus ".json".
func matchExact(mediaName, sidecarBase string) (int, bool) {
	if sidecarBase == mediaName {
		return len(mediaName), true
	}
	return 0, false
}

// matchForward handles sidecar names that extend the media name, such as
// "IMG.jpg.supplemental-metadata.json" or counter forms "IMG.jpg(1).json".
func matchForward(mediaName, sidecarBase string) (int, bool) {
	if strings.HasPrefix(sidecarBase, mediaName) {
		return len(mediaName), true
	}
	return 0, false
}

// reverseMatcher handles sidecar names truncated relative to the media name.
// Very short bases would match half the directory, hence the minimum length.
func reverseMatcher(minLength int) func(string, string) (int, bool) {
	return func(mediaName, sidecarBase string) (int, bool) {
		if len(sidecarBase) >= minLength && strings.HasPrefix(mediaName, sidecarBase) {
			return len(sidecarBase), true
		}
		return 0, false
	}
}

// fuzzyMatcher compares normalized stems: noise suffixes, parenthesised
// counters and trailing underscores are stripped from both sides, then the
// longest common prefix decides. Equal normalized stems always match;
// otherwise the common prefix must reach minPrefix.
func (s *PairService) fuzzyMatcher(minPrefix int) func(string, string) (int, bool) {
	return func(mediaName, sidecarBase string) (int, bool) {
		ms := s.normalize(trimExtension(mediaName))
		ss := s.normalize(trimExtension(sidecarBase))
		if ms == "" || ss == "" {
			return 0, false
		}

		lcp := commonPrefixLen(ms, ss)
		if ms == ss {
			return lcp, true
		}
		if lcp >= minPrefix {
			return lcp, true
		}
		return 0, false
	}
}

// normalize strips recognized noise from the end of a stem until the name is
// stable: "(1)" counters, configured edit markers, trailing underscores.
func (s *PairService) normalize(stem string) string {
	for {
		next := counterSuffix.ReplaceAllString(stem, "")
		next = strings.TrimSuffix(next, "_")
		for _, suffix := range s.noise {
			if strings.HasSuffix(strings.ToLower(next), strings.ToLower(suffix)) {
				next = next[:len(next)-len(suffix)]
			}
		}
		if next == stem {
			return stem
		}
		stem = next
	}
}

// trimExtension removes a trailing media extension, if present. Sidecar bases
// usually embed one ("IMG_001.jpg"); plain stems pass through unchanged.
func trimExtension(name string) string {
	// Counter can follow the extension: "IMG.jpg(1)".
	counter := counterSuffix.FindString(name)
	trimmed := strings.TrimSuffix(name, counter)

	ext := strings.ToLower(extOf(trimmed))
	if domain.IsMediaExtension(ext) {
		trimmed = trimmed[:len(trimmed)-len(ext)]
	}
	return trimmed + counter
}

// extOf mirrors filepath.Ext for bare names; sidecar bases are never paths.
func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
