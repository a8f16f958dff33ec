package completion

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/brushsh/brush/pattern"
)

// filterCandidates applies spec.md §4.13's "prefix, fignore, casematch"
// filters in that order: candidates not sharing the word's prefix are
// dropped first (case-insensitively when nocasematch is set), then
// anything matching one of FIGNORE's colon-separated glob patterns.
func filterCandidates(cands []Candidate, prefix, fignore string, nocasematch bool) []Candidate {
	out := cands[:0:0]
	patterns := splitFignore(fignore)
	for _, c := range cands {
		if !hasPrefix(c.Value, prefix, nocasematch) {
			continue
		}
		if matchesFignore(c.Value, patterns) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasPrefix(value, prefix string, nocasematch bool) bool {
	if !nocasematch {
		return strings.HasPrefix(value, prefix)
	}
	return strings.HasPrefix(strings.ToLower(value), strings.ToLower(prefix))
}

func splitFignore(fignore string) []string {
	if fignore == "" {
		return nil
	}
	return strings.Split(fignore, ":")
}

// matchesFignore reports whether base's filename component matches any
// of FIGNORE's glob patterns, per bash's documented FIGNORE semantics
// (matched against the candidate's base name, not its full path).
func matchesFignore(value string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	base := filepath.Base(strings.TrimSuffix(value, string(filepath.Separator)))
	for _, pat := range patterns {
		frag, err := pattern.Regexp(pat, pattern.EntireString)
		if err != nil {
			continue
		}
		if ok, err := regexp.MatchString(frag, base); err == nil && ok {
			return true
		}
	}
	return false
}
