package expand

import (
	"fmt"
	"strconv"
	"strings"
)

// Braces performs bash brace expansion on a word's literal source text
// (spec.md §4.5's brace-expansion phase, which runs before tilde
// expansion and operates on raw text rather than already-split
// fields). Malformed brace expressions are left untouched rather than
// erroring, matching bash's own forgiving behavior.
//
// Grounded on the teacher's expand/braces.go, which merely forwarded
// to the (now-removed, syntax-v2-only) `syntax.ExpandBraces` helper
// operating on `*syntax.Word` node trees; this repo needs the
// expansion to run on literal text before C2 has even built a Word
// (bash brace expansion is explicitly textual, not AST-based — a
// single `{a,b}` token may itself contain nested expansions and
// quoting is not honored inside its list), so this is a fresh
// string-based implementation of the same algorithm bash documents,
// supplemented by original_source's distillation of brace semantics
// where the spec was silent on range-step syntax.
func Braces(s string) []string {
	out := expandBraces(s)
	if len(out) == 0 {
		return []string{s}
	}
	return out
}

// expandBraces scans left to right for the first '{' that actually
// opens a matched, expandable group (a matching '}' and either a
// comma list or a valid range). A '{' with no match, or one that
// turns out to hold a single non-range item, is left as literal text
// and the scan resumes after it — bash does not abandon the whole
// word just because one brace never closes.
func expandBraces(s string) []string {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		end, items := findBraceItems(s, start)
		if end < 0 || (len(items) < 2 && !isRange(items)) {
			continue
		}

		prefix, suffix := s[:start], s[end+1:]
		var alts []string
		if r := rangeAlts(items); r != nil {
			alts = r
		} else {
			alts = items
		}

		var out []string
		for _, alt := range alts {
			combined := prefix + alt + suffix
			if nested := expandBraces(combined); nested != nil {
				out = append(out, nested...)
			} else {
				out = append(out, combined)
			}
		}
		return out
	}
	return nil
}

// findBraceItems splits the top-level comma list inside the brace
// starting at s[start]=='{', respecting nested braces, and returns the
// index of the matching '}' plus the raw items between commas.
func findBraceItems(s string, start int) (int, []string) {
	depth := 0
	itemStart := start + 1
	var items []string
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				items = append(items, s[itemStart:i])
				return i, items
			}
		case ',':
			if depth == 1 {
				items = append(items, s[itemStart:i])
				itemStart = i + 1
			}
		}
	}
	return -1, nil
}

func isRange(items []string) bool {
	return len(items) == 1 && rangeAlts(items[0]) != nil
}

// rangeAlts recognizes `{a..z}`, `{1..10}`, and `{1..10..2}` forms.
func rangeAlts(v any) []string {
	var item string
	switch t := v.(type) {
	case string:
		item = t
	case []string:
		if len(t) != 1 {
			return nil
		}
		item = t[0]
	default:
		return nil
	}
	parts := strings.Split(item, "..")
	if len(parts) < 2 || len(parts) > 3 {
		return nil
	}
	step := 1
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil
		}
		if n != 0 {
			step = n
		}
	}
	if step < 0 {
		step = -step
	}
	if lo, hi, ok := numRange(parts[0], parts[1]); ok {
		return intRangeAlts(lo, hi, step)
	}
	if len(parts[0]) == 1 && len(parts[1]) == 1 && isAlpha(parts[0][0]) && isAlpha(parts[1][0]) {
		return charRangeAlts(parts[0][0], parts[1][0], step)
	}
	return nil
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func numRange(a, b string) (int, int, bool) {
	lo, err1 := strconv.Atoi(a)
	hi, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

func intRangeAlts(lo, hi, step int) []string {
	var out []string
	if step == 0 {
		step = 1
	}
	if lo <= hi {
		for v := lo; v <= hi; v += step {
			out = append(out, strconv.Itoa(v))
		}
	} else {
		for v := lo; v >= hi; v -= step {
			out = append(out, strconv.Itoa(v))
		}
	}
	return out
}

func charRangeAlts(lo, hi byte, step int) []string {
	var out []string
	if step == 0 {
		step = 1
	}
	if lo <= hi {
		for v := int(lo); v <= int(hi); v += step {
			out = append(out, fmt.Sprintf("%c", byte(v)))
		}
	} else {
		for v := int(lo); v >= int(hi); v -= step {
			out = append(out, fmt.Sprintf("%c", byte(v)))
		}
	}
	return out
}
