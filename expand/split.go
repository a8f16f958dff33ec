package expand

import "strings"

// allQuoted reports whether every part of f came from a quoting
// context, in which case IFS splitting never applies to it at all
// (spec.md §4.5 phase 3's "quoted text is never split" rule) — this
// also correctly preserves a field built entirely from `""`/`''`,
// including the empty string, as exactly one argument.
func allQuoted(f field) bool {
	for _, p := range f {
		if !p.quoted {
			return false
		}
	}
	return len(f) > 0
}

// splitField implements spec.md §4.5 phase 3: IFS-based word
// splitting of the unquoted portions of one expanded field. Grounded
// on the teacher's general field-splitting approach (now-removed
// expand/expand.go), generalized here to track quoting per
// substring so that splitting and the later globField pass can tell
// which bytes came from quotes.
//
// This implements the common case exactly (default IFS, or IFS
// containing only whitespace) and a reasonable approximation of
// bash's more exotic custom-IFS corner cases (e.g. a run of
// whitespace immediately surrounding a non-whitespace delimiter):
// every individual occurrence of a non-whitespace IFS byte always
// ends a field, even producing an empty one between two adjacent
// delimiters, while IFS whitespace runs coalesce into a single split
// point and never produce empty fields on their own.
func (c *Config) splitField(f field) []field {
	if allQuoted(f) {
		return []field{f}
	}
	ifs, ok := c.Shell.Env.GetStr("IFS")
	if !ok {
		ifs = " \t\n"
	}
	if ifs == "" {
		return []field{f}
	}
	isWS := func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }
	isIFS := func(r rune) bool { return strings.ContainsRune(ifs, r) }

	var out []field
	var cur field
	haveContent := false

	appendLit := func(s string, quoted bool) {
		if s != "" {
			cur = append(cur, part{s: s, quoted: quoted})
			haveContent = true
		}
	}
	endField := func() {
		out = append(out, cur)
		cur = nil
		haveContent = false
	}

	for _, p := range f {
		if p.quoted || p.extGlob != nil {
			cur = append(cur, p)
			haveContent = true
			continue
		}
		var lit strings.Builder
		for _, r := range p.s {
			if !isIFS(r) {
				lit.WriteRune(r)
				continue
			}
			appendLit(lit.String(), false)
			lit.Reset()
			if isWS(r) {
				if haveContent {
					endField()
				}
				continue
			}
			endField()
		}
		appendLit(lit.String(), false)
	}
	if haveContent {
		out = append(out, cur)
	}
	return out
}
