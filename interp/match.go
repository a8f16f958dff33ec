// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"regexp"

	"github.com/brushsh/brush/pattern"
)

// globMatch reports whether subject matches the shell pattern pat, per
// spec.md §4.5/§4.9's use of the pattern engine (C6) for `case`-clause
// and `[[ ]]` `==`/`!=` matching. This replaces the teacher's own
// hand-rolled translatePattern (a small subset of glob syntax good
// enough for its synchronous runner) with the shared, more complete
// pattern package also used by C5's pathname expansion, so `case` and
// `[[` see the exact same extglob/bracket-expression semantics as
// filename globbing.
func globMatch(pat, subject string) bool {
	expr, err := pattern.Regexp(pat, pattern.EntireString)
	if err != nil {
		return pat == subject
	}
	rx, err := regexp.Compile(expr)
	if err != nil {
		return pat == subject
	}
	return rx.MatchString(subject)
}

// findAllIndex locates the non-overlapping matches of pat within s: at
// most n of them, or all of them when n < 0.
func findAllIndex(pat, s string, n int) [][]int {
	expr, err := pattern.Regexp(pat, 0)
	if err != nil {
		return nil
	}
	rx, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return rx.FindAllStringIndex(s, n)
}
