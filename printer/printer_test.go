// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/diff"

	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/parser"
)

func printSrc(t *testing.T, src string, c Config) string {
	t.Helper()
	p := parser.NewParser(lexer.Options{})
	prog, err := p.Parse([]byte(src), "")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	var buf bytes.Buffer
	if err := c.Fprint(&buf, prog); err != nil {
		t.Fatalf("print %q: %v", src, err)
	}
	return buf.String()
}

// unifiedDiff renders a line-level diff between two printed outputs, used
// in place of raw %q dumps so a mismatched tab/space or reordered line in
// the printer's output doesn't have to be spotted by eye.
func unifiedDiff(t *testing.T, want, got string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := diff.Text("want", "got", strings.NewReader(want), strings.NewReader(got), &buf); err != nil {
		t.Fatalf("computing diff: %v", err)
	}
	return buf.String()
}

func TestFprint(t *testing.T) {
	tests := []struct{ in, want string }{
		{"echo foo", "echo foo\n"},
		{"echo  foo   bar", "echo foo bar\n"},
		{"foo=bar", "foo=bar\n"},
		{"a=1 b=2 echo", "a=1 b=2 echo\n"},
		{"echo foo; echo bar", "echo foo\necho bar\n"},
		{"echo a && echo b", "echo a && echo b\n"},
		{"echo a | echo b", "echo a | echo b\n"},
		{"echo foo &", "echo foo &\n"},
		{
			"if foo; then bar; fi",
			"if foo; then\n\tbar\nfi\n",
		},
		{
			"while foo; do bar; done",
			"while foo; do\n\tbar\ndone\n",
		},
		{
			"for x in a b c; do echo $x; done",
			"for x in a b c; do\n\techo $x\ndone\n",
		},
		{
			"case $x in a) foo;; b) bar;; esac",
			"case $x in\na)\n\tfoo\n\t;;\nb)\n\tbar\n\t;;\nesac\n",
		},
		{
			"f() { echo hi; }",
			"f() {\n\techo hi\n}\n",
		},
	}
	for _, tc := range tests {
		got := printSrc(t, tc.in, Config{})
		if got != tc.want {
			t.Errorf("Fprint(%q) mismatch:\n%s", tc.in, unifiedDiff(t, tc.want, got))
		}
	}
}

func TestFprintIdempotent(t *testing.T) {
	srcs := []string{
		"echo foo",
		"if foo; then bar; else baz; fi",
		"for x in a b c; do echo $x; done",
		"f() { echo hi; }",
	}
	for _, src := range srcs {
		once := printSrc(t, src, Config{})
		twice := printSrc(t, once, Config{})
		if once != twice {
			t.Errorf("printing %q twice is not stable:\n%s", src, unifiedDiff(t, once, twice))
		}
	}
}

func TestFprintSpaces(t *testing.T) {
	got := printSrc(t, "if foo; then bar; fi", Config{Spaces: 2})
	want := "if foo; then\n  bar\nfi\n"
	if got != want {
		t.Errorf("Fprint with Spaces: 2:\nwant %q\ngot  %q", want, got)
	}
}
