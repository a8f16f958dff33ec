package expand

import (
	"fmt"
	"strings"
	"testing"
)

var braceTests = []struct {
	in   string
	want []string
}{
	{"a{b", []string{"a{b"}},
	{"a}b", []string{"a}b"}},
	{"{a,b{c,d}", []string{"{a,bc", "{a,bd"}},
	{"{a{b", []string{"{a{b"}},
	{"a{}", []string{"a{}"}},
	{"a{b}", []string{"a{b}"}},
	{"a{b,c}", []string{"ab", "ac"}},
	{"a{à,世界}", []string{"aà", "a世界"}},
	{"a{b,c}d{e,f}g", []string{"abdeg", "abdfg", "acdeg", "acdfg"}},
	{"a{b{x,y},c}d", []string{"abxd", "abyd", "acd"}},
	{"a{1,2,3,4,5}", []string{"a1", "a2", "a3", "a4", "a5"}},
	{"a{1..", []string{"a{1.."}},
	{"a{1..4", []string{"a{1..4"}},
	{"a{1.4}", []string{"a{1.4}"}},
	{"{a,b}{1..4", []string{"a{1..4", "b{1..4"}},
	{"a{1..4}", []string{"a1", "a2", "a3", "a4"}},
	{"a{1..2}b{4..5}c", []string{"a1b4c", "a1b5c", "a2b4c", "a2b5c"}},
	{"a{1..f}", []string{"a{1..f}"}},
	{"a{c..f}", []string{"ac", "ad", "ae", "af"}},
	{"a{-..f}", []string{"a{-..f}"}},
	{"a{3..-}", []string{"a{3..-}"}},
	{"a{1..10..3}", []string{"a1", "a4", "a7", "a10"}},
	{"a{1..4..0}", []string{"a1", "a2", "a3", "a4"}},
	{"a{4..1}", []string{"a4", "a3", "a2", "a1"}},
	{"a{4..1..-2}", []string{"a4", "a2"}},
	{"a{4..1..1}", []string{"a4", "a3", "a2", "a1"}},
	{"a{d..k..3}", []string{"ad", "ag", "aj"}},
	{"a{d..k..n}", []string{"a{d..k..n}"}},
	{"a{k..d..-2}", []string{"ak", "ai", "ag", "ae"}},
	{"{1..1}", []string{"1"}},
}

func TestBraces(t *testing.T) {
	for i, tc := range braceTests {
		t.Run(fmt.Sprintf("%02d", i), func(t *testing.T) {
			got := Braces(tc.in)
			gotStr := strings.Join(got, " ")
			wantStr := strings.Join(tc.want, " ")
			if gotStr != wantStr {
				t.Fatalf("mismatch in %q\nwant: %s\ngot:  %s", tc.in, wantStr, gotStr)
			}
		})
	}
}
