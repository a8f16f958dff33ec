package expand

import (
	"reflect"
	"testing"

	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	sh := interp.New("brush", nil)
	return New(sh)
}

func joinParts(f field) string { return joinField(f) }

func fieldStrings(fs []field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = joinParts(f)
	}
	return out
}

func TestSplitFieldDefaultIFS(t *testing.T) {
	c := newTestConfig(t)
	f := field{{s: "  a  b\tc\n", quoted: false}}
	got := fieldStrings(c.splitField(f))
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestSplitFieldQuotedNotSplit(t *testing.T) {
	c := newTestConfig(t)
	f := field{{s: "a b c", quoted: true}}
	got := c.splitField(f)
	if len(got) != 1 || joinParts(got[0]) != "a b c" {
		t.Fatalf("quoted field was split: %#v", got)
	}
}

func TestSplitFieldEmptyUnquotedVanishes(t *testing.T) {
	c := newTestConfig(t)
	f := field{{s: "", quoted: false}}
	got := c.splitField(f)
	if len(got) != 0 {
		t.Fatalf("empty unquoted field should vanish, got %#v", got)
	}
}

func TestSplitFieldEmptyQuotedSurvives(t *testing.T) {
	c := newTestConfig(t)
	f := field{{s: "", quoted: true}}
	got := c.splitField(f)
	if len(got) != 1 || joinParts(got[0]) != "" {
		t.Fatalf("quoted empty field should survive as one empty arg, got %#v", got)
	}
}

func TestSplitFieldCustomNonWhitespaceIFS(t *testing.T) {
	c := newTestConfig(t)
	c.Shell.Env.Set("IFS", env.Variable{Kind: env.Scalar, Str: ":"}, nil, env.Nearest)
	f := field{{s: "a::b:c", quoted: false}}
	got := fieldStrings(c.splitField(f))
	want := []string{"a", "", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestSplitFieldEmptyIFSNoSplitting(t *testing.T) {
	c := newTestConfig(t)
	c.Shell.Env.Set("IFS", env.Variable{Kind: env.Scalar, Str: ""}, nil, env.Nearest)
	f := field{{s: "a b c", quoted: false}}
	got := c.splitField(f)
	if len(got) != 1 || joinParts(got[0]) != "a b c" {
		t.Fatalf("empty IFS should disable splitting, got %#v", got)
	}
}
