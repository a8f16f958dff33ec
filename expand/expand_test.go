package expand

import (
	"reflect"
	"testing"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/env"
)

func TestFieldsBraceThenSplit(t *testing.T) {
	c := newTestConfig(t)
	got, err := c.Fields([]ast.Word{lit("a{b,c}"), lit("x y")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ab", "ac", "x", "y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestFieldsSingleQuotedNotSplitOrGlobbed(t *testing.T) {
	c := newTestConfig(t)
	w := ast.Word{&ast.SglQuoted{Value: "a b *"}}
	got, err := c.Fields([]ast.Word{w})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "a b *" {
		t.Fatalf("got %#v", got)
	}
}

func TestFieldsDoubleQuotedParamNotSplit(t *testing.T) {
	c := newTestConfig(t)
	c.Shell.Env.Set("x", env.Variable{Kind: env.Scalar, Str: "a b c"}, nil, env.Nearest)
	w := ast.Word{&ast.DblQuoted{Parts: []ast.WordPart{shortParam("x")}}}
	got, err := c.Fields([]ast.Word{w})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "a b c" {
		t.Fatalf("got %#v", got)
	}
}

func TestFieldsUnquotedParamIsSplit(t *testing.T) {
	c := newTestConfig(t)
	c.Shell.Env.Set("x", env.Variable{Kind: env.Scalar, Str: "a b c"}, nil, env.Nearest)
	got, err := c.Fields([]ast.Word{{shortParam("x")}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestFieldsArithmExp(t *testing.T) {
	c := newTestConfig(t)
	expr, err := arithParser.ParseArithm("2+3", 0)
	if err != nil {
		t.Fatal(err)
	}
	w := ast.Word{&ast.ArithmExp{X: expr}}
	got, err := c.Fields([]ast.Word{w})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "5" {
		t.Fatalf("got %#v", got)
	}
}

func TestLiteralDoesNotSplit(t *testing.T) {
	c := newTestConfig(t)
	got, err := c.Literal(lit("a b c"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "a b c" {
		t.Fatalf("got %q", got)
	}
}
