package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/lexer"
)

// simpleCommandWords flattens a program that is expected to be a single
// simple command into its name and argument literals, discarding position
// info, so tests can compare parse results with cmp.Diff without the
// comparison breaking on every token.Pos field.
func simpleCommandWords(t *testing.T, prog *ast.Program) []string {
	t.Helper()
	if len(prog.Commands) != 1 || len(prog.Commands[0].Lists) != 1 {
		t.Fatalf("expected exactly one simple command, got %+v", prog.Commands)
	}
	list := prog.Commands[0].Lists[0]
	if len(list.Rest) != 0 {
		t.Fatalf("expected no && / || chaining, got %+v", list.Rest)
	}
	if len(list.First.Commands) != 1 {
		t.Fatalf("expected exactly one pipeline stage, got %d", len(list.First.Commands))
	}
	sc, ok := list.First.Commands[0].Cmd.(*ast.SimpleCommand)
	if !ok {
		t.Fatalf("expected *ast.SimpleCommand, got %T", list.First.Commands[0].Cmd)
	}
	words := []string{sc.Name.Lit()}
	for _, a := range sc.Args {
		words = append(words, a.Lit())
	}
	return words
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := NewParser(lexer.Options{})
	prog, err := p.Parse([]byte(src), "test")
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return prog
}

func TestParseSimpleCommand(t *testing.T) {
	prog := mustParse(t, "echo hello world\n")
	got := simpleCommandWords(t, prog)
	want := []string{"echo", "hello", "world"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("simple command words mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePipeline(t *testing.T) {
	prog := mustParse(t, "a | b | c\n")
	list := prog.Commands[0].Lists[0]
	if len(list.First.Commands) != 3 {
		t.Fatalf("expected 3 pipeline stages, got %d", len(list.First.Commands))
	}
	var names []string
	for _, stmt := range list.First.Commands {
		sc, ok := stmt.Cmd.(*ast.SimpleCommand)
		if !ok {
			t.Fatalf("expected *ast.SimpleCommand, got %T", stmt.Cmd)
		}
		names = append(names, sc.Name.Lit())
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("pipeline stage names mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAndOrList(t *testing.T) {
	prog := mustParse(t, "a && b || c\n")
	list := prog.Commands[0].Lists[0]
	if len(list.Rest) != 2 {
		t.Fatalf("expected 2 chained parts, got %d", len(list.Rest))
	}
	ops := []ast.AndOr{list.Rest[0].Op, list.Rest[1].Op}
	if diff := cmp.Diff([]ast.AndOr{ast.And, ast.Or}, ops); diff != "" {
		t.Errorf("and/or operator mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIfClause(t *testing.T) {
	prog := mustParse(t, "if true; then echo yes; else echo no; fi\n")
	if len(prog.Commands) != 1 {
		t.Fatalf("expected 1 complete command, got %d", len(prog.Commands))
	}
	stmt := prog.Commands[0].Lists[0].First.Commands[0]
	cs, ok := stmt.Cmd.(*ast.CompoundStmt)
	if !ok {
		t.Fatalf("expected *ast.CompoundStmt, got %T", stmt.Cmd)
	}
	if _, ok := cs.Cmd.(*ast.IfClause); !ok {
		t.Fatalf("expected *ast.IfClause, got %T", cs.Cmd)
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := NewParser(lexer.Options{})
	if _, err := p.Parse([]byte("if true; then\n"), "test"); err == nil {
		t.Fatal("expected a parse error for an unterminated if clause")
	}
}

func TestParseAssignmentOnlyStatement(t *testing.T) {
	prog := mustParse(t, "FOO=bar\n")
	sc, ok := prog.Commands[0].Lists[0].First.Commands[0].Cmd.(*ast.SimpleCommand)
	if !ok {
		t.Fatalf("expected *ast.SimpleCommand, got %T", prog.Commands[0].Lists[0].First.Commands[0].Cmd)
	}
	if sc.Name != nil {
		t.Fatalf("expected nil Name for a bare assignment, got %q", sc.Name.Lit())
	}
	if len(sc.Assigns) != 1 || sc.Assigns[0].Name.Value != "FOO" {
		t.Fatalf("got assigns %+v", sc.Assigns)
	}
}
