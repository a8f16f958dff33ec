package ast

import (
	"testing"

	"github.com/brushsh/brush/token"
)

func TestProgramPosition(t *testing.T) {
	// "echo hi\nfoo bar\n" — Lines holds the offset of each line's first byte.
	prog := &Program{Lines: []int{0, 8, 16}}

	pos := prog.Position(token.Pos(10)) // 'o' of "foo", line 2
	if pos.Line != 2 {
		t.Errorf("Line = %d, want 2", pos.Line)
	}
	if pos.Column != 2 {
		t.Errorf("Column = %d, want 2", pos.Column)
	}

	first := prog.Position(token.Pos(1))
	if first.Line != 1 || first.Column != 1 {
		t.Errorf("Position(1) = %+v, want line 1 col 1", first)
	}
}

func TestWordLit(t *testing.T) {
	w := Word{&Lit{ValuePos: 1, Value: "echo"}}
	if got := w.Lit(); got != "echo" {
		t.Errorf("Lit() = %q, want %q", got, "echo")
	}

	quoted := Word{&Lit{Value: "foo"}, &SglQuoted{Value: "bar"}}
	if got := quoted.Lit(); got != "" {
		t.Errorf("Lit() on a multi-part word = %q, want empty", got)
	}

	var empty Word
	if got := empty.Lit(); got != "" {
		t.Errorf("Lit() on an empty word = %q, want empty", got)
	}
}

func TestWalkVisitsSimpleCommand(t *testing.T) {
	name := Word{&Lit{Value: "echo"}}
	arg := Word{&Lit{Value: "hi"}}
	sc := &SimpleCommand{Name: name, Args: []Word{arg}}
	stmt := &Stmt{Cmd: sc}
	pipeline := &Pipeline{Commands: []*Stmt{stmt}}
	andOr := &AndOrList{First: pipeline}
	cc := &CompleteCommand{Lists: []*AndOrList{andOr}}
	prog := &Program{Commands: []*CompleteCommand{cc}}

	var visited []Node
	var v recorder
	v.record = func(n Node) { visited = append(visited, n) }
	Walk(&v, prog)

	// Expect at least the program, the complete command, the and-or list,
	// the pipeline, the statement, and the simple command itself.
	foundSimple := false
	for _, n := range visited {
		if _, ok := n.(*SimpleCommand); ok {
			foundSimple = true
		}
	}
	if !foundSimple {
		t.Error("Walk never visited the *SimpleCommand node")
	}
}

// recorder is a Visitor that appends every non-nil node it sees and
// always continues the traversal into children.
type recorder struct {
	record func(Node)
}

func (r *recorder) Visit(n Node) Visitor {
	if n == nil {
		return nil
	}
	r.record(n)
	return r
}

func TestRedirectPosUsesFdWhenPresent(t *testing.T) {
	r := &Redirect{
		OpPos: 10,
		Fd:    &Lit{ValuePos: 5, Value: "2"},
		Op:    token.Greater,
		Word:  Word{&Lit{ValuePos: 12, Value: "out"}},
	}
	if got := r.Pos(); got != 5 {
		t.Errorf("Pos() = %d, want 5 (the fd literal's position)", got)
	}

	noFd := &Redirect{OpPos: 20, Word: Word{&Lit{ValuePos: 22, Value: "out"}}}
	if got := noFd.Pos(); got != 20 {
		t.Errorf("Pos() = %d, want 20 (OpPos, no fd)", got)
	}
}
