package interp

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/openfiles"
)

// literalExpander is a minimal Expander for tests: it joins each
// word's Lit() text, with no quote removal or splitting beyond
// whitespace, enough to drive the executor's control-flow logic
// without depending on the not-yet-wired C5 expansion engine.
type literalExpander struct{}

func (literalExpander) Fields(words []ast.Word) ([]string, error) {
	var out []string
	for _, w := range words {
		for _, f := range strings.Fields(w.Lit()) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (literalExpander) Literal(w ast.Word) (string, error) { return w.Lit(), nil }

func lit(s string) ast.Word { return ast.Word{&ast.Lit{Value: s}} }

func simpleCmd(name string, args ...string) ast.Command {
	sc := &ast.SimpleCommand{Name: lit(name)}
	for _, a := range args {
		sc.Args = append(sc.Args, lit(a))
	}
	return sc
}

func newTestShell() (*Shell, *bytes.Buffer, *bytes.Buffer) {
	s := New("brush", nil)
	s.Expand = literalExpander{}
	var stdout, stderr bytes.Buffer
	s.Files.Set(1, &openfiles.File{Writer: &stdout})
	s.Files.Set(2, &openfiles.File{Writer: &stderr})
	return s, &stdout, &stderr
}

func TestRunEchoBuiltin(t *testing.T) {
	s, stdout, _ := newTestShell()
	s.Builtins["echo"] = builtinFunc(func(ctx *ExecContext, args []string) Result {
		ctx.Stdout.Write([]byte(strings.Join(args, " ") + "\n"))
		return Result{Flow: Normal, ExitCode: Success}
	})
	prog := programOf(simpleCmd("echo", "hello", "world"))
	res := s.Run(prog)
	if res.ExitCode != Success {
		t.Fatalf("got exit %v", res.ExitCode)
	}
	if stdout.String() != "hello world\n" {
		t.Fatalf("got stdout %q", stdout.String())
	}
}

type builtinFunc func(ctx *ExecContext, args []string) Result

func (f builtinFunc) Run(ctx *ExecContext, args []string) Result { return f(ctx, args) }

func programOf(cmds ...ast.Command) *ast.Program {
	prog := &ast.Program{}
	cc := &ast.CompleteCommand{}
	for _, c := range cmds {
		cc.Lists = append(cc.Lists, &ast.AndOrList{First: &ast.Pipeline{Commands: []*ast.Stmt{{Cmd: c}}}})
	}
	prog.Commands = append(prog.Commands, cc)
	return prog
}

func TestAndOrShortCircuit(t *testing.T) {
	s, _, _ := newTestShell()
	var ran []string
	record := func(name string, code ExitCode) Builtin {
		return builtinFunc(func(ctx *ExecContext, args []string) Result {
			ran = append(ran, name)
			return Result{Flow: Normal, ExitCode: code}
		})
	}
	s.Builtins["ok"] = record("ok", Success)
	s.Builtins["fail"] = record("fail", GeneralError)
	s.Builtins["skip"] = record("skip", Success)

	ao := &ast.AndOrList{
		First: &ast.Pipeline{Commands: []*ast.Stmt{{Cmd: simpleCmd("ok")}}},
		Rest: []*ast.AndOrPart{
			{Op: ast.And, Pipeline: &ast.Pipeline{Commands: []*ast.Stmt{{Cmd: simpleCmd("fail")}}}},
			{Op: ast.And, Pipeline: &ast.Pipeline{Commands: []*ast.Stmt{{Cmd: simpleCmd("skip")}}}},
		},
	}
	res := s.runAndOr(ao)
	if res.ExitCode != GeneralError {
		t.Fatalf("got %v", res.ExitCode)
	}
	if len(ran) != 2 || ran[0] != "ok" || ran[1] != "fail" {
		t.Fatalf("got %v, want [ok fail] (skip must not run)", ran)
	}
}

func TestBreakUnwindsOneLoop(t *testing.T) {
	s, _, _ := newTestShell()
	count := 0
	s.Builtins["mark"] = builtinFunc(func(ctx *ExecContext, args []string) Result {
		count++
		return normal(Success)
	})
	s.Builtins["break"] = builtinFunc(func(ctx *ExecContext, args []string) Result {
		return Result{Flow: BreakLoop, ExitCode: Success, Levels: 1}
	})

	inner := &ast.CompoundList{Stmts: []*ast.Stmt{
		{Cmd: simpleCmd("mark")},
		{Cmd: simpleCmd("break")},
	}}
	loop := &ast.WhileClause{
		Cond: &ast.CompoundList{Stmts: []*ast.Stmt{{Cmd: simpleCmd("mark")}}},
		Body: inner,
	}
	res := s.runCompound(loop)
	if res.Flow != Normal {
		t.Fatalf("break should decay to Normal once consumed by the loop, got %v", res.Flow)
	}
	if count != 2 {
		t.Fatalf("expected mark called twice (once for cond, once in body), got %d", count)
	}
}

func TestIfElse(t *testing.T) {
	s, _, _ := newTestShell()
	s.Builtins["true"] = builtinFunc(func(ctx *ExecContext, args []string) Result { return normal(Success) })
	s.Builtins["false"] = builtinFunc(func(ctx *ExecContext, args []string) Result { return normal(GeneralError) })
	var branch string
	s.Builtins["then-branch"] = builtinFunc(func(ctx *ExecContext, args []string) Result {
		branch = "then"
		return normal(Success)
	})
	s.Builtins["else-branch"] = builtinFunc(func(ctx *ExecContext, args []string) Result {
		branch = "else"
		return normal(Success)
	})

	ifc := &ast.IfClause{
		Cond: &ast.CompoundList{Stmts: []*ast.Stmt{{Cmd: simpleCmd("false")}}},
		Then: &ast.CompoundList{Stmts: []*ast.Stmt{{Cmd: simpleCmd("then-branch")}}},
		Else: &ast.CompoundList{Stmts: []*ast.Stmt{{Cmd: simpleCmd("else-branch")}}},
	}
	s.runCompound(ifc)
	if branch != "else" {
		t.Fatalf("got branch %q, want else", branch)
	}
}

func TestCaseFallthrough(t *testing.T) {
	s, _, _ := newTestShell()
	var ran []string
	mk := func(name string) Builtin {
		return builtinFunc(func(ctx *ExecContext, args []string) Result {
			ran = append(ran, name)
			return normal(Success)
		})
	}
	s.Builtins["a"] = mk("a")
	s.Builtins["b"] = mk("b")

	cc := &ast.CaseClause{
		Word: lit("x"),
		Items: []*ast.CaseItem{
			{Patterns: []ast.Word{lit("x")}, Body: &ast.CompoundList{Stmts: []*ast.Stmt{{Cmd: simpleCmd("a")}}}, Term: ast.CaseFallthrough},
			{Patterns: []ast.Word{lit("y")}, Body: &ast.CompoundList{Stmts: []*ast.Stmt{{Cmd: simpleCmd("b")}}}, Term: ast.CaseBreak},
		},
	}
	s.runCompound(cc)
	if len(ran) != 2 || ran[0] != "a" || ran[1] != "b" {
		t.Fatalf("got %v, want [a b] via ;& fallthrough", ran)
	}
}

func TestCoprocBidirectionalPipe(t *testing.T) {
	s, _, _ := newTestShell()
	s.Builtins["producer"] = builtinFunc(func(ctx *ExecContext, args []string) Result {
		ctx.Stdout.Write([]byte("hi\n"))
		return normal(Success)
	})
	n := &ast.CoprocClause{Body: &ast.Stmt{Cmd: simpleCmd("producer")}}
	res := s.runCoproc(n)
	if res.ExitCode != Success {
		t.Fatalf("runCoproc: got exit %v", res.ExitCode)
	}

	v, ok := s.Env.Get("COPROC", env.AnyScope)
	if !ok || v.Kind != env.Indexed || len(v.List) != 2 {
		t.Fatalf("COPROC not set as a 2-element indexed array: %+v", v)
	}
	readFd, err := strconv.Atoi(v.List[0])
	if err != nil {
		t.Fatalf("COPROC[0] not numeric: %q", v.List[0])
	}

	out, err := io.ReadAll(s.Files.Reader(readFd))
	if err != nil {
		t.Fatalf("reading from coproc: %v", err)
	}
	if string(out) != "hi\n" {
		t.Fatalf("got %q, want %q", out, "hi\n")
	}

	if len(s.Jobs.All()) != 1 {
		t.Fatalf("expected the coproc body to be tracked as a job")
	}
}

func TestSubshellJobsDoNotLeakToParent(t *testing.T) {
	s, _, _ := newTestShell()
	sub := s.Subshell()

	sub.Jobs.Add(1234, "sleep 1 &", nil)
	if len(s.Jobs.All()) != 0 {
		t.Fatalf("parent job table was mutated by a job added in the subshell: %v", s.Jobs.All())
	}
	if len(sub.Jobs.All()) != 1 {
		t.Fatalf("expected the subshell's own job table to record the job")
	}
}

func TestSubshellTrapsDoNotLeakToParent(t *testing.T) {
	s, _, _ := newTestShell()
	sub := s.Subshell()

	sub.Traps.Set("EXIT", "echo bye")
	if _, ok := s.Traps.Handler("EXIT"); ok {
		t.Fatal("parent trap table was mutated by a trap set in the subshell")
	}
	if _, ok := sub.Traps.Handler("EXIT"); !ok {
		t.Fatal("expected the subshell's own trap table to record the handler")
	}
}

func arrayElem(value string) ast.ArrayElem { return ast.ArrayElem{Value: lit(value)} }

func keyedElem(key, value string) ast.ArrayElem {
	return ast.ArrayElem{Key: lit(key), Value: lit(value)}
}

func TestArrayLiteralAssignment(t *testing.T) {
	s, _, _ := newTestShell()
	a := &ast.Assignment{
		Name:  &ast.Lit{Value: "arr"},
		Array: &ast.ArrayLiteral{Elems: []ast.ArrayElem{arrayElem("a"), arrayElem("b"), arrayElem("c")}},
	}
	if err := s.applyAssignment(a, env.Nearest); err != nil {
		t.Fatalf("applyAssignment: %v", err)
	}
	v, ok := s.Env.Get("arr", env.AnyScope)
	if !ok {
		t.Fatal("arr was not set")
	}
	if v.Kind != env.Indexed {
		t.Fatalf("got Kind %v, want Indexed", v.Kind)
	}
	if got := []string(v.List); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("got List %v, want [a b c]", got)
	}
}

func TestArrayLiteralAssignmentAssociative(t *testing.T) {
	s, _, _ := newTestShell()
	a := &ast.Assignment{
		Name:  &ast.Lit{Value: "m"},
		Array: &ast.ArrayLiteral{Elems: []ast.ArrayElem{keyedElem("k1", "v1"), keyedElem("k2", "v2")}},
	}
	if err := s.applyAssignment(a, env.Nearest); err != nil {
		t.Fatalf("applyAssignment: %v", err)
	}
	v, ok := s.Env.Get("m", env.AnyScope)
	if !ok {
		t.Fatal("m was not set")
	}
	if v.Kind != env.Associative {
		t.Fatalf("got Kind %v, want Associative", v.Kind)
	}
	if v.Map["k1"] != "v1" || v.Map["k2"] != "v2" {
		t.Fatalf("got Map %v, want k1=v1 k2=v2", v.Map)
	}
}

func TestIndexedElementAssignment(t *testing.T) {
	s, _, _ := newTestShell()
	base := &ast.Assignment{
		Name:  &ast.Lit{Value: "arr"},
		Array: &ast.ArrayLiteral{Elems: []ast.ArrayElem{arrayElem("a"), arrayElem("b")}},
	}
	if err := s.applyAssignment(base, env.Nearest); err != nil {
		t.Fatalf("applyAssignment (literal): %v", err)
	}
	update := &ast.Assignment{
		Name:  &ast.Lit{Value: "arr"},
		Index: lit("1"),
		Value: lit("changed"),
	}
	if err := s.applyAssignment(update, env.Nearest); err != nil {
		t.Fatalf("applyAssignment (index): %v", err)
	}
	v, _ := s.Env.Get("arr", env.AnyScope)
	if len(v.List) != 2 || v.List[0] != "a" || v.List[1] != "changed" {
		t.Fatalf("got List %v, want [a changed]", v.List)
	}
}

func TestSubshellPositionalParamsDoNotLeakToParent(t *testing.T) {
	s, _, _ := newTestShell()
	s.Calls = NewCallStack([]string{"orig1", "orig2"})
	sub := s.Subshell()

	sub.Calls.SetPositional([]string{"changed"})
	if got := s.Calls.Positional(); len(got) != 2 || got[0] != "orig1" {
		t.Fatalf("parent positional params were mutated by the subshell: %v", got)
	}
	if got := sub.Calls.Positional(); len(got) != 1 || got[0] != "changed" {
		t.Fatalf("expected the subshell's own positional params to change: %v", got)
	}
}
