package builtin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
)

func newTestCtx(t *testing.T) (*interp.ExecContext, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	sh := interp.New("brush", nil)
	Register(sh)
	var out, errOut bytes.Buffer
	ctx := &interp.ExecContext{
		Shell:  sh,
		Name:   "test",
		Files:  sh.Files,
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: &errOut,
	}
	return ctx, &out, &errOut
}

func TestColonTrueFalse(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	if r := colonCmd(ctx, nil); r.ExitCode != interp.Success {
		t.Fatalf(": gave %v", r.ExitCode)
	}
	if r := trueCmd(ctx, nil); r.ExitCode != interp.Success {
		t.Fatalf("true gave %v", r.ExitCode)
	}
	if r := falseCmd(ctx, nil); r.ExitCode != interp.GeneralError {
		t.Fatalf("false gave %v", r.ExitCode)
	}
}

func TestEchoPlainAndDashN(t *testing.T) {
	ctx, out, _ := newTestCtx(t)
	echoCmd(ctx, []string{"hello", "world"})
	if out.String() != "hello world\n" {
		t.Fatalf("got %q", out.String())
	}
	out.Reset()
	echoCmd(ctx, []string{"-n", "hi"})
	if out.String() != "hi" {
		t.Fatalf("got %q", out.String())
	}
}

func TestEchoDashEInterpretsEscapes(t *testing.T) {
	ctx, out, _ := newTestCtx(t)
	echoCmd(ctx, []string{"-e", `a\tb`})
	if out.String() != "a\tb\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestExportThenReadBack(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	r := exportCmd(ctx, []string{"FOO=bar"})
	if r.ExitCode != interp.Success {
		t.Fatalf("export failed: %v", r.ExitCode)
	}
	v, ok := ctx.Shell.Env.Get("FOO", env.AnyScope)
	if !ok || v.Str != "bar" || !v.Attrs.Has(env.Exported) {
		t.Fatalf("got %#v", v)
	}
}

func TestReadonlyRejectsReassignment(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	readonlyCmd(ctx, []string{"X=1"})
	err := ctx.Shell.Env.Set("X", env.Variable{Kind: env.Scalar, Str: "2"}, nil, env.Nearest)
	if err == nil {
		t.Fatal("expected readonly variable to reject reassignment")
	}
}

func TestUnsetRemovesVariable(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	ctx.Shell.Env.Set("Y", env.Variable{Kind: env.Scalar, Str: "1"}, nil, env.Nearest)
	unsetCmd(ctx, []string{"Y"})
	if _, ok := ctx.Shell.Env.Get("Y", env.AnyScope); ok {
		t.Fatal("Y should be unset")
	}
}

func TestBreakContinueReturnExitResults(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	if r := breakCmd(ctx, nil); r.Flow != interp.BreakLoop || r.Levels != 1 {
		t.Fatalf("got %#v", r)
	}
	if r := continueCmd(ctx, []string{"2"}); r.Flow != interp.ContinueLoop || r.Levels != 2 {
		t.Fatalf("got %#v", r)
	}
	if r := exitCmd(ctx, []string{"3"}); r.Flow != interp.ExitShell || r.ExitCode != 3 {
		t.Fatalf("got %#v", r)
	}
}

func TestReturnOutsideFunctionIsUsageError(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	r := returnCmd(ctx, nil)
	if r.ExitCode != interp.InvalidUsage {
		t.Fatalf("got %#v", r)
	}
}

func TestShiftConsumesPositional(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	ctx.Shell.Calls.SetPositional([]string{"a", "b", "c"})
	shiftCmd(ctx, []string{"2"})
	got := ctx.Shell.Calls.Positional()
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("got %#v", got)
	}
}

func TestLetEvaluatesArithmetic(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	r := letCmd(ctx, []string{"x = 2 + 3"})
	if r.ExitCode != interp.Success {
		t.Fatalf("let failed: %#v", r)
	}
	v, _ := ctx.Shell.Env.GetStr("x")
	if v != "5" {
		t.Fatalf("got x=%q", v)
	}
}

func TestTestStringEquality(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	if r := testCmd(ctx, []string{"foo", "=", "foo"}); r.ExitCode != interp.Success {
		t.Fatalf("got %v", r.ExitCode)
	}
	if r := testCmd(ctx, []string{"foo", "=", "bar"}); r.ExitCode != interp.GeneralError {
		t.Fatalf("got %v", r.ExitCode)
	}
}

func TestTestIntegerComparison(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	if r := testCmd(ctx, []string{"3", "-lt", "5"}); r.ExitCode != interp.Success {
		t.Fatalf("got %v", r.ExitCode)
	}
}

func TestBracketRequiresClosingBracket(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	r := bracketCmd(ctx, []string{"1", "-eq", "1"})
	if r.ExitCode != interp.InvalidUsage {
		t.Fatalf("expected usage error for missing ']', got %#v", r)
	}
	r = bracketCmd(ctx, []string{"1", "-eq", "1", "]"})
	if r.ExitCode != interp.Success {
		t.Fatalf("got %#v", r)
	}
}

func TestSetAndShoptRoundTrip(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	setCmd(ctx, []string{"-e"})
	if !ctx.Shell.Opts.Errexit {
		t.Fatal("expected errexit set")
	}
	setCmd(ctx, []string{"+e"})
	if ctx.Shell.Opts.Errexit {
		t.Fatal("expected errexit cleared")
	}
	shoptCmd(ctx, []string{"-s", "globstar"})
	if !ctx.Shell.Opts.Shopt["globstar"] {
		t.Fatal("expected globstar set")
	}
}

func TestAliasSetAndLookup(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	aliasCmd(ctx, []string{"ll=ls -l"})
	v, ok := Lookup("ll")
	if !ok || v != "ls -l" {
		t.Fatalf("got %q %v", v, ok)
	}
	unaliasCmd(ctx, []string{"ll"})
	if _, ok := Lookup("ll"); ok {
		t.Fatal("expected ll to be removed")
	}
}

func TestGetoptsWalksPositional(t *testing.T) {
	ctx, _, _ := newTestCtx(t)
	ctx.Shell.Env.Set("OPTIND", env.Variable{Kind: env.Scalar, Str: "1"}, nil, env.Nearest)
	r := getoptsCmd(ctx, []string{"ab:", "opt", "-a", "-b", "val"})
	if r.ExitCode != interp.Success {
		t.Fatalf("got %#v", r)
	}
	opt, _ := ctx.Shell.Env.GetStr("opt")
	if opt != "a" {
		t.Fatalf("got opt=%q", opt)
	}
	r = getoptsCmd(ctx, []string{"ab:", "opt", "-a", "-b", "val"})
	opt, _ = ctx.Shell.Env.GetStr("opt")
	optarg, _ := ctx.Shell.Env.GetStr("OPTARG")
	if opt != "b" || optarg != "val" {
		t.Fatalf("got opt=%q optarg=%q", opt, optarg)
	}
}

func TestPrintfBasic(t *testing.T) {
	ctx, out, _ := newTestCtx(t)
	printfCmd(ctx, []string{"%s is %d\n", "x", "5"})
	if out.String() != "x is 5\n" {
		t.Fatalf("got %q", out.String())
	}
}
