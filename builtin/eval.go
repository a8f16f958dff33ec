package builtin

import (
	"os"
	"strings"

	"github.com/brushsh/brush/interp"
)

// resolveSourcePath mirrors bash's `.`/`source` lookup: a name
// containing `/` is used as-is; a bare name is searched for across
// $PATH, falling back to the name itself so the caller's os.ReadFile
// produces the original "file not found" error.
func resolveSourcePath(ctx *interp.ExecContext, name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	pathVar, _ := ctx.Shell.Env.GetStr("PATH")
	for _, dir := range strings.Split(pathVar, ":") {
		if dir == "" {
			dir = "."
		}
		full := dir + "/" + name
		if fi, err := os.Stat(full); err == nil && !fi.IsDir() {
			return full
		}
	}
	return name
}

// evalCmd implements `eval arg...`, per spec.md: the arguments are
// joined with single spaces (the same rule word-splitting would have
// applied had they never been quoted apart) and re-parsed as a fresh
// command line in the current shell, via Shell.Eval.
func evalCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) == 0 {
		return normal(interp.Success)
	}
	return ctx.Shell.Eval(strings.Join(args, " "))
}

// sourceCmd implements `.`/`source FILE [args...]`, per spec.md §4.11:
// the sourced script's body runs in the current scope (no new Env
// scope is pushed), but if args are given explicitly it gets its own
// positional parameters via a CallStack frame.
func sourceCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) == 0 {
		return usageError(ctx, "filename argument required")
	}
	path := resolveSourcePath(ctx, args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return failf(ctx, "%s: %v", path, err)
	}

	explicit := len(args) > 1
	frame := &interp.Frame{Name: path, ExplicitArgs: explicit}
	if explicit {
		frame.Positional = args[1:]
	} else {
		frame.Positional = ctx.Shell.Calls.Positional()
	}
	if err := ctx.Shell.Calls.Push(frame); err != nil {
		return failf(ctx, "%v", err)
	}
	defer ctx.Shell.Calls.Pop()

	res := ctx.Shell.Eval(string(data))
	if res.Flow == interp.ReturnFromFunctionOrScript {
		res = interp.Result{Flow: interp.Normal, ExitCode: res.ExitCode}
	}
	return res
}
