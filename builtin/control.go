package builtin

import (
	"strconv"

	"github.com/brushsh/brush/interp"
)

// Grounded on original_source/shell/src/builtins/{break,continue,return,exit}.rs
// plus interp/control.go's ControlFlow/Result/Levels vocabulary that
// these built-ins are the only place that ever constructs directly.

func parseLevels(args []string) (int, bool) {
	if len(args) == 0 {
		return 1, true
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func breakCmd(ctx *interp.ExecContext, args []string) interp.Result {
	n, ok := parseLevels(args)
	if !ok {
		return usageError(ctx, "%s: numeric argument required", args[0])
	}
	return interp.Result{Flow: interp.BreakLoop, ExitCode: interp.Success, Levels: n}
}

func continueCmd(ctx *interp.ExecContext, args []string) interp.Result {
	n, ok := parseLevels(args)
	if !ok {
		return usageError(ctx, "%s: numeric argument required", args[0])
	}
	return interp.Result{Flow: interp.ContinueLoop, ExitCode: interp.Success, Levels: n}
}

// returnCmd implements `return [n]`, valid inside a function or a
// sourced script; per spec.md §4.11 it is a usage error at the
// top-level interactive/script frame, matching bash's "can only
// `return` from a function or sourced script" diagnostic.
func returnCmd(ctx *interp.ExecContext, args []string) interp.Result {
	code := ctx.Shell.LastExit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return usageError(ctx, "%s: numeric argument required", args[0])
		}
		code = interp.ExitCode(uint8(n))
	}
	if !ctx.Shell.Calls.InFunction() && ctx.Shell.Calls.Depth() == 1 {
		return usageError(ctx, "can only `return' from a function or sourced script")
	}
	return interp.Result{Flow: interp.ReturnFromFunctionOrScript, ExitCode: code}
}

func exitCmd(ctx *interp.ExecContext, args []string) interp.Result {
	code := ctx.Shell.LastExit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return usageError(ctx, "%s: numeric argument required", args[0])
		}
		code = interp.ExitCode(uint8(n))
	}
	return interp.Result{Flow: interp.ExitShell, ExitCode: code}
}
