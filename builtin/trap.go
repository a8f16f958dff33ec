package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brushsh/brush/interp"
)

// trapCmd implements `trap`, `trap -l`, `trap -p`, `trap cmd SIG...`,
// and `trap '' SIG...` (ignore), per spec.md §4.12 and grounded on
// original_source/shell/src/builtins/trap.rs.
func trapCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) > 0 && args[0] == "-l" {
		names := append([]string(nil), trapSignalNames...)
		fmt.Fprintln(ctx.Stdout, strings.Join(names, " "))
		return normal(interp.Success)
	}
	if len(args) > 0 && args[0] == "-p" {
		names := ctx.Shell.Traps.Names()
		sort.Strings(names)
		for _, name := range names {
			cmd, _ := ctx.Shell.Traps.Handler(name)
			fmt.Fprintf(ctx.Stdout, "trap -- %s %s\n", shQuote(cmd), name)
		}
		return normal(interp.Success)
	}
	if len(args) == 0 {
		names := ctx.Shell.Traps.Names()
		sort.Strings(names)
		for _, name := range names {
			cmd, _ := ctx.Shell.Traps.Handler(name)
			fmt.Fprintf(ctx.Stdout, "trap -- %s %s\n", shQuote(cmd), name)
		}
		return normal(interp.Success)
	}
	if len(args) == 1 {
		return usageError(ctx, "usage: trap [-lp] [[arg] signal_spec ...]")
	}

	action, sigs := args[0], args[1:]
	if action == "-" {
		for _, name := range sigs {
			ctx.Shell.Traps.Reset(name)
		}
		return normal(interp.Success)
	}
	for _, name := range sigs {
		ctx.Shell.Traps.Set(name, action)
	}
	return normal(interp.Success)
}

var trapSignalNames = []string{
	"EXIT", "ERR", "DEBUG", "RETURN",
	"HUP", "INT", "QUIT", "ILL", "TRAP", "ABRT", "BUS", "FPE", "KILL",
	"USR1", "SEGV", "USR2", "PIPE", "ALRM", "TERM", "CHLD", "CONT",
	"STOP", "TSTP", "TTIN", "TTOU", "WINCH",
}
