package builtin

import (
	"fmt"
	"os"
	"strings"

	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
)

// Grounded on original_source/brush-core/src/builtins/*.rs's trivial
// commands (colon.rs/true_/false_ have no Rust file of their own there;
// brush inlines them in the command-dispatch factory) and on
// spec.md §6's exit code table.

func colonCmd(ctx *interp.ExecContext, args []string) interp.Result { return normal(interp.Success) }

func trueCmd(ctx *interp.ExecContext, args []string) interp.Result { return normal(interp.Success) }

func falseCmd(ctx *interp.ExecContext, args []string) interp.Result { return normal(interp.GeneralError) }

// echoCmd implements POSIX echo plus the `-n`/`-e`/`-E` extensions
// bash adds, grounded on original_source/brush-builtins (echo has no
// dedicated file there either; it is handled by the same
// backslash-escape table printf.rs shares).
func echoCmd(ctx *interp.ExecContext, args []string) interp.Result {
	newline := true
	interpret := false
	for len(args) > 0 {
		switch args[0] {
		case "-n":
			newline = false
		case "-e":
			interpret = true
		case "-E":
			interpret = false
		default:
			goto words
		}
		args = args[1:]
	}
words:
	out := strings.Join(args, " ")
	if interpret {
		out = interpretEchoEscapes(out)
	}
	fmt.Fprint(ctx.Stdout, out)
	if newline {
		fmt.Fprint(ctx.Stdout, "\n")
	}
	return normal(interp.Success)
}

func interpretEchoEscapes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'c':
			return sb.String()
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func pwdCmd(ctx *interp.ExecContext, args []string) interp.Result {
	physical := false
	for _, a := range args {
		if a == "-P" {
			physical = true
		}
	}
	if physical {
		if wd, ok := ctx.Shell.Env.GetStr("PWD"); ok {
			if resolved, err := os.Readlink(wd); err == nil {
				fmt.Fprintln(ctx.Stdout, resolved)
				return normal(interp.Success)
			}
		}
	}
	wd, ok := ctx.Shell.Env.GetStr("PWD")
	if !ok {
		var err error
		wd, err = os.Getwd()
		if err != nil {
			return failf(ctx, "%v", err)
		}
	}
	fmt.Fprintln(ctx.Stdout, wd)
	return normal(interp.Success)
}

// cdCmd implements spec.md's `cd`, tracking PWD/OLDPWD the way
// original_source/brush-core/src/builtins keeps them (cd.rs has no
// standalone file there; it lives in the shell's directory-stack
// module, dirs.rs) — every successful change updates OLDPWD to the
// prior PWD and exports both, per the startup-environment section of
// spec.md §6.
func cdCmd(ctx *interp.ExecContext, args []string) interp.Result {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	if target == "-" {
		prev, ok := ctx.Shell.Env.GetStr("OLDPWD")
		if !ok {
			return failf(ctx, "OLDPWD not set")
		}
		target = prev
		fmt.Fprintln(ctx.Stdout, target)
	}
	if target == "" {
		home, ok := ctx.Shell.Env.GetStr("HOME")
		if !ok {
			return failf(ctx, "HOME not set")
		}
		target = home
	}

	old, _ := ctx.Shell.Env.GetStr("PWD")
	if err := os.Chdir(target); err != nil {
		return failf(ctx, "%s: %v", target, err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return failf(ctx, "%v", err)
	}
	exported := func(v *env.Variable) { v.Attrs |= env.Exported }
	ctx.Shell.Env.Set("OLDPWD", env.Variable{Kind: env.Scalar, Str: old}, exported, env.Global)
	ctx.Shell.Env.Set("PWD", env.Variable{Kind: env.Scalar, Str: wd}, exported, env.Global)
	return normal(interp.Success)
}
