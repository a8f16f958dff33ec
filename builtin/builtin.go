// Package builtin implements the shell's built-in commands, per
// spec.md §6's "Built-in command contract": each one satisfies
// interp.Builtin and is looked up by name from Shell.Builtins before
// falling back to an external command.
//
// The teacher (mvdan.cc/sh) has no built-ins at all — shfmt/gosh only
// format and execute, they never run a command. This package is
// grounded on original_source/brush-builtins/src/*.rs and
// original_source/brush-core/src/builtins/*.rs instead, one file per
// functional group, translated from brush's clap-parsed Rust structs
// into small hand-rolled flag loops over the already-expanded argument
// list the executor hands a Builtin.
package builtin

import (
	"fmt"
	"sort"

	"github.com/brushsh/brush/interp"
)

// Func adapts a plain function to interp.Builtin, the same shape as
// http.HandlerFunc over http.Handler.
type Func func(ctx *interp.ExecContext, args []string) interp.Result

func (f Func) Run(ctx *interp.ExecContext, args []string) interp.Result { return f(ctx, args) }

// Register installs every built-in this package implements into
// sh.Builtins, replacing anything already registered under the same
// name.
func Register(sh *interp.Shell) {
	for name, b := range all {
		sh.Builtins[name] = b
	}
	rules.BuiltinNames = Names()
}

// Names lists every registered built-in name, sorted; Register hands it
// to the completion rule set as its builtin command-name candidates.
func Names() []string {
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var all = map[string]interp.Builtin{
	":":        Func(colonCmd),
	"true":     Func(trueCmd),
	"false":    Func(falseCmd),
	"echo":     Func(echoCmd),
	"pwd":      Func(pwdCmd),
	"cd":       Func(cdCmd),
	"export":   Func(exportCmd),
	"readonly": Func(readonlyCmd),
	"local":    Func(localCmd),
	"declare":  Func(declareCmd),
	"typeset":  Func(declareCmd),
	"unset":    Func(unsetCmd),
	"shift":    Func(shiftCmd),
	"let":      Func(letCmd),
	"return":   Func(returnCmd),
	"break":    Func(breakCmd),
	"continue": Func(continueCmd),
	"exit":     Func(exitCmd),
	"set":      Func(setCmd),
	"shopt":    Func(shoptCmd),
	"eval":     Func(evalCmd),
	".":        Func(sourceCmd),
	"source":   Func(sourceCmd),
	"trap":     Func(trapCmd),
	"test":     Func(testCmd),
	"[":        Func(bracketCmd),
	"jobs":     Func(jobsCmd),
	"fg":       Func(fgCmd),
	"bg":       Func(bgCmd),
	"wait":     Func(waitCmd),
	"kill":     Func(killCmd),
	"hash":     Func(hashCmd),
	"type":     Func(typeCmd),
	"getopts":  Func(getoptsCmd),
	"printf":   Func(printfCmd),
	"alias":    Func(aliasCmd),
	"unalias":  Func(unaliasCmd),
	"history":  Func(historyCmd),
	"complete": Func(completeCmd),
	"compgen":  Func(compgenCmd),
}

func normal(code interp.ExitCode) interp.Result { return interp.Result{Flow: interp.Normal, ExitCode: code} }

func usageError(ctx *interp.ExecContext, format string, args ...any) interp.Result {
	fmt.Fprintf(ctx.Stderr, "%s: "+format+"\n", append([]any{ctx.Name}, args...)...)
	return normal(interp.InvalidUsage)
}

func failf(ctx *interp.ExecContext, format string, args ...any) interp.Result {
	fmt.Fprintf(ctx.Stderr, "%s: "+format+"\n", append([]any{ctx.Name}, args...)...)
	return normal(interp.GeneralError)
}

// shQuote produces bash single-quoted text that reproduces s verbatim
// when re-read, per `declare -p`/`readonly -p`'s dump format.
func shQuote(s string) string {
	out := "'"
	for _, r := range s {
		if r == '\'' {
			out += `'\''`
		} else {
			out += string(r)
		}
	}
	return out + "'"
}
