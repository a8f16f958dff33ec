package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
)

// splitAssign splits "name=value" into (name, value, true), or returns
// (arg, "", false) for a bare name with no `=`.
func splitAssign(arg string) (name, value string, hasValue bool) {
	if i := strings.IndexByte(arg, '='); i >= 0 {
		return arg[:i], arg[i+1:], true
	}
	return arg, "", false
}

// declareFlags is the `-xrilauAng` flag set shared by export, readonly,
// declare, typeset, and local, grounded on
// original_source/brush-core/src/builtins/set.rs's attribute parsing
// (declare.rs/export.rs/readonly.rs/local.rs all funnel into the same
// VariableAttribute enum there).
type declareFlags struct {
	export, readonly, integer                   bool
	indexedArray, assocArray, lower, upper, name bool
	global, print                                bool
}

func parseDeclareFlags(args []string) (declareFlags, []string) {
	var f declareFlags
	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		if len(a) < 2 || a[0] != '-' {
			break
		}
		stop := false
		for _, c := range a[1:] {
			switch c {
			case 'x':
				f.export = true
			case 'r':
				f.readonly = true
			case 'i':
				f.integer = true
			case 'a':
				f.indexedArray = true
			case 'A':
				f.assocArray = true
			case 'l':
				f.lower = true
			case 'u':
				f.upper = true
			case 'n':
				f.name = true
			case 'g':
				f.global = true
			case 'p':
				f.print = true
			default:
				stop = true
			}
		}
		if stop {
			break
		}
	}
	return f, args[i:]
}

func (f declareFlags) attrs() env.Attr {
	var a env.Attr
	if f.export {
		a |= env.Exported
	}
	if f.readonly {
		a |= env.ReadOnly
	}
	if f.integer {
		a |= env.Integer
	}
	if f.indexedArray {
		a |= env.IndexedArray
	}
	if f.assocArray {
		a |= env.AssocArray
	}
	if f.lower {
		a |= env.Lowercase
	}
	if f.upper {
		a |= env.Uppercase
	}
	if f.name {
		a |= env.NameRef
	}
	return a
}

func printVar(ctx *interp.ExecContext, name string, v env.Variable, kw string) {
	switch v.Kind {
	case env.Indexed:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = fmt.Sprintf("[%d]=%s", i, shQuote(e))
		}
		fmt.Fprintf(ctx.Stdout, "%s %s=(%s)\n", kw, name, strings.Join(parts, " "))
	case env.Associative:
		parts := make([]string, 0, len(v.Map))
		for k, e := range v.Map {
			parts = append(parts, fmt.Sprintf("[%s]=%s", shQuote(k), shQuote(e)))
		}
		fmt.Fprintf(ctx.Stdout, "%s %s=(%s)\n", kw, name, strings.Join(parts, " "))
	default:
		if v.IsSet() {
			fmt.Fprintf(ctx.Stdout, "%s %s=%s\n", kw, name, shQuote(v.Str))
		} else {
			fmt.Fprintf(ctx.Stdout, "%s %s\n", kw, name)
		}
	}
}

// declareLike backs declare/typeset/local; export and readonly with no
// `=` operand and no other flags also fall through to it so `export -p`
// and `readonly -p` share one listing path.
func declareLike(ctx *interp.ExecContext, args []string, scope env.ScopeKind, forcedAttrs env.Attr) interp.Result {
	flags, rest := parseDeclareFlags(args)
	attrs := flags.attrs() | forcedAttrs
	if flags.global {
		scope = env.Global
	}

	if flags.print || len(rest) == 0 {
		kw := "declare"
		if forcedAttrs&env.ReadOnly != 0 {
			kw = "readonly"
		}
		if len(rest) == 0 {
			ctx.Shell.Env.Each(func(name string, v env.Variable) bool {
				if attrs == 0 || v.Attrs.Has(attrs) {
					printVar(ctx, name, v, kw)
				}
				return true
			})
			return normal(interp.Success)
		}
		for _, name := range rest {
			v, ok := ctx.Shell.Env.Get(name, env.AnyScope)
			if !ok {
				return failf(ctx, "%s: not found", name)
			}
			printVar(ctx, name, v, kw)
		}
		return normal(interp.Success)
	}

	code := interp.Success
	for _, arg := range rest {
		name, value, hasValue := splitAssign(arg)
		if !hasValue {
			ctx.Shell.Env.Declare(name, attrs, env.Unset, scope)
			continue
		}
		kind := env.Scalar
		if flags.indexedArray {
			kind = env.Indexed
		} else if flags.assocArray {
			kind = env.Associative
		}
		v := env.Variable{Kind: kind, Str: value}
		if flags.integer {
			n, err := strconv.ParseInt(strings.TrimSpace(value), 0, 64)
			if err != nil {
				fmt.Fprintf(ctx.Stderr, "%s: %s: not a valid integer\n", ctx.Name, value)
				code = interp.GeneralError
				continue
			}
			v.Str = strconv.FormatInt(n, 10)
		}
		if err := ctx.Shell.Env.Set(name, v, func(vv *env.Variable) { vv.Attrs |= attrs }, scope); err != nil {
			fmt.Fprintf(ctx.Stderr, "%s: %v\n", ctx.Name, err)
			code = interp.GeneralError
		}
	}
	return normal(code)
}

func exportCmd(ctx *interp.ExecContext, args []string) interp.Result {
	return declareLike(ctx, args, env.Nearest, env.Exported)
}

func readonlyCmd(ctx *interp.ExecContext, args []string) interp.Result {
	return declareLike(ctx, args, env.Nearest, env.ReadOnly)
}

func localCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if !ctx.Shell.Calls.InFunction() {
		return usageError(ctx, "local: can only be used in a function")
	}
	return declareLike(ctx, args, env.Local, 0)
}

func declareCmd(ctx *interp.ExecContext, args []string) interp.Result {
	scope := env.Nearest
	if ctx.Shell.Calls.InFunction() {
		scope = env.Local
	}
	return declareLike(ctx, args, scope, 0)
}

func unsetCmd(ctx *interp.ExecContext, args []string) interp.Result {
	functions := false
	var names []string
	for _, a := range args {
		switch a {
		case "-f":
			functions = true
		case "-v":
			functions = false
		default:
			names = append(names, a)
		}
	}
	code := interp.Success
	for _, name := range names {
		if functions {
			delete(ctx.Shell.Functions, name)
			continue
		}
		if err := ctx.Shell.Env.Unset(name); err != nil {
			fmt.Fprintf(ctx.Stderr, "%s: %v\n", ctx.Name, err)
			code = interp.GeneralError
		}
	}
	return normal(code)
}

// shiftCmd implements `shift [n]` against whichever frame
// CallStack.Positional currently resolves to.
func shiftCmd(ctx *interp.ExecContext, args []string) interp.Result {
	n := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 0 {
			return usageError(ctx, "%s: numeric argument required", args[0])
		}
		n = parsed
	}
	cur := ctx.Shell.Calls.Positional()
	if n > len(cur) {
		return normal(interp.GeneralError)
	}
	ctx.Shell.Calls.SetPositional(append([]string(nil), cur[n:]...))
	return normal(interp.Success)
}

// letCmd implements `let expr ...`, evaluating each argument as a
// complete arithmetic expression via C7 and exiting false only if the
// final expression's value is zero, per POSIX `let`.
func letCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) == 0 {
		return usageError(ctx, "let: expression expected")
	}
	last := int64(0)
	for _, a := range args {
		expr, err := arithParser.ParseArithm(a, 0)
		if err != nil {
			return failf(ctx, "%v", err)
		}
		last, err = arithEval(ctx, expr)
		if err != nil {
			return failf(ctx, "%v", err)
		}
	}
	if last == 0 {
		return normal(interp.GeneralError)
	}
	return normal(interp.Success)
}
