package builtin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
)

func hashCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) > 0 && args[0] == "-r" {
		ctx.Shell.ClearHash()
		return normal(interp.Success)
	}
	entries := ctx.Shell.HashEntries()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(ctx.Stdout, "%s=%s\n", name, entries[name])
	}
	return normal(interp.Success)
}

// typeCmd implements `type name...`, reporting whether each name
// resolves as a keyword, function, builtin, or a PATH-found external
// command, per spec.md's built-in command contract.
func typeCmd(ctx *interp.ExecContext, args []string) interp.Result {
	code := interp.Success
	for _, name := range args {
		switch {
		case isKeyword(name):
			fmt.Fprintf(ctx.Stdout, "%s is a shell keyword\n", name)
		case ctx.Shell.Functions[name] != nil:
			fmt.Fprintf(ctx.Stdout, "%s is a function\n", name)
		default:
			if _, ok := ctx.Shell.Builtins[name]; ok {
				fmt.Fprintf(ctx.Stdout, "%s is a shell builtin\n", name)
				continue
			}
			if path := ctx.Shell.LookupPath(name); path != "" {
				fmt.Fprintf(ctx.Stdout, "%s is %s\n", name, path)
				continue
			}
			fmt.Fprintf(ctx.Stderr, "%s: %s: not found\n", ctx.Name, name)
			code = interp.GeneralError
		}
	}
	return normal(code)
}

var keywords = map[string]bool{
	"if": true, "then": true, "else": true, "elif": true, "fi": true,
	"for": true, "while": true, "until": true, "do": true, "done": true,
	"case": true, "esac": true, "function": true, "select": true,
	"in": true, "{": true, "}": true, "!": true, "[[": true, "]]": true,
}

func isKeyword(s string) bool { return keywords[s] }

// getoptsCmd implements `getopts optstring name [args...]`, tracking
// progress in the OPTIND variable, per spec.md §6's startup-environment
// list naming OPTIND among the variables the shell initializes.
func getoptsCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) < 2 {
		return usageError(ctx, "usage: getopts optstring name [arg ...]")
	}
	optstring, varname := args[0], args[1]
	positional := args[2:]
	if len(positional) == 0 {
		positional = ctx.Shell.Calls.Positional()
	}

	optindStr, _ := ctx.Shell.Env.GetStr("OPTIND")
	optind, err := strconv.Atoi(optindStr)
	if err != nil || optind < 1 {
		optind = 1
	}
	idx := optind - 1

	setVar := func(name, value string) {
		ctx.Shell.Env.Set(name, env.Variable{Kind: env.Scalar, Str: value}, nil, env.Nearest)
	}

	if idx >= len(positional) {
		setVar(varname, "?")
		return normal(interp.GeneralError)
	}
	arg := positional[idx]
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		setVar(varname, "?")
		return normal(interp.GeneralError)
	}
	opt := arg[1]
	pos := strings.IndexByte(optstring, opt)
	if pos < 0 {
		setVar(varname, "?")
		setVar("OPTARG", string(opt))
		setVar("OPTIND", strconv.Itoa(idx+2))
		return normal(interp.Success)
	}
	setVar(varname, string(opt))
	if pos+1 < len(optstring) && optstring[pos+1] == ':' {
		if len(arg) > 2 {
			setVar("OPTARG", arg[2:])
			setVar("OPTIND", strconv.Itoa(idx+2))
		} else if idx+1 < len(positional) {
			setVar("OPTARG", positional[idx+1])
			setVar("OPTIND", strconv.Itoa(idx+3))
		} else {
			setVar(varname, "?")
			setVar("OPTIND", strconv.Itoa(idx+2))
			return normal(interp.GeneralError)
		}
	} else {
		setVar("OPTIND", strconv.Itoa(idx+2))
	}
	return normal(interp.Success)
}

// printfCmd implements a practical subset of POSIX printf: the common
// conversions (%s %d %i %c %% plus width/precision), cycling the
// format string over however many arguments are given, per
// original_source/brush-builtins/src/printf.rs.
func printfCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) == 0 {
		return usageError(ctx, "usage: printf format [args...]")
	}
	format, rest := args[0], args[1:]
	out, err := formatPrintf(format, rest)
	if err != nil {
		return failf(ctx, "%v", err)
	}
	fmt.Fprint(ctx.Stdout, out)
	return normal(interp.Success)
}

func formatPrintf(format string, args []string) (string, error) {
	var sb strings.Builder
	ai := 0
	nextArg := func() string {
		if ai < len(args) {
			a := args[ai]
			ai++
			return a
		}
		return ""
	}
	consumeOnce := func() bool {
		for i := 0; i < len(format); i++ {
			c := format[i]
			if c != '%' {
				if c == '\\' && i+1 < len(format) {
					i++
					sb.WriteByte(escapeByte(format[i]))
					continue
				}
				sb.WriteByte(c)
				continue
			}
			i++
			if i >= len(format) {
				return false
			}
			start := i
			for i < len(format) && strings.ContainsRune("-+ 0123456789.", rune(format[i])) {
				i++
			}
			if i >= len(format) {
				return false
			}
			spec := "%" + format[start:i+1]
			switch format[i] {
			case '%':
				sb.WriteByte('%')
			case 's':
				fmt.Fprintf(&sb, spec, nextArg())
			case 'd', 'i':
				v, _ := strconv.ParseInt(nextArg(), 0, 64)
				fmt.Fprintf(&sb, strings.Replace(spec, string(format[i]), "d", 1), v)
			case 'c':
				a := nextArg()
				if len(a) > 0 {
					sb.WriteByte(a[0])
				}
			default:
				sb.WriteString(spec)
			}
		}
		return true
	}
	if !consumeOnce() {
		return "", fmt.Errorf("printf: invalid format string %q", format)
	}
	for ai < len(args) {
		consumeOnce()
	}
	return sb.String(), nil
}

func escapeByte(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

// aliases is process-wide (not per-Shell) since the teacher's Shell
// has no slot for it and spec.md treats aliases as a textual
// pre-expansion concern rather than part of C4's variable environment.
var aliases = map[string]string{}

func aliasCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) == 0 {
		names := make([]string, 0, len(aliases))
		for name := range aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(ctx.Stdout, "alias %s=%s\n", name, shQuote(aliases[name]))
		}
		return normal(interp.Success)
	}
	code := interp.Success
	for _, a := range args {
		name, value, hasValue := splitAssign(a)
		if !hasValue {
			v, ok := aliases[name]
			if !ok {
				fmt.Fprintf(ctx.Stderr, "%s: %s: not found\n", ctx.Name, name)
				code = interp.GeneralError
				continue
			}
			fmt.Fprintf(ctx.Stdout, "alias %s=%s\n", name, shQuote(v))
			continue
		}
		aliases[name] = value
	}
	return normal(code)
}

func unaliasCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) > 0 && args[0] == "-a" {
		aliases = map[string]string{}
		return normal(interp.Success)
	}
	for _, name := range args {
		delete(aliases, name)
	}
	return normal(interp.Success)
}

// Lookup returns an alias's expansion text, for C1/C2 to consult ahead
// of tokenizing the next command word (bash only expands aliases in
// that one syntactic position).
func Lookup(name string) (string, bool) {
	v, ok := aliases[name]
	return v, ok
}
