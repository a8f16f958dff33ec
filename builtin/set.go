package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brushsh/brush/interp"
)

// setOptNames is spec.md §6's full `set -o` name enumeration. Only the
// subset interp.Options promotes to a dedicated field actually changes
// executor behavior; the rest are tracked in Opts.Shopt for
// introspection (`set -o`/`set +o` listing) without yet driving
// anything, a documented scope reduction rather than silent dropping.
var setOptNames = []string{
	"allexport", "braceexpand", "emacs", "errexit", "errtrace", "functrace",
	"hashall", "histexpand", "history", "ignoreeof", "interactive-comments",
	"keyword", "monitor", "noclobber", "noexec", "noglob", "nolog", "notify",
	"nounset", "onecmd", "physical", "pipefail", "posix", "privileged",
	"verbose", "vi", "xtrace",
}

// shoptNames is spec.md §6's `shopt` name enumeration.
var shoptNames = []string{
	"autocd", "cdable_vars", "cdspell", "checkhash", "checkjobs", "checkwinsize",
	"cmdhist", "compat31", "compat32", "compat40", "compat41", "compat42", "compat43", "compat44",
	"complete_fullquote", "direxpand", "dirspell", "dotglob", "execfail",
	"expand_aliases", "extdebug", "extglob", "extquote", "failglob",
	"force_fignore", "globasciiranges", "globstar", "gnu_errfmt", "histappend",
	"histreedit", "histverify", "hostcomplete", "huponexit", "inherit_errexit",
	"interactive_comments", "lastpipe", "lithist", "localvar_inherit",
	"localvar_unset", "login_shell", "mailwarn", "no_empty_cmd_completion",
	"nocaseglob", "nocasematch", "nullglob", "progcomp", "progcomp_alias",
	"promptvars", "restricted_shell", "shift_verbose", "sourcepath", "xpg_echo",
}

func setBoolOpt(sh *interp.Shell, name string, value bool) {
	switch name {
	case "errexit":
		sh.Opts.Errexit = value
	case "nounset":
		sh.Opts.Nounset = value
	case "xtrace":
		sh.Opts.Xtrace = value
	case "noexec":
		sh.Opts.Noexec = value
	case "noglob":
		sh.Opts.Noglob = value
	case "pipefail":
		sh.Opts.Pipefail = value
	case "noclobber":
		sh.Opts.Noclobber = value
	case "verbose":
		sh.Opts.Verbose = value
	case "monitor":
		sh.Opts.Monitor = value
	case "errtrace":
		sh.Opts.Errtrace = value
	}
	sh.Opts.Shopt[name] = value
}

func getBoolOpt(sh *interp.Shell, name string) bool {
	switch name {
	case "errexit":
		return sh.Opts.Errexit
	case "nounset":
		return sh.Opts.Nounset
	case "xtrace":
		return sh.Opts.Xtrace
	case "noexec":
		return sh.Opts.Noexec
	case "noglob":
		return sh.Opts.Noglob
	case "pipefail":
		return sh.Opts.Pipefail
	case "noclobber":
		return sh.Opts.Noclobber
	case "verbose":
		return sh.Opts.Verbose
	case "monitor":
		return sh.Opts.Monitor
	case "errtrace":
		return sh.Opts.Errtrace
	}
	return sh.Opts.Shopt[name]
}

// shortOptLetters maps single-letter `set -x` style flags to their
// `-o` long name, the subset spec.md §6 names explicitly.
var shortOptLetters = map[byte]string{
	'e': "errexit",
	'u': "nounset",
	'x': "xtrace",
	'n': "noexec",
	'f': "noglob",
	'v': "verbose",
	'C': "noclobber",
}

func setCmd(ctx *interp.ExecContext, args []string) interp.Result {
	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			i++
			goto positional
		case a == "-o" || a == "+o":
			on := a == "-o"
			if i+1 >= len(args) {
				listOpts(ctx, on)
				continue
			}
			i++
			name := args[i]
			if !isKnownSetOpt(name) {
				return usageError(ctx, "invalid option name %s", name)
			}
			setBoolOpt(ctx.Shell, name, on)
		case len(a) >= 2 && (a[0] == '-' || a[0] == '+'):
			on := a[0] == '-'
			for j := 1; j < len(a); j++ {
				name, ok := shortOptLetters[a[j]]
				if !ok {
					return usageError(ctx, "%c: invalid option", a[j])
				}
				setBoolOpt(ctx.Shell, name, on)
			}
		default:
			goto positional
		}
	}
positional:
	if i < len(args) {
		ctx.Shell.Calls.SetPositional(append([]string(nil), args[i:]...))
	}
	return normal(interp.Success)
}

func isKnownSetOpt(name string) bool {
	for _, n := range setOptNames {
		if n == name {
			return true
		}
	}
	return false
}

func listOpts(ctx *interp.ExecContext, on bool) {
	names := append([]string(nil), setOptNames...)
	sort.Strings(names)
	for _, name := range names {
		state := "off"
		if getBoolOpt(ctx.Shell, name) {
			state = "on"
		}
		if on {
			fmt.Fprintf(ctx.Stdout, "%-20s%s\n", name, state)
		} else {
			fmt.Fprintf(ctx.Stdout, "set -o %s\n", name)
		}
	}
}

// shoptCmd implements the `shopt` built-in, keeping every name in
// spec.md §6's enumeration in Opts.Shopt so `extglob`/`globstar`/etc.
// are queryable even for the ones no executor code path consults yet.
func shoptCmd(ctx *interp.ExecContext, args []string) interp.Result {
	quiet := false
	setVal, unsetVal := false, false
	var names []string
	for _, a := range args {
		switch a {
		case "-s":
			setVal = true
		case "-u":
			unsetVal = true
		case "-q":
			quiet = true
		default:
			names = append(names, a)
		}
	}
	if !setVal && !unsetVal {
		if len(names) == 0 {
			names = append([]string(nil), shoptNames...)
			sort.Strings(names)
		}
		allSet := true
		for _, name := range names {
			v := ctx.Shell.Opts.Shopt[name]
			if !v {
				allSet = false
			}
			if !quiet {
				state := "off"
				if v {
					state = "on"
				}
				fmt.Fprintf(ctx.Stdout, "%-24s%s\n", name, state)
			}
		}
		if allSet {
			return normal(interp.Success)
		}
		return normal(interp.GeneralError)
	}
	for _, name := range names {
		if !isKnownShoptName(name) {
			return usageError(ctx, "%s: invalid shell option name", name)
		}
		ctx.Shell.Opts.Shopt[name] = setVal
	}
	return normal(interp.Success)
}

func isKnownShoptName(name string) bool {
	for _, n := range shoptNames {
		if n == name {
			return true
		}
	}
	return strings.HasPrefix(name, "compat")
}
