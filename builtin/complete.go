package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brushsh/brush/completion"
	"github.com/brushsh/brush/interp"
)

// rules is the process-wide C13 rule registration table: one set of
// `complete -F`/`-W`/`-D` entries per shell process, grounded on
// original_source/brush-interactive/src/completion.rs's single
// completion configuration object. Register wires its BuiltinNames
// from this package's own registry so command-position completion
// sees every built-in name without completion importing builtin.
var rules = completion.NewRuleSet()

// Rules exposes the shared rule table so a line-editing front end
// (cmd/brush's interactive loop, or a future readline integration) can
// build a completion.Context against the same registrations `complete`
// installed.
func Rules() *completion.RuleSet { return rules }

// completeCmd implements `complete -F funcname name...` / `complete -W
// wordlist name...` / `complete -D` / `complete -r name...` / `complete
// -p`, per SPEC_FULL.md's C13 rule registration table.
func completeCmd(ctx *interp.ExecContext, args []string) interp.Result {
	var funcName, wordlist string
	var isDefault, isEmptyLine, remove, print bool
	var names []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-F":
			i++
			if i >= len(args) {
				return usageError(ctx, "-F: option requires an argument")
			}
			funcName = args[i]
		case "-W":
			i++
			if i >= len(args) {
				return usageError(ctx, "-W: option requires an argument")
			}
			wordlist = args[i]
		case "-D":
			isDefault = true
		case "-E":
			isEmptyLine = true
		case "-r":
			remove = true
		case "-p":
			print = true
		default:
			if len(args[i]) > 0 && args[i][0] == '-' {
				return usageError(ctx, "%s: invalid option", args[i])
			}
			names = append(names, args[i:]...)
			i = len(args)
		}
	}

	if print {
		printCompletionRules(ctx)
		return normal(interp.Success)
	}

	if remove {
		if len(names) == 0 {
			return usageError(ctx, "-r: usage: complete -r [name ...]")
		}
		for _, n := range names {
			rules.Unregister(n)
		}
		return normal(interp.Success)
	}

	rule := completion.Rule{
		Function: funcName,
		Options:  completion.Options{TreatAsFilenames: funcName == "" && wordlist == ""},
	}
	if wordlist != "" {
		rule.Wordlist = completion.SplitWordlist(wordlist)
	}

	if isDefault {
		rules.Def = &rule
		return normal(interp.Success)
	}
	if isEmptyLine {
		rules.EmptyLine = &rule
		return normal(interp.Success)
	}
	if len(names) == 0 {
		return usageError(ctx, "usage: complete -F funcname | -W wordlist name ...")
	}
	for _, n := range names {
		rules.Register(n, rule)
	}
	return normal(interp.Success)
}

func printCompletionRules(ctx *interp.ExecContext) {
	for _, name := range rules.Names() {
		r, _ := rules.Lookup(name)
		switch {
		case r.Function != "":
			fmt.Fprintf(ctx.Stdout, "complete -F %s %s\n", r.Function, name)
		default:
			fmt.Fprintf(ctx.Stdout, "complete -W %s %s\n", shQuote(joinWords(r.Wordlist)), name)
		}
	}
}

func joinWords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}

// compgenCmd implements `compgen -W wordlist [-- word]` / `compgen -F
// funcname [-- word]`: the same candidate generation `complete` drives
// interactively, invoked directly for scripting and testing.
func compgenCmd(ctx *interp.ExecContext, args []string) interp.Result {
	var wordlist, funcName, word string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-W":
			i++
			if i < len(args) {
				wordlist = args[i]
			}
		case "-F":
			i++
			if i < len(args) {
				funcName = args[i]
			}
		case "--":
			i++
			if i < len(args) {
				word = args[i]
			}
		default:
			word = args[i]
		}
	}

	rule := completion.Rule{Function: funcName}
	if wordlist != "" {
		rule.Wordlist = completion.SplitWordlist(wordlist)
	}

	cands, _ := rules.Generate(ctx.Shell, rule, completion.NewWord(word))
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		if strings.HasPrefix(c.Value, word) {
			out = append(out, c.Value)
		}
	}
	sort.Strings(out)
	for _, v := range out {
		fmt.Fprintln(ctx.Stdout, v)
	}
	return normal(interp.Success)
}
