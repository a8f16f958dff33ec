package completion

import (
	"sort"
	"strings"

	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
)

// Rule is one registered completion handler, per spec.md §4.13's
// "registered rule set (regular, default, empty-line, per-command)".
// Exactly one of Function/Wordlist is set; a Rule with neither is the
// filename fallback and never needs to be registered explicitly (it is
// what Context.completeArgument does when no Rule matches at all).
type Rule struct {
	Function string   // `complete -F funcname cmd`: candidates come from calling this shell function
	Wordlist []string // `complete -W "a b c" cmd`: candidates are this fixed, space-split word list
	Options  Options
}

// RuleSet is the C13 rule registration table: `complete -F`/`-W`
// entries keyed by command name, plus the `-D` default and `-E`
// empty-line rules used when no command-specific entry matches.
type RuleSet struct {
	ByCommand map[string]Rule
	Def       *Rule // `complete -D`: used for any command with no specific rule
	EmptyLine *Rule // `complete -E`: used when the line being completed is empty

	// BuiltinNames supplies the builtin command-name candidates for
	// RoleCommand completion; set by builtin.Register, since builtin
	// imports this package for the `complete`/`compgen` builtins and
	// this package therefore cannot import builtin.
	BuiltinNames []string
}

// NewRuleSet returns an empty table.
func NewRuleSet() *RuleSet {
	return &RuleSet{ByCommand: make(map[string]Rule)}
}

// Register installs or replaces the rule for one command name, per
// `complete -F funcname name` / `complete -W wordlist name`.
func (rs *RuleSet) Register(name string, rule Rule) {
	rs.ByCommand[name] = rule
}

// Unregister drops a command's rule, per `complete -r name`.
func (rs *RuleSet) Unregister(name string) {
	delete(rs.ByCommand, name)
}

// Lookup finds the rule registered for an exact command name.
func (rs *RuleSet) Lookup(command string) (Rule, bool) {
	r, ok := rs.ByCommand[command]
	return r, ok
}

// Default returns the `-D` fallback rule, if one was registered.
func (rs *RuleSet) Default() (Rule, bool) {
	if rs.Def == nil {
		return Rule{}, false
	}
	return *rs.Def, true
}

// Names lists every command name with a registered rule, sorted, for
// `complete -p`.
func (rs *RuleSet) Names() []string {
	names := make([]string, 0, len(rs.ByCommand))
	for name := range rs.ByCommand {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (rs *RuleSet) builtinNames() []string { return rs.BuiltinNames }

// Generate runs one rule against the word under the cursor. A
// function rule is invoked exactly like `complete -F` dispatch in
// bash: positional parameters $1/$2/$3 are the command name, the
// current word, and the previous word, and candidates are read back
// from the COMPREPLY array afterward.
func (rs *RuleSet) Generate(sh *interp.Shell, rule Rule, w Word) ([]Candidate, Options) {
	if rule.Function != "" {
		return rs.generateFromFunction(sh, rule, w)
	}
	var out []Candidate
	for _, v := range rule.Wordlist {
		if v == "" {
			continue
		}
		out = append(out, Candidate{Value: v})
	}
	return out, rule.Options
}

func (rs *RuleSet) generateFromFunction(sh *interp.Shell, rule Rule, w Word) ([]Candidate, Options) {
	_, ok := sh.CallFunction(rule.Function, []string{w.Command, w.Text, w.Prev})
	if !ok {
		return nil, rule.Options
	}
	v, ok := sh.Env.Get("COMPREPLY", env.AnyScope)
	if !ok {
		return nil, rule.Options
	}
	var out []Candidate
	for _, s := range v.List {
		if s != "" {
			out = append(out, Candidate{Value: s})
		}
	}
	return out, rule.Options
}

// SplitWordlist implements `complete -W wordlist`'s word splitting:
// plain whitespace splitting, the same rule bash applies to the
// argument before any further expansion.
func SplitWordlist(s string) []string {
	return strings.Fields(s)
}
