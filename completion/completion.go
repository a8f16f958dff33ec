// Package completion implements the C13 completion engine of spec.md
// §4.13: given a command line and cursor position, it tokenizes the
// prefix up to the cursor, determines the word being completed and its
// role, consults the registered rule set, gathers and filters
// candidates, and returns them alongside the insertion point and
// delete count the caller should replace.
//
// Grounded on original_source/brush-interactive/src/completion.rs
// (complete_async/postprocess_completion_candidate_for_display/
// escape_completion_for_insertion), adapted from Rust's async
// single-shot future into a plain synchronous call: this repo's
// executor is already single-threaded cooperative (spec.md §5), so
// generating candidates is just another suspension point rather than
// something requiring its own cancellation plumbing. Filename/command
// candidate shapes draw on the pack's other_examples completion files,
// none of which implement the same line/cursor-driven model, so only
// their candidate-collection idioms (dedup via a seen-set, sorted
// output) carry over.
package completion

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
)

// Candidate is one completion suggestion before display postprocessing.
type Candidate struct {
	Value      string
	IsFilename bool // true for filename/directory candidates, gates the trailing-separator/autoquote behavior
}

// Options mirrors brush-interactive's ProcessingOptions: flags a rule
// can set to steer how its candidates get displayed and re-inserted.
type Options struct {
	TreatAsFilenames     bool
	NoTrailingSpaceAtEOL bool
	NoAutoquoteFilenames bool
	QuoteChar            byte // 0, '\'', or '"'; detected from the line up to the cursor
}

// Result is what Complete returns: spec.md §4.13's "ordered candidate
// list plus the insertion point and delete count".
type Result struct {
	Candidates     []string
	InsertionIndex int
	DeleteCount    int
	Options        Options
}

// Context carries the resolved state Complete needs from the running
// shell: variable/function/builtin names for the relevant word roles,
// and PATH resolution for command-name completion.
type Context struct {
	Shell *interp.Shell
	Rules *RuleSet
}

// Complete implements spec.md §4.13 end to end.
func (c *Context) Complete(line string, pos int) Result {
	if pos > len(line) {
		pos = len(line)
	}
	w := tokenizeForCompletion(line, pos)

	var raw []Candidate
	var opts Options
	switch {
	case strings.TrimSpace(line) == "" && c.Rules.EmptyLine != nil:
		raw, opts = c.Rules.Generate(c.Shell, *c.Rules.EmptyLine, w)
	case w.Role == RoleVariable:
		raw, opts = c.completeVariable(w)
	case w.Role == RoleCommand:
		raw, opts = c.completeCommand(w)
	default:
		raw, opts = c.completeArgument(w)
	}

	fignore, _ := c.Shell.Env.GetStr("FIGNORE")
	raw = filterCandidates(raw, w.Text, fignore, c.Shell.Opts.Shopt["nocasematch"])

	quoteChar := detectQuoteContext(line, pos)
	opts.QuoteChar = quoteChar

	endOfLine := pos == len(line)
	values := make([]string, len(raw))
	for i, cand := range raw {
		values[i] = postprocessForDisplay(cand, opts, c.workingDir(), endOfLine)
	}

	return Result{
		Candidates:     values,
		InsertionIndex: w.Start,
		DeleteCount:    pos - w.Start,
		Options:        opts,
	}
}

func (c *Context) workingDir() string {
	if wd, ok := c.Shell.Env.GetStr("PWD"); ok && wd != "" {
		return wd
	}
	wd, _ := os.Getwd()
	return wd
}

// completeVariable lists shell variable names for a word starting with
// "$", per spec.md §4.13's "variable name after $" role.
func (c *Context) completeVariable(w Word) ([]Candidate, Options) {
	prefix := strings.TrimPrefix(w.Text, "$")
	var out []Candidate
	c.Shell.Env.Each(func(name string, _ env.Variable) bool {
		if strings.HasPrefix(name, prefix) {
			out = append(out, Candidate{Value: "$" + name})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, Options{}
}

// completeCommand gathers builtin, function, and PATH candidates for
// the word in command position (first word of the pipeline element).
func (c *Context) completeCommand(w Word) ([]Candidate, Options) {
	if strings.ContainsRune(w.Text, '/') {
		return c.completeFilename(w)
	}

	seen := make(map[string]bool)
	var out []Candidate
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, Candidate{Value: name})
		}
	}

	for name := range c.Shell.Functions {
		add(name)
	}
	for _, name := range c.Rules.builtinNames() {
		add(name)
	}
	for _, dir := range filepath.SplitList(pathEnv(c.Shell)) {
		if dir == "" {
			dir = "."
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if fi, err := e.Info(); err == nil && fi.Mode()&0o111 != 0 {
				add(e.Name())
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, Options{}
}

func pathEnv(sh *interp.Shell) string {
	v, _ := sh.Env.GetStr("PATH")
	return v
}

// completeArgument consults the rule set for the command this word is
// an argument to (complete -F/-W), falling back to filename completion
// per spec.md §4.13's "default" rule.
func (c *Context) completeArgument(w Word) ([]Candidate, Options) {
	if rule, ok := c.Rules.Lookup(w.Command); ok {
		return c.Rules.Generate(c.Shell, rule, w)
	}
	if rule, ok := c.Rules.Default(); ok {
		return c.Rules.Generate(c.Shell, rule, w)
	}
	return c.completeFilename(w)
}

func (c *Context) completeFilename(w Word) ([]Candidate, Options) {
	dir, base := filepath.Split(w.Text)
	searchDir := dir
	if searchDir == "" {
		searchDir = "."
	}
	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil, Options{TreatAsFilenames: true}
	}
	var out []Candidate
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if base == "" && strings.HasPrefix(name, ".") {
			continue
		}
		out = append(out, Candidate{Value: dir + name, IsFilename: true})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, Options{TreatAsFilenames: true}
}
