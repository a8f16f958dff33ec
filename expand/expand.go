// Package expand implements C5, the expansion engine: turning a parsed
// ast.Word into the final argument/field list a command sees, per
// spec.md §4.5's seven-phase pipeline (brace, tilde, parameter/command/
// arithmetic, word splitting, pathname expansion, quote removal — brace
// and quote removal are folded into the other phases below rather than
// run as separate passes, since this repo's ast.Word already carries
// quoting as node structure instead of raw text).
//
// Grounded on the teacher's expand package (expand/expand.go,
// expand/param.go, now removed): the teacher expands mvdan.cc/sh/v3's
// own syntax.Word against its own expand.Environ. This is a ground-up
// rewrite against ast.Word/env.Env/arith.Eval, since neither of the
// teacher's types survive the C4/C9 redesign, but the phase ordering,
// the quoted-vs-unquoted field model, and the IFS splitting algorithm
// below are carried over from the teacher's approach.
package expand

import (
	"fmt"
	"os"
	"strings"

	"github.com/brushsh/brush/arith"
	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
	"github.com/brushsh/brush/openfiles"
)

// Config is C5's expander, wired to a *interp.Shell so command and
// process substitution can spawn real subshells. Config implements
// interp.Expander.
type Config struct {
	Shell *interp.Shell
}

// New returns a Config bound to sh. Callers normally then assign
// sh.Expand = expand.New(sh).
func New(sh *interp.Shell) *Config {
	return &Config{Shell: sh}
}

// part is one piece of a field's value after expansion: its text and
// whether it came from a quoting context (single/double quotes,
// quoted parameter/command/arithmetic expansion), which exempts it
// from word splitting and pathname expansion, per spec.md §4.5's
// quote-removal-is-last-and-exempts-quoted-text rule.
type part struct {
	s      string
	quoted bool
	// extGlob is set when this part came from an *ast.ExtGlob node; s
	// holds a plain-text fallback (used by Literal and non-glob
	// contexts), while globField consults extGlob directly to build a
	// real alternation regex instead of matching the fallback text
	// literally.
	extGlob *ast.ExtGlob
}

// field is one not-yet-split, not-yet-globbed word in progress.
type field = []part

// Fields implements interp.Expander: expand every word to its final,
// split, globbed argument list.
func (c *Config) Fields(words []ast.Word) ([]string, error) {
	var out []string
	for _, w := range words {
		fs, err := c.expandWordFields(w, false)
		if err != nil {
			return nil, err
		}
		for _, f := range fs {
			split := c.splitField(f)
			for _, sf := range split {
				globbed, err := c.globField(sf)
				if err != nil {
					return nil, err
				}
				out = append(out, globbed...)
			}
		}
	}
	return out, nil
}

// Literal implements interp.Expander: expand w to a single string with
// no word splitting or pathname expansion, used for assignment RHSes,
// redirection targets, and case/test operands (spec.md §4.5, "contexts
// that take exactly one word").
func (c *Config) Literal(w ast.Word) (string, error) {
	fs, err := c.expandWordFields(w, false)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, f := range fs {
		for _, p := range f {
			sb.WriteString(p.s)
		}
	}
	return sb.String(), nil
}

// expandWordFields expands one word into one or more fields. More than
// one field results only from brace expansion or an unquoted/quoted
// "$@"/array "[@]" expansion splicing in one field per element.
// quotedCtx is true when w is already nested inside a double-quoted
// context (affects how "$@"/"$*" and command/arithmetic substitution
// results are marked).
func (c *Config) expandWordFields(w ast.Word, quotedCtx bool) ([]field, error) {
	if lit := w.Lit(); lit != "" && strings.ContainsRune(lit, '{') {
		if alts := Braces(lit); len(alts) > 1 {
			var out []field
			for _, a := range alts {
				fs, err := c.expandWordFields(ast.Word{&ast.Lit{Value: a}}, quotedCtx)
				if err != nil {
					return nil, err
				}
				out = append(out, fs...)
			}
			return out, nil
		}
	}

	fields := []field{nil}
	for _, wp := range w {
		single, multi, err := c.expandPart(wp, quotedCtx)
		if err != nil {
			return nil, err
		}
		if multi != nil {
			cur := fields[len(fields)-1]
			if len(multi) == 0 {
				continue
			}
			fields[len(fields)-1] = append(append(field{}, cur...), multi[0]...)
			fields = append(fields, multi[1:]...)
			continue
		}
		fields[len(fields)-1] = append(fields[len(fields)-1], single...)
	}
	return fields, nil
}

// expandPart expands a single WordPart. It returns either single (to
// append to the field currently being built) or multi (a list of
// additional whole fields to splice in, used only by unquoted/quoted
// "$@" and "${array[@]}").
func (c *Config) expandPart(wp ast.WordPart, quotedCtx bool) (single field, multi []field, err error) {
	switch n := wp.(type) {
	case *ast.Lit:
		return field{{s: n.Value, quoted: quotedCtx}}, nil, nil

	case *ast.SglQuoted:
		return field{{s: n.Value, quoted: true}}, nil, nil

	case *ast.AnsiCQuoted:
		return field{{s: n.Value, quoted: true}}, nil, nil

	case *ast.LocaleQuoted:
		// No translation catalog is wired; the locale-quoted text is
		// used verbatim, which is the correct behavior whenever no
		// translation is found for the current locale.
		var sb strings.Builder
		for _, p := range n.Parts {
			if lit, ok := p.(*ast.Lit); ok {
				sb.WriteString(lit.Value)
			}
		}
		return field{{s: sb.String(), quoted: true}}, nil, nil

	case *ast.Tilde:
		return field{{s: c.expandTilde(n.User), quoted: quotedCtx}}, nil, nil

	case *ast.DblQuoted:
		if len(n.Parts) == 0 {
			return field{{s: "", quoted: true}}, nil, nil
		}
		inner, err := c.expandWordFields(ast.Word(n.Parts), true)
		if err != nil {
			return nil, nil, err
		}
		if len(inner) == 1 {
			return inner[0], nil, nil
		}
		// A nested "$@"/array expansion spliced extra fields even
		// inside this double-quoted word (each field individually
		// quoted), so propagate them as multi.
		return nil, inner, nil

	case *ast.ParamExp:
		return c.expandParamExp(n, quotedCtx)

	case *ast.CmdSubst:
		out, err := c.runCmdSubst(n.Prog)
		if err != nil {
			return nil, nil, err
		}
		return field{{s: out, quoted: quotedCtx}}, nil, nil

	case *ast.ArithmExp:
		v, err := arith.Eval(c.arithConfig(), n.X)
		if err != nil {
			return nil, nil, err
		}
		return field{{s: fmt.Sprintf("%d", v), quoted: quotedCtx}}, nil, nil

	case *ast.ProcSubst:
		path, err := c.procSubst(n)
		if err != nil {
			return nil, nil, err
		}
		return field{{s: path, quoted: quotedCtx}}, nil, nil

	case *ast.ExtGlob:
		return field{{s: extGlobLiteral(n), quoted: false, extGlob: n}}, nil, nil

	default:
		return nil, nil, fmt.Errorf("expand: unsupported word part %T", wp)
	}
}

// runCmdSubst executes a pre-parsed command-substitution program in a
// subshell and returns its captured stdout with trailing newlines
// trimmed, per spec.md §4.5's command-substitution rule. The Program
// was already fully parsed at C2/C3 time (ast.CmdSubst.Prog), so this
// only needs to execute it, not reparse any text.
func (c *Config) runCmdSubst(prog *ast.Program) (string, error) {
	sub := c.Shell.Subshell()
	var buf strings.Builder
	sub.Files.Set(1, &openfiles.File{Writer: &buf})
	sub.Run(prog)
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (c *Config) expandTilde(user string) string {
	if user == "" {
		if home, ok := c.Shell.Env.GetStr("HOME"); ok {
			return home
		}
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return "~"
	}
	if dir, ok := lookupUserHomeDir(user); ok {
		return dir
	}
	return "~" + user
}

func (c *Config) arithConfig() *arith.Config {
	e := c.Shell.Env
	return &arith.Config{
		Get: func(name string) (string, bool) { return e.GetStr(name) },
		Set: func(name, value string) error {
			return e.Set(name, env.Variable{Kind: env.Scalar, Str: value}, nil, env.Nearest)
		},
		GetIndex: func(name string, idx int64) (string, bool) {
			v, ok := e.Get(name, env.AnyScope)
			if !ok || v.Kind != env.Indexed || idx < 0 || int(idx) >= len(v.List) {
				return "", false
			}
			return v.List[idx], true
		},
		SetIndex: func(name string, idx int64, value string) error {
			v, _ := e.Get(name, env.AnyScope)
			if v.Kind != env.Indexed {
				v = env.Variable{Kind: env.Indexed}
			}
			for int64(len(v.List)) <= idx {
				v.List = append(v.List, "")
			}
			v.List[idx] = value
			return e.Set(name, v, nil, env.Nearest)
		},
		ExpandWord: func(w ast.Word) (string, error) { return c.Literal(w) },
	}
}
