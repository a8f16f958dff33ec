package ast

import "github.com/brushsh/brush/token"

// Word is a sequence of WordPart pieces; joining a word's pieces as
// source text must reproduce the original source (spec.md §3).
type Word []WordPart

func (w Word) Pos() token.Pos {
	if len(w) == 0 {
		return 0
	}
	return w[0].Pos()
}
func (w Word) End() token.Pos {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1].End()
}

// Lit returns the word's raw source text if it consists solely of a
// single unquoted literal part, else "".
func (w Word) Lit() string {
	if len(w) != 1 {
		return ""
	}
	l, ok := w[0].(*Lit)
	if !ok {
		return ""
	}
	return l.Value
}

// WordPart is implemented by every node that can appear inside a Word.
type WordPart interface {
	Node
	wordPartNode()
}

func (*Lit) wordPartNode()        {}
func (*SglQuoted) wordPartNode()  {}
func (*DblQuoted) wordPartNode()  {}
func (*ParamExp) wordPartNode()   {}
func (*CmdSubst) wordPartNode()   {}
func (*ArithmExp) wordPartNode()  {}
func (*ProcSubst) wordPartNode()  {}
func (*ExtGlob) wordPartNode()    {}
func (*Tilde) wordPartNode()      {}
func (*AnsiCQuoted) wordPartNode(){}
func (*LocaleQuoted) wordPartNode(){}

// Lit is a run of characters with no special meaning: neither quoted
// nor an expansion boundary.
type Lit struct {
	ValuePos token.Pos
	Value    string
}

func (l *Lit) Pos() token.Pos { return l.ValuePos }
func (l *Lit) End() token.Pos { return l.ValuePos + token.Pos(len(l.Value)) }

// Tilde is a leading `~` or `~user` tilde-prefix (spec.md §4.5 phase 1).
type Tilde struct {
	Position token.Pos
	User     string // "" means the invoking user
}

func (t *Tilde) Pos() token.Pos { return t.Position }
func (t *Tilde) End() token.Pos { return t.Position + token.Pos(1+len(t.User)) }

// SglQuoted is single-quoted text: no expansions apply, `\` is literal.
type SglQuoted struct {
	Position token.Pos
	Value    string
}

func (q *SglQuoted) Pos() token.Pos { return q.Position }
func (q *SglQuoted) End() token.Pos { return q.Position + token.Pos(2+len(q.Value)) }

// AnsiCQuoted is a `$'...'` ANSI-C quoted string; Value already has
// backslash escapes resolved at parse time.
type AnsiCQuoted struct {
	Position token.Pos
	Raw      string // the raw (unescaped) source between the quotes
	Value    string // resolved value
}

func (q *AnsiCQuoted) Pos() token.Pos { return q.Position }
func (q *AnsiCQuoted) End() token.Pos { return q.Position + token.Pos(3+len(q.Raw)) }

// LocaleQuoted is a `$"..."` locale-translated string.
type LocaleQuoted struct {
	Position token.Pos
	Parts    []WordPart
}

func (q *LocaleQuoted) Pos() token.Pos { return q.Position }
func (q *LocaleQuoted) End() token.Pos {
	end := q.Position + 2
	if len(q.Parts) > 0 {
		end = q.Parts[len(q.Parts)-1].End()
	}
	return end + 1
}

// DblQuoted is a double-quoted subword list: expansions apply, `\`
// escapes only `$`, backtick, `"`, `\`, and newline.
type DblQuoted struct {
	Position token.Pos
	Parts    []WordPart
}

func (q *DblQuoted) Pos() token.Pos { return q.Position }
func (q *DblQuoted) End() token.Pos {
	end := q.Position + 1
	if len(q.Parts) > 0 {
		end = q.Parts[len(q.Parts)-1].End()
	}
	return end + 1
}

// CmdSubst is a `$(...)` or `` `...` `` command substitution: a fully
// parsed sub-program whose stdout (trailing newlines trimmed) becomes
// the expansion result (spec.md §4.5).
type CmdSubst struct {
	Left, Right token.Pos
	Backtick    bool
	Prog        *Program
}

func (c *CmdSubst) Pos() token.Pos { return c.Left }
func (c *CmdSubst) End() token.Pos { return c.Right + 1 }

// ArithmExp is `$((...))`  or the deprecated `$[...]` arithmetic
// expansion.
type ArithmExp struct {
	Left, Right token.Pos
	Bracket     bool
	X           ArithmExpr
}

func (a *ArithmExp) Pos() token.Pos { return a.Left }
func (a *ArithmExp) End() token.Pos {
	if a.Bracket {
		return a.Right + 1
	}
	return a.Right + 2
}

// ProcSubst is `<(cmd)` or `>(cmd)` process substitution.
type ProcSubst struct {
	OpPos, Rparen token.Pos
	In            bool // true for <( ), false for >( )
	Prog          *Program
}

func (s *ProcSubst) Pos() token.Pos { return s.OpPos }
func (s *ProcSubst) End() token.Pos { return s.Rparen + 1 }

// ExtGlob is one of the five extended-glob forms: `?(...)`, `*(...)`,
// `+(...)`, `@(...)`, `!(...)`.
type ExtGlob struct {
	OpPos   token.Pos
	Op      byte // '?', '*', '+', '@', '!'
	Pattern string
	EndPos  token.Pos
}

func (e *ExtGlob) Pos() token.Pos { return e.OpPos }
func (e *ExtGlob) End() token.Pos { return e.EndPos }

// ParamExp is `$name`, `${name}`, or any of the `${...}` forms listed
// in spec.md §4.5 phase 2.
type ParamExp struct {
	Dollar, Rbrace token.Pos
	Short          bool // true for bare `$name` with no braces
	Length         bool // `${#name}`
	Indirect       bool // `${!name}`
	Param          *Lit
	Index          Word    // `${array[expr]}`
	Slice          *Slice  // `${name:off:len}`
	Replace        *Replace
	Modifier       *Modifier
	AtOp           byte // `${!prefix*}` -> '*', `${!prefix@}` -> '@', 0 otherwise
}

func (p *ParamExp) Pos() token.Pos { return p.Dollar }
func (p *ParamExp) End() token.Pos {
	if p.Rbrace > 0 {
		return p.Rbrace + 1
	}
	return p.Param.End()
}

// Slice is `${name:offset}` / `${name:offset:length}`.
type Slice struct {
	Offset Word
	Length Word // nil when no length given
}

// Replace is `${name/pat/rep}`-family search/replace.
type Replace struct {
	All       bool // `//`
	AnchorBeg bool // `/#`
	AnchorEnd bool // `/%`
	Pattern   Word
	With      Word
}

// ModOp enumerates the non-replace `${...}` operators from spec.md §4.5.
type ModOp int

const (
	ModNone ModOp = iota
	ModUseDefault  // :-
	ModAssignDefault // :=
	ModError       // :?
	ModUseAlt      // :+
	ModRemSmallestPrefix // #
	ModRemLargestPrefix  // ##
	ModRemSmallestSuffix // %
	ModRemLargestSuffix  // %%
	ModCaseAt      // @op introspection (Q,E,P,A,K,a,k)
)

// Modifier wraps one `${name OP word}` clause; UnsetOnly distinguishes
// the `:`-less variants ("unset") from the `:`-having ones ("unset or
// null"), per spec.md §4.5.
type Modifier struct {
	Op       ModOp
	UnsetOnly bool
	Word     Word
	AtOpChar byte // meaningful when Op == ModCaseAt: one of Q E P A K a k
}
