// Package ast defines the program AST produced by the grammar parser
// (C3) from a token stream, following the data model in spec.md §3.
//
// Node positions are tracked with token.Pos so diagnostics and the
// printer can recover original source locations; nodes are immutable
// once built by the parser.
package ast

import "github.com/brushsh/brush/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Program is a shell source unit: an ordered list of CompleteCommand,
// plus enough bookkeeping to translate a Pos back into a line/column.
type Program struct {
	Name     string
	Commands []*CompleteCommand
	Comments []*Comment
	Lines    []int // offset of the first byte of each line; Lines[0] == 0
}

func (p *Program) Pos() token.Pos {
	if len(p.Commands) == 0 {
		return 0
	}
	return p.Commands[0].Pos()
}

func (p *Program) End() token.Pos {
	if len(p.Commands) == 0 {
		return 0
	}
	return p.Commands[len(p.Commands)-1].End()
}

// Position resolves a Pos to a 1-based line/column using the offsets
// recorded in Lines.
func (p *Program) Position(pos token.Pos) token.Position {
	offset := int(pos) - 1
	line := 0
	for i, lineStart := range p.Lines {
		if lineStart > offset {
			break
		}
		line = i
	}
	return token.Position{
		Offset: offset,
		Line:   line + 1,
		Column: offset - p.Lines[line] + 1,
	}
}

// Comment is a single `#`-introduced end-of-line comment.
type Comment struct {
	Hash token.Pos
	Text string
}

func (c *Comment) Pos() token.Pos { return c.Hash }
func (c *Comment) End() token.Pos { return c.Hash + token.Pos(len(c.Text)) }

// CompleteCommand is a list of AndOrList terminated by ";" or "&",
// per spec.md §3.
type CompleteCommand struct {
	Lists        []*AndOrList
	Terminators  []SepKind // one per List, aligned by index; last may be implicit
	SourceTarget token.Pos
}

// SepKind distinguishes the statement separators `;` and `&`.
type SepKind int

const (
	SepNone SepKind = iota // end of input, no explicit separator
	SepSemicolon
	SepBackground
)

func (c *CompleteCommand) Pos() token.Pos {
	if len(c.Lists) == 0 {
		return c.SourceTarget
	}
	return c.Lists[0].Pos()
}

func (c *CompleteCommand) End() token.Pos {
	if len(c.Lists) == 0 {
		return c.SourceTarget
	}
	return c.Lists[len(c.Lists)-1].End()
}

// AndOr distinguishes the `&&` and `||` connectors of an AndOrList.
type AndOr int

const (
	AndOrNone AndOr = iota
	And
	Or
)

// AndOrPart is one `(AndOr, Pipeline)` pair following the first
// Pipeline in an AndOrList.
type AndOrPart struct {
	Op       AndOr
	OpPos    token.Pos
	Pipeline *Pipeline
}

// AndOrList is a first Pipeline plus zero or more AndOrPart, evaluated
// left to right with short-circuiting, per spec.md §3.
type AndOrList struct {
	First *Pipeline
	Rest  []*AndOrPart
}

func (a *AndOrList) Pos() token.Pos { return a.First.Pos() }
func (a *AndOrList) End() token.Pos {
	if len(a.Rest) == 0 {
		return a.First.End()
	}
	return a.Rest[len(a.Rest)-1].Pipeline.End()
}

// Pipeline is a non-empty sequence of Command joined by `|`, optionally
// preceded by `!` to logically negate the final exit status.
type Pipeline struct {
	Bang     token.Pos // zero if not negated
	Negated  bool
	Commands []*Stmt
}

func (p *Pipeline) Pos() token.Pos {
	if p.Negated {
		return p.Bang
	}
	return p.Commands[0].Pos()
}
func (p *Pipeline) End() token.Pos { return p.Commands[len(p.Commands)-1].End() }

// Stmt wraps one Command in a pipeline with its own prefix assignments,
// suffix redirections (for Simple, these live on Command; compound
// commands carry their own RedirectList) and background/async marker
// is carried at the CompleteCommand level for the whole list.
type Stmt struct {
	Cmd      Command
	Position token.Pos
}

func (s *Stmt) Pos() token.Pos { return s.Position }
func (s *Stmt) End() token.Pos {
	if s.Cmd == nil {
		return s.Position
	}
	return s.Cmd.End()
}

// Command is implemented by the four command variants from spec.md §3:
// Simple, Compound, Function, ExtendedTest.
type Command interface {
	Node
	commandNode()
}

func (*SimpleCommand) commandNode()  {}
func (*CompoundStmt) commandNode()   {}
func (*FunctionDef) commandNode()    {}
func (*ExtendedTest) commandNode()   {}

// AndOrList also satisfies Command so a CompoundList's Stmts can each
// hold a full `&&`/`||` pipeline chain (a compound command's body is a
// list of and-or lists, not bare pipeline stages).
func (*AndOrList) commandNode() {}

// Assignment is a `name=word` or `name+=word` prefix assignment.
type Assignment struct {
	Name     *Lit
	Append   bool
	Value    Word
	Array    *ArrayLiteral // non-nil for `name=(a b c)`
	Index    Word          // non-nil for `name[i]=word`
}

func (a *Assignment) Pos() token.Pos { return a.Name.Pos() }
func (a *Assignment) End() token.Pos {
	if a.Array != nil {
		return a.Array.End()
	}
	return a.Value.End()
}

// ArrayLiteral is `(w1 w2 ...)` or `([k1]=w1 [k2]=w2 ...)` on the RHS
// of an assignment.
type ArrayLiteral struct {
	Lparen, Rparen token.Pos
	Elems          []ArrayElem
}

func (a *ArrayLiteral) Pos() token.Pos { return a.Lparen }
func (a *ArrayLiteral) End() token.Pos { return a.Rparen + 1 }

// ArrayElem is one element of an ArrayLiteral; Key is nil for plain
// `(a b c)` indexed-array literals.
type ArrayElem struct {
	Key   Word
	Value Word
}

// Redirect is one redirection clause, per spec.md §3.
type Redirect struct {
	OpPos token.Pos
	Fd    *Lit // nil means the operator's default fd
	Op    token.Op
	Word  Word // the redirection target word
	Hdoc  *Heredoc
}

func (r *Redirect) Pos() token.Pos {
	if r.Fd != nil {
		return r.Fd.Pos()
	}
	return r.OpPos
}
func (r *Redirect) End() token.Pos {
	if r.Hdoc != nil {
		return r.Hdoc.End()
	}
	return r.Word.End()
}

// Heredoc is a here-document body read at parse time (spec.md §3,
// "Here-document bodies are read at parse time").
type Heredoc struct {
	StripTabs bool
	Expand    bool // false when the here-end word was quoted
	Body      string
	BodyPos   token.Pos
	EndPos    token.Pos
}

func (h *Heredoc) Pos() token.Pos { return h.BodyPos }
func (h *Heredoc) End() token.Pos { return h.EndPos }
