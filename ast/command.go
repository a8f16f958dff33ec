package ast

import "github.com/brushsh/brush/token"

// SimpleCommand is `prefix* word? suffix*` from spec.md §3: assignments
// and redirections may precede the command word, and words, redirections,
// and process substitutions may follow it.
type SimpleCommand struct {
	Assigns []*Assignment
	Redirs  []*Redirect // redirections interleaved anywhere in the command
	Name    Word        // nil for a bare assignment/redirection statement
	Args    []Word
}

func (s *SimpleCommand) Pos() token.Pos {
	if len(s.Assigns) > 0 {
		return s.Assigns[0].Pos()
	}
	if s.Name != nil {
		return s.Name.Pos()
	}
	if len(s.Redirs) > 0 {
		return s.Redirs[0].Pos()
	}
	return 0
}

func (s *SimpleCommand) End() token.Pos {
	end := token.Pos(0)
	if len(s.Args) > 0 {
		end = s.Args[len(s.Args)-1].End()
	} else if s.Name != nil {
		end = s.Name.End()
	}
	if len(s.Redirs) > 0 {
		if last := s.Redirs[len(s.Redirs)-1].End(); last > end {
			end = last
		}
	}
	if len(s.Assigns) > 0 {
		if last := s.Assigns[len(s.Assigns)-1].End(); last > end {
			end = last
		}
	}
	return end
}

// CompoundStmt wraps a CompoundCommand plus the redirection list that
// applies for its whole duration (spec.md §3, "Compound(CompoundCommand,
// RedirectList?)").
type CompoundStmt struct {
	Cmd    CompoundCommand
	Redirs []*Redirect
}

func (c *CompoundStmt) Pos() token.Pos { return c.Cmd.Pos() }
func (c *CompoundStmt) End() token.Pos {
	end := c.Cmd.End()
	if len(c.Redirs) > 0 {
		if last := c.Redirs[len(c.Redirs)-1].End(); last > end {
			end = last
		}
	}
	return end
}

// CompoundCommand is implemented by every grouped construct from
// spec.md §3's CompoundCommand variant list.
type CompoundCommand interface {
	Node
	compoundNode()
}

func (*BraceGroup) compoundNode() {}
func (*Subshell) compoundNode()   {}
func (*ForClause) compoundNode()  {}
func (*ArithForC) compoundNode()  {}
func (*CaseClause) compoundNode() {}
func (*IfClause) compoundNode()   {}
func (*WhileClause) compoundNode(){}
func (*UntilClause) compoundNode(){}
func (*ArithCmd) compoundNode()   {}
func (*SelectClause) compoundNode(){}
func (*CoprocClause) compoundNode(){}

// CompoundList is a sequence of statements making up a compound
// command's body (e.g. a brace group's body, an if's then-branch).
type CompoundList struct {
	Stmts []*Stmt
}

func (c *CompoundList) Pos() token.Pos {
	if len(c.Stmts) == 0 {
		return 0
	}
	return c.Stmts[0].Pos()
}
func (c *CompoundList) End() token.Pos {
	if len(c.Stmts) == 0 {
		return 0
	}
	return c.Stmts[len(c.Stmts)-1].End()
}

// BraceGroup is `{ list; }`.
type BraceGroup struct {
	Lbrace, Rbrace token.Pos
	Body           *CompoundList
}

func (b *BraceGroup) Pos() token.Pos { return b.Lbrace }
func (b *BraceGroup) End() token.Pos { return b.Rbrace + 1 }

// Subshell is `( list )`, executed in a deep-cloned shell state per
// spec.md §5.
type Subshell struct {
	Lparen, Rparen token.Pos
	Body           *CompoundList
}

func (s *Subshell) Pos() token.Pos { return s.Lparen }
func (s *Subshell) End() token.Pos { return s.Rparen + 1 }

// ForClause is `for name in words; do list; done`.
type ForClause struct {
	ForPos, DonePos token.Pos
	Name            *Lit
	Words           []Word // nil means iterate over "$@"
	HasIn           bool
	Body            *CompoundList
}

func (f *ForClause) Pos() token.Pos { return f.ForPos }
func (f *ForClause) End() token.Pos { return f.DonePos + 4 }

// ArithForC is the C-style `for (( init; cond; update )); do list; done`.
type ArithForC struct {
	ForPos, DonePos  token.Pos
	Init, Cond, Post ArithmExpr // any may be nil
	Body             *CompoundList
}

func (f *ArithForC) Pos() token.Pos { return f.ForPos }
func (f *ArithForC) End() token.Pos { return f.DonePos + 4 }

// CaseClause is `case word in pat1) list1;; ... esac`.
type CaseClause struct {
	CasePos, EsacPos token.Pos
	Word             Word
	Items            []*CaseItem
}

func (c *CaseClause) Pos() token.Pos { return c.CasePos }
func (c *CaseClause) End() token.Pos { return c.EsacPos + 4 }

// CaseTerminator distinguishes `;;`, `;&`, `;;&`.
type CaseTerminator int

const (
	CaseBreak CaseTerminator = iota
	CaseFallthrough
	CaseContinueMatch
)

// CaseItem is one `pattern-list) list TERM` clause.
type CaseItem struct {
	Patterns []Word
	Body     *CompoundList
	Term     CaseTerminator
}

// IfClause is `if cond; then list; [elif cond; then list;]... [else list;] fi`.
type IfClause struct {
	IfPos, FiPos token.Pos
	Cond, Then   *CompoundList
	Elifs        []*Elif
	Else         *CompoundList // nil if no else branch
}

func (c *IfClause) Pos() token.Pos { return c.IfPos }
func (c *IfClause) End() token.Pos { return c.FiPos + 2 }

// Elif is one `elif cond; then list` arm.
type Elif struct {
	Cond, Then *CompoundList
}

// WhileClause is `while cond; do list; done`.
type WhileClause struct {
	WhilePos, DonePos token.Pos
	Cond, Body        *CompoundList
}

func (w *WhileClause) Pos() token.Pos { return w.WhilePos }
func (w *WhileClause) End() token.Pos { return w.DonePos + 4 }

// UntilClause is `until cond; do list; done`.
type UntilClause struct {
	UntilPos, DonePos token.Pos
	Cond, Body        *CompoundList
}

func (u *UntilClause) Pos() token.Pos { return u.UntilPos }
func (u *UntilClause) End() token.Pos { return u.DonePos + 4 }

// ArithCmd is the bash `(( expr ))` arithmetic command.
type ArithCmd struct {
	Left, Right token.Pos
	X           ArithmExpr
}

func (a *ArithCmd) Pos() token.Pos { return a.Left }
func (a *ArithCmd) End() token.Pos { return a.Right + 2 }

// SelectClause is the bash `select name in words; do list; done` menu
// loop (SPEC_FULL addition, §C9).
type SelectClause struct {
	SelectPos, DonePos token.Pos
	Name               *Lit
	Words              []Word
	Body               *CompoundList
}

func (s *SelectClause) Pos() token.Pos { return s.SelectPos }
func (s *SelectClause) End() token.Pos { return s.DonePos + 4 }

// CoprocClause is the bash `coproc [NAME] command` bidirectional-pipe
// background job (SPEC_FULL addition, §C9).
type CoprocClause struct {
	CoprocPos token.Pos
	Name      *Lit // nil means the default name "COPROC"
	Body      *Stmt
}

func (c *CoprocClause) Pos() token.Pos { return c.CoprocPos }
func (c *CoprocClause) End() token.Pos { return c.Body.End() }

// FunctionDef is a function declaration, stored by the executor (C9)
// into the environment's (C4) function table on execution.
type FunctionDef struct {
	Position  token.Pos
	BashStyle bool // declared with the `function` keyword
	Name      *Lit
	Body      *CompoundStmt
}

func (f *FunctionDef) Pos() token.Pos { return f.Position }
func (f *FunctionDef) End() token.Pos { return f.Body.End() }

// ExtendedTest is the bash `[[ expr ]]` boolean expression command.
type ExtendedTest struct {
	Left, Right token.Pos
	X           BoolExpr
}

func (t *ExtendedTest) Pos() token.Pos { return t.Left }
func (t *ExtendedTest) End() token.Pos { return t.Right + 2 }

// BoolExpr is implemented by the nodes that make up an ExtendedTest's
// boolean expression tree.
type BoolExpr interface {
	Node
	boolExprNode()
}

func (*BinaryTest) boolExprNode() {}
func (*UnaryTest) boolExprNode()  {}
func (*ParenTest) boolExprNode()  {}
func (*WordTest) boolExprNode()   {}

// BinaryTest is a binary `[[ ]]` operator: `&&`, `||`, `==`, `!=`, `=~`,
// `-eq`-class, `<`, `>`.
type BinaryTest struct {
	OpPos token.Pos
	Op    string
	X, Y  BoolExpr
}

func (b *BinaryTest) Pos() token.Pos { return b.X.Pos() }
func (b *BinaryTest) End() token.Pos { return b.Y.End() }

// UnaryTest is a unary `[[ ]]` operator: `!`, `-e`, `-f`, `-z`, `-n`, ...
type UnaryTest struct {
	OpPos token.Pos
	Op    string
	X     BoolExpr
}

func (u *UnaryTest) Pos() token.Pos { return u.OpPos }
func (u *UnaryTest) End() token.Pos { return u.X.End() }

// ParenTest is a parenthesized `[[ ]]` sub-expression.
type ParenTest struct {
	Lparen, Rparen token.Pos
	X              BoolExpr
}

func (p *ParenTest) Pos() token.Pos { return p.Lparen }
func (p *ParenTest) End() token.Pos { return p.Rparen + 1 }

// WordTest is a bare word operand inside `[[ ]]`.
type WordTest struct{ W Word }

func (w *WordTest) Pos() token.Pos { return w.W.Pos() }
func (w *WordTest) End() token.Pos { return w.W.End() }
