// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package printer turns a parsed program back into shell source,
// reformatting it into a canonical, consistently indented style.
//
// Unlike the teacher's mvdan.cc/sh/v3/syntax printer, which preserves
// the author's own line breaks and blank-line spacing by consulting
// token positions while it writes, this printer always regenerates
// layout from the AST's structure alone: one statement per line,
// tab (or configurable space) indentation per nesting level, and a
// fixed placement for keywords like "then" and "do". That is a
// deliberate scope reduction from full position-preserving pretty
// printing, traded for a printer that needs nothing beyond the tree
// shape to produce stable, idempotent output.
package printer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/brushsh/brush/ast"
)

// Config controls how a Program is rendered.
type Config struct {
	// Spaces is 0 (default) for tab indentation, >0 for that many
	// spaces per indentation level.
	Spaces int
	// BinaryNextLine places a pipeline's "|" or an and-or list's
	// "&&"/"||" at the start of the continuation line rather than
	// at the end of the previous one.
	BinaryNextLine bool
}

// Fprint pretty-prints prog to w using the default Config.
func Fprint(w io.Writer, prog *ast.Program) error {
	return Config{}.Fprint(w, prog)
}

// Fprint pretty-prints prog to w.
func (c Config) Fprint(w io.Writer, prog *ast.Program) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw, c: c}
	for _, cmd := range prog.Commands {
		p.completeCommand(cmd)
	}
	return bw.Flush()
}

type printer struct {
	w         *bufio.Writer
	c         Config
	level     int
	wantSpace bool
}

func (p *printer) indentStr() string {
	if p.c.Spaces > 0 {
		return spacesOf(p.c.Spaces * p.level)
	}
	return tabsOf(p.level)
}

func tabsOf(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '\t'
	}
	return string(b)
}

func spacesOf(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func (p *printer) writeIndent() { p.w.WriteString(p.indentStr()) }

func (p *printer) space() {
	p.w.WriteByte(' ')
	p.wantSpace = false
}

func (p *printer) str(s string) {
	if p.wantSpace {
		p.space()
	}
	p.w.WriteString(s)
	p.wantSpace = true
}

func (p *printer) completeCommand(c *ast.CompleteCommand) {
	for i, list := range c.Lists {
		p.writeIndent()
		p.wantSpace = false
		p.andOrList(list)
		if i < len(c.Terminators) && c.Terminators[i] == ast.SepBackground {
			p.w.WriteString(" &")
		}
		p.w.WriteByte('\n')
	}
}

func (p *printer) andOrList(a *ast.AndOrList) {
	p.pipeline(a.First)
	for _, part := range a.Rest {
		op := "&&"
		if part.Op == ast.Or {
			op = "||"
		}
		if p.c.BinaryNextLine {
			p.w.WriteByte('\n')
			p.writeIndent()
			p.wantSpace = false
			p.str(op)
		} else {
			p.str(op)
			p.space()
		}
		p.pipeline(part.Pipeline)
	}
}

func (p *printer) pipeline(pl *ast.Pipeline) {
	if pl.Negated {
		p.str("!")
	}
	for i, stmt := range pl.Commands {
		if i > 0 {
			if p.c.BinaryNextLine {
				p.w.WriteByte('\n')
				p.writeIndent()
				p.wantSpace = false
				p.str("|")
			} else {
				p.str("|")
				p.space()
			}
		}
		p.stmt(stmt)
	}
}

func (p *printer) stmt(s *ast.Stmt) {
	switch x := s.Cmd.(type) {
	case *ast.SimpleCommand:
		p.simpleCommand(x)
	case *ast.CompoundStmt:
		p.compoundStmt(x)
	case *ast.FunctionDef:
		p.functionDef(x)
	case *ast.ExtendedTest:
		p.extendedTest(x)
	case *ast.AndOrList:
		p.andOrList(x)
	default:
		fmt.Fprintf(p.w, "<?unknown command %T?>", x)
	}
}

func (p *printer) simpleCommand(s *ast.SimpleCommand) {
	for _, a := range s.Assigns {
		p.assignment(a)
	}
	if s.Name != nil {
		p.word(s.Name)
	}
	for _, w := range s.Args {
		p.word(w)
	}
	for _, r := range s.Redirs {
		p.redirect(r)
	}
}

func (p *printer) assignment(a *ast.Assignment) {
	op := "="
	if a.Append {
		op = "+="
	}
	switch {
	case a.Array != nil:
		p.str(a.Name.Value + op + "(")
		p.wantSpace = false
		for i, el := range a.Array.Elems {
			if i > 0 {
				p.space()
			}
			if el.Key != nil {
				p.w.WriteByte('[')
				p.wordRaw(el.Key)
				p.w.WriteString("]=")
			}
			p.wordRaw(el.Value)
		}
		p.w.WriteByte(')')
		p.wantSpace = true
	case a.Index != nil:
		p.str(a.Name.Value + "[")
		p.wantSpace = false
		p.wordRaw(a.Index)
		p.w.WriteString("]" + op)
		p.wantSpace = false
		p.wordRaw(a.Value)
		p.wantSpace = true
	default:
		p.str(a.Name.Value + op)
		p.wantSpace = false
		p.wordRaw(a.Value)
		p.wantSpace = true
	}
}

func (p *printer) redirect(r *ast.Redirect) {
	var fd string
	if r.Fd != nil {
		fd = r.Fd.Value
	}
	p.str(fd + r.Op.String())
	p.wantSpace = false
	p.wordRaw(r.Word)
	p.wantSpace = true
}

// word prints w as a stand-alone argument, inserting a leading space
// if one is pending.
func (p *printer) word(w ast.Word) {
	if p.wantSpace {
		p.space()
	}
	p.wordRaw(w)
	p.wantSpace = true
}

// wordRaw prints w's parts with no surrounding space handling, for use
// right after a token that must hug it (an assignment's "=", a
// redirection operator).
func (p *printer) wordRaw(w ast.Word) {
	for _, part := range w {
		p.wordPart(part)
	}
}

func (p *printer) wordPart(wp ast.WordPart) {
	switch x := wp.(type) {
	case *ast.Lit:
		p.w.WriteString(x.Value)
	case *ast.Tilde:
		p.w.WriteString("~" + x.User)
	case *ast.SglQuoted:
		p.w.WriteString("'" + x.Value + "'")
	case *ast.AnsiCQuoted:
		p.w.WriteString("$'" + x.Raw + "'")
	case *ast.LocaleQuoted:
		p.w.WriteString(`$"`)
		for _, sub := range x.Parts {
			p.wordPart(sub)
		}
		p.w.WriteString(`"`)
	case *ast.DblQuoted:
		p.w.WriteByte('"')
		for _, sub := range x.Parts {
			p.wordPart(sub)
		}
		p.w.WriteByte('"')
	case *ast.ParamExp:
		p.paramExp(x)
	case *ast.CmdSubst:
		if x.Backtick {
			p.w.WriteByte('`')
			p.subProgram(x.Prog)
			p.w.WriteByte('`')
		} else {
			p.w.WriteString("$(")
			p.subProgram(x.Prog)
			p.w.WriteByte(')')
		}
	case *ast.ArithmExp:
		p.w.WriteString("$((")
		p.arithm(x.X)
		p.w.WriteString("))")
	case *ast.ProcSubst:
		if x.In {
			p.w.WriteString("<(")
		} else {
			p.w.WriteString(">(")
		}
		p.subProgram(x.Prog)
		p.w.WriteByte(')')
	case *ast.ExtGlob:
		p.w.WriteByte(x.Op)
		p.w.WriteByte('(')
		p.w.WriteString(x.Pattern)
		p.w.WriteByte(')')
	default:
		fmt.Fprintf(p.w, "<?unknown word part %T?>", x)
	}
}

// subProgram renders a nested program inline, joining its statements
// with "; " since command/process substitutions never span indent
// levels in practice.
func (p *printer) subProgram(prog *ast.Program) {
	for i, cmd := range prog.Commands {
		for j, list := range cmd.Lists {
			if i > 0 || j > 0 {
				p.w.WriteString("; ")
			}
			save := p.wantSpace
			p.wantSpace = false
			p.andOrList(list)
			p.wantSpace = save
		}
	}
}

func (p *printer) paramExp(e *ast.ParamExp) {
	if e.Short {
		p.w.WriteString("$" + e.Param.Value)
		return
	}
	p.w.WriteString("${")
	if e.Length {
		p.w.WriteByte('#')
	}
	if e.Indirect {
		p.w.WriteByte('!')
	}
	p.w.WriteString(e.Param.Value)
	if e.Index != nil {
		p.w.WriteByte('[')
		p.wordRaw(e.Index)
		p.w.WriteByte(']')
	}
	if e.AtOp != 0 {
		p.w.WriteByte(e.AtOp)
	}
	switch {
	case e.Slice != nil:
		p.w.WriteByte(':')
		p.wordRaw(e.Slice.Offset)
		if e.Slice.Length != nil {
			p.w.WriteByte(':')
			p.wordRaw(e.Slice.Length)
		}
	case e.Replace != nil:
		r := e.Replace
		p.w.WriteByte('/')
		switch {
		case r.All:
			p.w.WriteByte('/')
		case r.AnchorBeg:
			p.w.WriteByte('#')
		case r.AnchorEnd:
			p.w.WriteByte('%')
		}
		p.wordRaw(r.Pattern)
		p.w.WriteByte('/')
		p.wordRaw(r.With)
	case e.Modifier != nil:
		p.modifier(e.Modifier)
	}
	p.w.WriteByte('}')
}

var modOps = map[ast.ModOp]string{
	ast.ModUseDefault:         "-",
	ast.ModAssignDefault:      "=",
	ast.ModError:              "?",
	ast.ModUseAlt:             "+",
	ast.ModRemSmallestPrefix:  "#",
	ast.ModRemLargestPrefix:   "##",
	ast.ModRemSmallestSuffix:  "%",
	ast.ModRemLargestSuffix:   "%%",
}

func (p *printer) modifier(m *ast.Modifier) {
	if m.Op == ast.ModCaseAt {
		p.w.WriteByte('@')
		p.w.WriteByte(m.AtOpChar)
		return
	}
	if !m.UnsetOnly {
		p.w.WriteByte(':')
	}
	p.w.WriteString(modOps[m.Op])
	p.wordRaw(m.Word)
}

func (p *printer) arithm(x ast.ArithmExpr) {
	switch a := x.(type) {
	case *ast.ArithBinary:
		p.arithm(a.X)
		p.w.WriteString(" " + string(a.Op) + " ")
		p.arithm(a.Y)
	case *ast.ArithUnary:
		if a.Post {
			p.arithm(a.X)
			p.w.WriteString(string(a.Op))
		} else {
			p.w.WriteString(string(a.Op))
			p.arithm(a.X)
		}
	case *ast.ArithTernary:
		p.arithm(a.Cond)
		p.w.WriteString(" ? ")
		p.arithm(a.X)
		p.w.WriteString(" : ")
		p.arithm(a.Y)
	case *ast.ArithParen:
		p.w.WriteByte('(')
		p.arithm(a.X)
		p.w.WriteByte(')')
	case *ast.ArithWord:
		p.wordRaw(a.W)
		if a.Index != nil {
			p.w.WriteByte('[')
			p.arithm(a.Index)
			p.w.WriteByte(']')
		}
	}
}

func (p *printer) extendedTest(t *ast.ExtendedTest) {
	p.str("[[")
	p.space()
	p.boolExpr(t.X)
	p.space()
	p.w.WriteString("]]")
	p.wantSpace = true
}

func (p *printer) boolExpr(x ast.BoolExpr) {
	switch b := x.(type) {
	case *ast.BinaryTest:
		p.boolExpr(b.X)
		p.w.WriteString(" " + b.Op + " ")
		p.boolExpr(b.Y)
	case *ast.UnaryTest:
		p.w.WriteString(b.Op + " ")
		p.boolExpr(b.X)
	case *ast.ParenTest:
		p.w.WriteByte('(')
		p.boolExpr(b.X)
		p.w.WriteByte(')')
	case *ast.WordTest:
		p.wordRaw(b.W)
	}
}

func (p *printer) functionDef(f *ast.FunctionDef) {
	if f.BashStyle {
		p.str("function " + f.Name.Value + "()")
	} else {
		p.str(f.Name.Value + "()")
	}
	p.space()
	p.compoundStmt(f.Body)
}

func (p *printer) compoundStmt(c *ast.CompoundStmt) {
	switch cmd := c.Cmd.(type) {
	case *ast.BraceGroup:
		p.braceGroup(cmd)
	case *ast.Subshell:
		p.subshell(cmd)
	case *ast.IfClause:
		p.ifClause(cmd)
	case *ast.WhileClause:
		p.loopClause("while", cmd.Cond, cmd.Body)
	case *ast.UntilClause:
		p.loopClause("until", cmd.Cond, cmd.Body)
	case *ast.ForClause:
		p.forClause(cmd)
	case *ast.ArithForC:
		p.arithForClause(cmd)
	case *ast.SelectClause:
		p.selectClause(cmd)
	case *ast.CaseClause:
		p.caseClause(cmd)
	case *ast.ArithCmd:
		p.str("((")
		p.wantSpace = false
		p.arithm(cmd.X)
		p.w.WriteString("))")
		p.wantSpace = true
	case *ast.CoprocClause:
		p.str("coproc")
		if cmd.Name != nil {
			p.str(cmd.Name.Value)
		}
		p.space()
		p.stmt(cmd.Body)
	}
	for _, r := range c.Redirs {
		p.redirect(r)
	}
}

func (p *printer) braceGroup(b *ast.BraceGroup) {
	p.str("{")
	p.w.WriteByte('\n')
	p.body(b.Body)
	p.writeIndent()
	p.w.WriteString("}")
	p.wantSpace = true
}

func (p *printer) subshell(s *ast.Subshell) {
	p.str("(")
	p.wantSpace = false
	p.w.WriteByte('\n')
	p.body(s.Body)
	p.writeIndent()
	p.w.WriteString(")")
	p.wantSpace = true
}

func (p *printer) body(c *ast.CompoundList) {
	p.level++
	for _, s := range c.Stmts {
		p.writeIndent()
		p.wantSpace = false
		p.stmt(s)
		p.w.WriteByte('\n')
	}
	p.level--
}

func (p *printer) ifClause(c *ast.IfClause) {
	p.str("if")
	p.space()
	p.inlineList(c.Cond)
	p.w.WriteString("; then\n")
	p.body(c.Then)
	for _, e := range c.Elifs {
		p.writeIndent()
		p.w.WriteString("elif ")
		p.inlineList(e.Cond)
		p.w.WriteString("; then\n")
		p.body(e.Then)
	}
	if c.Else != nil {
		p.writeIndent()
		p.w.WriteString("else\n")
		p.body(c.Else)
	}
	p.writeIndent()
	p.w.WriteString("fi")
	p.wantSpace = true
}

func (p *printer) loopClause(kw string, cond, body *ast.CompoundList) {
	p.str(kw)
	p.space()
	p.inlineList(cond)
	p.w.WriteString("; do\n")
	p.body(body)
	p.writeIndent()
	p.w.WriteString("done")
	p.wantSpace = true
}

func (p *printer) forClause(f *ast.ForClause) {
	p.str("for " + f.Name.Value)
	if f.HasIn {
		p.w.WriteString(" in")
		for _, w := range f.Words {
			p.word(w)
		}
	}
	p.w.WriteString("; do\n")
	p.body(f.Body)
	p.writeIndent()
	p.w.WriteString("done")
	p.wantSpace = true
}

func (p *printer) arithForClause(f *ast.ArithForC) {
	p.w.WriteString("for ((")
	if f.Init != nil {
		p.arithm(f.Init)
	}
	p.w.WriteString("; ")
	if f.Cond != nil {
		p.arithm(f.Cond)
	}
	p.w.WriteString("; ")
	if f.Post != nil {
		p.arithm(f.Post)
	}
	p.w.WriteString(")); do\n")
	p.body(f.Body)
	p.writeIndent()
	p.w.WriteString("done")
	p.wantSpace = true
}

func (p *printer) selectClause(s *ast.SelectClause) {
	p.str("select " + s.Name.Value)
	p.w.WriteString(" in")
	for _, w := range s.Words {
		p.word(w)
	}
	p.w.WriteString("; do\n")
	p.body(s.Body)
	p.writeIndent()
	p.w.WriteString("done")
	p.wantSpace = true
}

func (p *printer) caseClause(c *ast.CaseClause) {
	p.str("case")
	p.space()
	p.wordRaw(c.Word)
	p.w.WriteString(" in\n")
	for _, item := range c.Items {
		p.writeIndent()
		for i, pat := range item.Patterns {
			if i > 0 {
				p.w.WriteString(" | ")
			}
			p.wordRaw(pat)
		}
		p.w.WriteString(")\n")
		p.body(item.Body)
		p.level++
		p.writeIndent()
		p.level--
		switch item.Term {
		case ast.CaseFallthrough:
			p.w.WriteString(";&\n")
		case ast.CaseContinueMatch:
			p.w.WriteString(";;&\n")
		default:
			p.w.WriteString(";;\n")
		}
	}
	p.writeIndent()
	p.w.WriteString("esac")
	p.wantSpace = true
}

// inlineList renders a CompoundList's statements separated by "; ",
// used for a clause's condition, which always stays on the keyword's
// own line.
func (p *printer) inlineList(c *ast.CompoundList) {
	for i, s := range c.Stmts {
		if i > 0 {
			p.w.WriteString("; ")
		}
		p.wantSpace = false
		p.stmt(s)
	}
}
