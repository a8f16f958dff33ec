package parser

import (
	"fmt"
	"strings"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/token"
)

// maxAliasDepth bounds consecutive command-position alias re-expansion,
// guarding against a self-referential alias looping forever.
const maxAliasDepth = 20

type pendingHeredoc struct {
	node      *ast.Heredoc
	delim     string
	stripTabs bool
}

// Parser is the grammar parser (C3): it drives a lexer.Tokenizer and
// builds an ast.Program, calling back into the C2 sub-parsers
// (ParseWord, ParseArithm) to interpret each word's internal structure.
type Parser struct {
	opts   lexer.Options
	lx     *lexer.Tokenizer
	tk     token.Token
	peeked *token.Token

	pending []pendingHeredoc

	aliasLookup func(string) (string, bool)
	aliasDepth  int
}

// NewParser returns a Parser ready to parse one or more programs with
// the given tokenizer options.
func NewParser(opts lexer.Options) *Parser {
	return &Parser{opts: opts}
}

// SetAliasLookup installs the alias table consulted for command-word
// position alias expansion (spec.md §4.1 rule 6). Expansion is applied
// only to the first word of a simple command, matching POSIX.
func (p *Parser) SetAliasLookup(f func(string) (string, bool)) {
	p.aliasLookup = f
}

// Parse tokenizes and parses src into a Program named name (used for
// diagnostics, e.g. a script path or "-c").
func (p *Parser) Parse(src []byte, name string) (*ast.Program, error) {
	p.lx = lexer.New(src, p.opts)
	p.tk = token.Token{}
	p.peeked = nil
	if err := p.advance(); err != nil {
		return nil, err
	}
	prog := &ast.Program{Name: name}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	for p.tk.Kind != token.EOF {
		cc, err := p.completeCommand()
		if err != nil {
			return nil, err
		}
		prog.Commands = append(prog.Commands, cc)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	prog.Lines = p.lx.Lines()
	return prog, nil
}

// parseSub recursively parses a command-substitution or process-
// substitution body into its own Program. Positions inside the
// returned tree are relative to the substitution body, not the outer
// file: a nested parse does not thread an absolute byte offset back
// through the tokenizer, which only matters for diagnostics and the
// printer, not for execution semantics.
func (p *Parser) parseSub(src string, base token.Pos) (*ast.Program, error) {
	sub := NewParser(p.opts)
	sub.aliasLookup = p.aliasLookup
	return sub.Parse([]byte(src), "")
}

func (p *Parser) peek() (token.Token, error) {
	if p.peeked != nil {
		return *p.peeked, nil
	}
	tk, err := p.lx.Next()
	if err != nil {
		return token.Token{}, err
	}
	p.peeked = &tk
	return tk, nil
}

// advance consumes the current token and loads the next one. When the
// token being left behind is a Newline with here-documents pending on
// it, their bodies are read first — the tokenizer is already
// positioned at the start of the first body line.
func (p *Parser) advance() error {
	if p.tk.Kind == token.Operator && p.tk.Op == token.Newline && len(p.pending) > 0 {
		pend := p.pending
		p.pending = nil
		for _, ph := range pend {
			body, err := p.lx.HeredocBody(ph.delim, ph.stripTabs)
			if err != nil {
				return err
			}
			ph.node.Body = body
			ph.node.EndPos = ph.node.BodyPos + token.Pos(len(body))
		}
	}
	if p.peeked != nil {
		p.tk = *p.peeked
		p.peeked = nil
		return nil
	}
	tk, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.tk = tk
	return nil
}

func (p *Parser) curOp(op token.Op) bool {
	return p.tk.Kind == token.Operator && p.tk.Op == op
}

func (p *Parser) curReserved() (token.Op, bool) {
	if p.tk.Kind != token.Word {
		return 0, false
	}
	return token.LookupReserved(p.tk.Text)
}

func (p *Parser) curIsReserved(op token.Op) bool {
	o, ok := p.curReserved()
	return ok && o == op
}

func (p *Parser) skipNewlines() error {
	for p.curOp(token.Newline) {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) matchesStop(stopOps []token.Op) bool {
	var cur token.Op
	var ok bool
	switch p.tk.Kind {
	case token.Word:
		cur, ok = token.LookupReserved(p.tk.Text)
	case token.Operator:
		cur, ok = p.tk.Op, true
	}
	if !ok {
		return false
	}
	for _, s := range stopOps {
		if cur == s {
			return true
		}
	}
	return false
}

// completeCommand parses one `list separator?` unit: a chain of and-or
// lists each terminated by `;` or `&`, ending at a newline or EOF.
func (p *Parser) completeCommand() (*ast.CompleteCommand, error) {
	cc := &ast.CompleteCommand{}
	for {
		aol, err := p.andOrList()
		if err != nil {
			return nil, err
		}
		cc.Lists = append(cc.Lists, aol)
		switch {
		case p.curOp(token.Semicolon):
			cc.Terminators = append(cc.Terminators, ast.SepSemicolon)
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.curOp(token.And):
			cc.Terminators = append(cc.Terminators, ast.SepBackground)
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			cc.Terminators = append(cc.Terminators, ast.SepNone)
			return cc, nil
		}
		if p.curOp(token.Newline) || p.tk.Kind == token.EOF {
			return cc, nil
		}
	}
}

func (p *Parser) andOrList() (*ast.AndOrList, error) {
	first, err := p.pipeline()
	if err != nil {
		return nil, err
	}
	aol := &ast.AndOrList{First: first}
	for {
		var opKind ast.AndOr
		switch {
		case p.curOp(token.AndAnd):
			opKind = ast.And
		case p.curOp(token.OrOr):
			opKind = ast.Or
		default:
			return aol, nil
		}
		opPos := p.tk.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		pl, err := p.pipeline()
		if err != nil {
			return nil, err
		}
		aol.Rest = append(aol.Rest, &ast.AndOrPart{Op: opKind, OpPos: opPos, Pipeline: pl})
	}
}

func (p *Parser) pipeline() (*ast.Pipeline, error) {
	pl := &ast.Pipeline{}
	if p.curIsReserved(token.Bang) {
		pl.Negated = true
		pl.Bang = p.tk.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	for {
		pos := p.tk.Pos
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		pl.Commands = append(pl.Commands, &ast.Stmt{Cmd: cmd, Position: pos})
		if p.curOp(token.Pipe) || p.curOp(token.PipeAnd) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			continue
		}
		return pl, nil
	}
}

func (p *Parser) command() (ast.Command, error) {
	switch {
	case p.curIsReserved(token.Function):
		return p.functionDefKeyword()
	case p.curIsReserved(token.DLbrack):
		return p.extendedTest()
	case p.curIsReserved(token.Lbrace), p.curOp(token.Lparen), p.curOp(token.DLparen),
		p.curIsReserved(token.If), p.curIsReserved(token.While), p.curIsReserved(token.Until),
		p.curIsReserved(token.For), p.curIsReserved(token.Case), p.curIsReserved(token.Select),
		p.curIsReserved(token.Coproc):
		cc, err := p.compoundCommandGeneric()
		if err != nil {
			return nil, err
		}
		redirs, err := p.redirectList()
		if err != nil {
			return nil, err
		}
		return &ast.CompoundStmt{Cmd: cc, Redirs: redirs}, nil
	default:
		return p.simpleOrFunctionCommand()
	}
}

func (p *Parser) compoundCommandGeneric() (ast.CompoundCommand, error) {
	switch {
	case p.curIsReserved(token.Lbrace):
		return p.braceGroup()
	case p.curOp(token.Lparen):
		return p.subshell()
	case p.curOp(token.DLparen):
		return p.arithCmd()
	case p.curIsReserved(token.If):
		return p.ifClause()
	case p.curIsReserved(token.While):
		return p.whileClause()
	case p.curIsReserved(token.Until):
		return p.untilClause()
	case p.curIsReserved(token.For):
		return p.forClause()
	case p.curIsReserved(token.Case):
		return p.caseClause()
	case p.curIsReserved(token.Select):
		return p.selectClause()
	case p.curIsReserved(token.Coproc):
		return p.coprocClause()
	default:
		return nil, fmt.Errorf("parser: expected a compound command")
	}
}

// compoundList parses a sequence of and-or lists, each standing for one
// Stmt, separated by `;`, `&`, or newlines, stopping when the current
// token matches one of stopOps (a reserved word or plain operator) or
// EOF is reached.
func (p *Parser) compoundList(stopOps ...token.Op) (*ast.CompoundList, error) {
	cl := &ast.CompoundList{}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	for {
		if p.tk.Kind == token.EOF || p.matchesStop(stopOps) {
			return cl, nil
		}
		aol, err := p.andOrList()
		if err != nil {
			return nil, err
		}
		cl.Stmts = append(cl.Stmts, &ast.Stmt{Cmd: aol, Position: aol.Pos()})
		switch {
		case p.curOp(token.Semicolon), p.curOp(token.Newline), p.curOp(token.And):
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return cl, nil
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) braceGroup() (ast.CompoundCommand, error) {
	lb := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.compoundList(token.Rbrace)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Rbrace) {
		return nil, fmt.Errorf("parser: expected '}'")
	}
	rb := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.BraceGroup{Lbrace: lb, Rbrace: rb, Body: body}, nil
}

func (p *Parser) subshell() (ast.CompoundCommand, error) {
	lp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.compoundList(token.Rparen)
	if err != nil {
		return nil, err
	}
	if !p.curOp(token.Rparen) {
		return nil, fmt.Errorf("parser: expected ')'")
	}
	rp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Subshell{Lparen: lp, Rparen: rp, Body: body}, nil
}

func (p *Parser) arithCmd() (ast.CompoundCommand, error) {
	left := p.tk.Pos
	raw, err := p.lx.ScanUntilDoubleRparen()
	if err != nil {
		return nil, err
	}
	x, err := p.ParseArithm(raw, left+2)
	if err != nil {
		return nil, err
	}
	right := left + token.Pos(len(raw)) + 4
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.ArithCmd{Left: left, Right: right, X: x}, nil
}

func (p *Parser) ifClause() (ast.CompoundCommand, error) {
	ifPos := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.compoundList(token.Then)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Then) {
		return nil, fmt.Errorf("parser: expected 'then'")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	then, err := p.compoundList(token.Elif, token.Else, token.Fi)
	if err != nil {
		return nil, err
	}
	ic := &ast.IfClause{IfPos: ifPos, Cond: cond, Then: then}
	for p.curIsReserved(token.Elif) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		econd, err := p.compoundList(token.Then)
		if err != nil {
			return nil, err
		}
		if !p.curIsReserved(token.Then) {
			return nil, fmt.Errorf("parser: expected 'then'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		ethen, err := p.compoundList(token.Elif, token.Else, token.Fi)
		if err != nil {
			return nil, err
		}
		ic.Elifs = append(ic.Elifs, &ast.Elif{Cond: econd, Then: ethen})
	}
	if p.curIsReserved(token.Else) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBody, err := p.compoundList(token.Fi)
		if err != nil {
			return nil, err
		}
		ic.Else = elseBody
	}
	if !p.curIsReserved(token.Fi) {
		return nil, fmt.Errorf("parser: expected 'fi'")
	}
	ic.FiPos = p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	return ic, nil
}

func (p *Parser) whileClause() (ast.CompoundCommand, error) {
	wp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.compoundList(token.Do)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Do) {
		return nil, fmt.Errorf("parser: expected 'do'")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.compoundList(token.Done)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Done) {
		return nil, fmt.Errorf("parser: expected 'done'")
	}
	dp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.WhileClause{WhilePos: wp, DonePos: dp, Cond: cond, Body: body}, nil
}

func (p *Parser) untilClause() (ast.CompoundCommand, error) {
	up := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.compoundList(token.Do)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Do) {
		return nil, fmt.Errorf("parser: expected 'do'")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.compoundList(token.Done)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Done) {
		return nil, fmt.Errorf("parser: expected 'done'")
	}
	dp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.UntilClause{UntilPos: up, DonePos: dp, Cond: cond, Body: body}, nil
}

func (p *Parser) wordList(stop func() bool) ([]ast.Word, error) {
	var words []ast.Word
	for p.tk.Kind == token.Word {
		if _, ok := token.LookupReserved(p.tk.Text); ok {
			break
		}
		w, err := p.ParseWord(p.tk.Text, p.tk.Pos)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if stop != nil && stop() {
			break
		}
	}
	return words, nil
}

func (p *Parser) forClause() (ast.CompoundCommand, error) {
	fp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.curOp(token.DLparen) {
		return p.arithForClause(fp)
	}
	if p.tk.Kind != token.Word {
		return nil, fmt.Errorf("parser: expected name after 'for'")
	}
	name := &ast.Lit{ValuePos: p.tk.Pos, Value: p.tk.Text}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	fc := &ast.ForClause{ForPos: fp, Name: name}
	if p.curIsReserved(token.In) {
		fc.HasIn = true
		if err := p.advance(); err != nil {
			return nil, err
		}
		words, err := p.wordList(nil)
		if err != nil {
			return nil, err
		}
		fc.Words = words
		if p.curOp(token.Semicolon) || p.curOp(token.Newline) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	} else if p.curOp(token.Semicolon) {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Do) {
		return nil, fmt.Errorf("parser: expected 'do'")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.compoundList(token.Done)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Done) {
		return nil, fmt.Errorf("parser: expected 'done'")
	}
	fc.DonePos = p.tk.Pos
	fc.Body = body
	if err := p.advance(); err != nil {
		return nil, err
	}
	return fc, nil
}

func (p *Parser) arithForClause(fp token.Pos) (ast.CompoundCommand, error) {
	base := p.tk.Pos + 2
	raw, err := p.lx.ScanUntilDoubleRparen()
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(raw, ";", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	var init, cond, post ast.ArithmExpr
	offset := 0
	if strings.TrimSpace(parts[0]) != "" {
		if init, err = p.ParseArithm(parts[0], base+token.Pos(offset)); err != nil {
			return nil, err
		}
	}
	offset += len(parts[0]) + 1
	if strings.TrimSpace(parts[1]) != "" {
		if cond, err = p.ParseArithm(parts[1], base+token.Pos(offset)); err != nil {
			return nil, err
		}
	}
	offset += len(parts[1]) + 1
	if strings.TrimSpace(parts[2]) != "" {
		if post, err = p.ParseArithm(parts[2], base+token.Pos(offset)); err != nil {
			return nil, err
		}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if p.curOp(token.Semicolon) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	if !p.curIsReserved(token.Do) {
		return nil, fmt.Errorf("parser: expected 'do'")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.compoundList(token.Done)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Done) {
		return nil, fmt.Errorf("parser: expected 'done'")
	}
	dp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.ArithForC{ForPos: fp, DonePos: dp, Init: init, Cond: cond, Post: post, Body: body}, nil
}

func (p *Parser) caseClause() (ast.CompoundCommand, error) {
	cp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tk.Kind != token.Word {
		return nil, fmt.Errorf("parser: expected word after 'case'")
	}
	w, err := p.ParseWord(p.tk.Text, p.tk.Pos)
	if err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.In) {
		return nil, fmt.Errorf("parser: expected 'in'")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	cc := &ast.CaseClause{CasePos: cp, Word: w}
	for !p.curIsReserved(token.Esac) {
		if p.tk.Kind == token.EOF {
			return nil, fmt.Errorf("parser: expected 'esac'")
		}
		item, err := p.caseItem()
		if err != nil {
			return nil, err
		}
		cc.Items = append(cc.Items, item)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	cc.EsacPos = p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	return cc, nil
}

func (p *Parser) caseItem() (*ast.CaseItem, error) {
	if p.curOp(token.Lparen) {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	item := &ast.CaseItem{}
	for {
		if p.tk.Kind != token.Word {
			return nil, fmt.Errorf("parser: expected case pattern")
		}
		w, err := p.ParseWord(p.tk.Text, p.tk.Pos)
		if err != nil {
			return nil, err
		}
		item.Patterns = append(item.Patterns, w)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curOp(token.Pipe) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if !p.curOp(token.Rparen) {
		return nil, fmt.Errorf("parser: expected ')' in case pattern")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	body, err := p.compoundList(token.SemiSemi, token.SemiAnd, token.SemiSemiAnd, token.Esac)
	if err != nil {
		return nil, err
	}
	item.Body = body
	switch {
	case p.curOp(token.SemiSemi):
		item.Term = ast.CaseBreak
		if err := p.advance(); err != nil {
			return nil, err
		}
	case p.curOp(token.SemiAnd):
		item.Term = ast.CaseFallthrough
		if err := p.advance(); err != nil {
			return nil, err
		}
	case p.curOp(token.SemiSemiAnd):
		item.Term = ast.CaseContinueMatch
		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		item.Term = ast.CaseBreak
	}
	return item, nil
}

func (p *Parser) selectClause() (ast.CompoundCommand, error) {
	sp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tk.Kind != token.Word {
		return nil, fmt.Errorf("parser: expected name after 'select'")
	}
	name := &ast.Lit{ValuePos: p.tk.Pos, Value: p.tk.Text}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	sc := &ast.SelectClause{SelectPos: sp, Name: name}
	if p.curIsReserved(token.In) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		words, err := p.wordList(nil)
		if err != nil {
			return nil, err
		}
		sc.Words = words
	}
	if p.curOp(token.Semicolon) || p.curOp(token.Newline) {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Do) {
		return nil, fmt.Errorf("parser: expected 'do'")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.compoundList(token.Done)
	if err != nil {
		return nil, err
	}
	if !p.curIsReserved(token.Done) {
		return nil, fmt.Errorf("parser: expected 'done'")
	}
	sc.DonePos = p.tk.Pos
	sc.Body = body
	if err := p.advance(); err != nil {
		return nil, err
	}
	return sc, nil
}

func isPlainName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameCont(s[i]) {
			return false
		}
	}
	return true
}

// coprocClause parses the bash `coproc [NAME] command` bidirectional-
// pipe background job. NAME is recognized only when a bare identifier
// is immediately followed by `{` or `(`, the two forms that
// unambiguously start a new command — otherwise the identifier is the
// command name itself.
func (p *Parser) coprocClause() (ast.CompoundCommand, error) {
	cp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var name *ast.Lit
	if p.tk.Kind == token.Word && isPlainName(p.tk.Text) {
		if _, reserved := token.LookupReserved(p.tk.Text); !reserved {
			nxt, err := p.peek()
			if err != nil {
				return nil, err
			}
			nxtStartsCompound := (nxt.Kind == token.Operator && nxt.Op == token.Lparen) ||
				(nxt.Kind == token.Word && func() bool {
					op, ok := token.LookupReserved(nxt.Text)
					return ok && op == token.Lbrace
				}())
			if nxtStartsCompound {
				name = &ast.Lit{ValuePos: p.tk.Pos, Value: p.tk.Text}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
	}
	pos := p.tk.Pos
	cmd, err := p.command()
	if err != nil {
		return nil, err
	}
	return &ast.CoprocClause{CoprocPos: cp, Name: name, Body: &ast.Stmt{Cmd: cmd, Position: pos}}, nil
}

func (p *Parser) functionDefKeyword() (ast.Command, error) {
	pos := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tk.Kind != token.Word {
		return nil, fmt.Errorf("parser: expected function name")
	}
	name := p.tk.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.curOp(token.Lparen) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curOp(token.Rparen) {
			return nil, fmt.Errorf("parser: expected ')' after function name")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	return p.functionBody(name, pos, true)
}

func (p *Parser) functionBody(name string, pos token.Pos, bashStyle bool) (ast.Command, error) {
	body, err := p.compoundCommandGeneric()
	if err != nil {
		return nil, err
	}
	redirs, err := p.redirectList()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{
		Position:  pos,
		BashStyle: bashStyle,
		Name:      &ast.Lit{ValuePos: pos, Value: name},
		Body:      &ast.CompoundStmt{Cmd: body, Redirs: redirs},
	}, nil
}

// extendedTest parses a `[[ expr ]]` boolean command. The body is
// re-tokenized independently of the outer operator stream so `<`, `>`,
// `&&`, and `||` are interpreted as test operators rather than
// redirections or control operators.
func (p *Parser) extendedTest() (ast.Command, error) {
	left := p.tk.Pos
	raw, err := p.lx.ScanUntilDoubleRbrack()
	if err != nil {
		return nil, err
	}
	bp, err := newBoolParser(raw, left+2, p)
	if err != nil {
		return nil, err
	}
	x, err := bp.parseOr()
	if err != nil {
		return nil, err
	}
	right := left + token.Pos(len(raw)) + 4
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.ExtendedTest{Left: left, Right: right, X: x}, nil
}

// tryRedirect consumes one redirection clause if the current token is
// a redirection operator, returning ok=false otherwise.
func (p *Parser) tryRedirect() (*ast.Redirect, bool, error) {
	if p.tk.Kind != token.Operator || !p.tk.Op.IsRedirection() {
		return nil, false, nil
	}
	opPos := p.tk.Pos
	text := p.tk.Text
	i := 0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	var fd *ast.Lit
	if i > 0 {
		fd = &ast.Lit{ValuePos: opPos, Value: text[:i]}
	}
	op := p.tk.Op
	if err := p.advance(); err != nil {
		return nil, true, err
	}
	if op == token.DLess || op == token.DLessDash {
		if p.tk.Kind != token.Word {
			return nil, true, fmt.Errorf("parser: expected here-document delimiter")
		}
		delimRaw := p.tk.Text
		delimPos := p.tk.Pos
		expand := !containsQuote(delimRaw)
		delim := stripQuotes(delimRaw)
		if err := p.advance(); err != nil {
			return nil, true, err
		}
		h := &ast.Heredoc{StripTabs: op == token.DLessDash, Expand: expand, BodyPos: delimPos}
		p.pending = append(p.pending, pendingHeredoc{node: h, delim: delim, stripTabs: op == token.DLessDash})
		return &ast.Redirect{
			OpPos: opPos, Fd: fd, Op: op,
			Word: ast.Word{&ast.Lit{ValuePos: delimPos, Value: delimRaw}},
			Hdoc: h,
		}, true, nil
	}
	if p.tk.Kind != token.Word {
		return nil, true, fmt.Errorf("parser: expected redirection target")
	}
	w, err := p.ParseWord(p.tk.Text, p.tk.Pos)
	if err != nil {
		return nil, true, err
	}
	if err := p.advance(); err != nil {
		return nil, true, err
	}
	return &ast.Redirect{OpPos: opPos, Fd: fd, Op: op, Word: w}, true, nil
}

func (p *Parser) redirectList() ([]*ast.Redirect, error) {
	var out []*ast.Redirect
	for {
		r, ok, err := p.tryRedirect()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, r)
	}
}

func containsQuote(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'', '"', '\\':
			return true
		}
	}
	return false
}

func stripQuotes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'', '"':
			continue
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// tryAssignment recognizes a `name=word`, `name+=word`, or
// `name[index]=word` prefix assignment from a word token's raw text.
// The array-literal form `name=(...)` is detected by the caller once it
// sees an empty rest-of-value followed by a `(` operator, since `(` is
// a word-break byte for the tokenizer and never appears inside the Word
// token itself.
func (p *Parser) tryAssignment(text string, pos token.Pos) (*ast.Assignment, bool, error) {
	i := 0
	if i >= len(text) || !isNameStart(text[i]) {
		return nil, false, nil
	}
	for i < len(text) && isNameCont(text[i]) {
		i++
	}
	if i == 0 {
		return nil, false, nil
	}
	name := text[:i]
	var indexSrc string
	hasIndex := false
	if i < len(text) && text[i] == '[' {
		depth := 1
		j := i + 1
		for j < len(text) && depth > 0 {
			switch text[j] {
			case '[':
				depth++
			case ']':
				depth--
			}
			j++
		}
		if depth != 0 {
			return nil, false, nil
		}
		indexSrc = text[i+1 : j-1]
		hasIndex = true
		i = j
	}
	appendOp := false
	switch {
	case i+1 < len(text) && text[i] == '+' && text[i+1] == '=':
		appendOp = true
		i += 2
	case i < len(text) && text[i] == '=':
		i++
	default:
		return nil, false, nil
	}
	rest := text[i:]
	a := &ast.Assignment{Name: &ast.Lit{ValuePos: pos, Value: name}, Append: appendOp}
	if hasIndex {
		idxWord, err := p.ParseWord(indexSrc, pos+token.Pos(len(name)+1))
		if err != nil {
			return nil, true, err
		}
		a.Index = idxWord
	}
	val, err := p.ParseWord(rest, pos+token.Pos(i))
	if err != nil {
		return nil, true, err
	}
	a.Value = val
	return a, true, nil
}

func (p *Parser) arrayLiteral() (*ast.ArrayLiteral, error) {
	lp := p.tk.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	al := &ast.ArrayLiteral{Lparen: lp}
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.curOp(token.Rparen) {
			al.Rparen = p.tk.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			return al, nil
		}
		if p.tk.Kind != token.Word {
			return nil, fmt.Errorf("parser: expected array element or ')'")
		}
		text, pos := p.tk.Text, p.tk.Pos
		if len(text) > 0 && text[0] == '[' {
			if j := indexByte(text, ']'); j > 0 && j+1 < len(text) && text[j+1] == '=' {
				key, err := p.ParseWord(text[1:j], pos+1)
				if err != nil {
					return nil, err
				}
				val, err := p.ParseWord(text[j+2:], pos+token.Pos(j+2))
				if err != nil {
					return nil, err
				}
				al.Elems = append(al.Elems, ast.ArrayElem{Key: key, Value: val})
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
		}
		val, err := p.ParseWord(text, pos)
		if err != nil {
			return nil, err
		}
		al.Elems = append(al.Elems, ast.ArrayElem{Value: val})
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

// simpleOrFunctionCommand parses a SimpleCommand, applying first-word
// alias expansion and recognizing the POSIX `name() compound-body`
// function definition form.
func (p *Parser) simpleOrFunctionCommand() (ast.Command, error) {
	sc := &ast.SimpleCommand{}
	firstWord := true
	p.aliasDepth = 0
	for {
		switch {
		case p.tk.Kind == token.Operator && p.tk.Op.IsRedirection():
			r, _, err := p.tryRedirect()
			if err != nil {
				return nil, err
			}
			sc.Redirs = append(sc.Redirs, r)
		case p.tk.Kind == token.Word:
			text, pos := p.tk.Text, p.tk.Pos
			if sc.Name == nil {
				if a, ok, err := p.tryAssignment(text, pos); err != nil {
					return nil, err
				} else if ok {
					if err := p.advance(); err != nil {
						return nil, err
					}
					if len(a.Value) == 0 && p.curOp(token.Lparen) {
						arr, err := p.arrayLiteral()
						if err != nil {
							return nil, err
						}
						a.Array = arr
					}
					sc.Assigns = append(sc.Assigns, a)
					continue
				}
			}
			if _, ok := token.LookupReserved(text); ok {
				return sc, nil
			}
			if sc.Name == nil {
				if firstWord && p.aliasLookup != nil && p.aliasDepth < maxAliasDepth {
					if exp, ok := p.aliasLookup(text); ok {
						if err := p.expandAlias(exp); err != nil {
							return nil, err
						}
						continue
					}
				}
				w, err := p.ParseWord(text, pos)
				if err != nil {
					return nil, err
				}
				sc.Name = w
				firstWord = false
				if err := p.advance(); err != nil {
					return nil, err
				}
				if p.curOp(token.Lparen) {
					if err := p.advance(); err != nil {
						return nil, err
					}
					if !p.curOp(token.Rparen) {
						return nil, fmt.Errorf("parser: expected ')' in function definition")
					}
					if err := p.advance(); err != nil {
						return nil, err
					}
					if err := p.skipNewlines(); err != nil {
						return nil, err
					}
					return p.functionBody(w.Lit(), pos, false)
				}
				continue
			}
			w, err := p.ParseWord(text, pos)
			if err != nil {
				return nil, err
			}
			sc.Args = append(sc.Args, w)
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return sc, nil
		}
	}
}

// expandAlias splices expansion in front of the tokenizer's remaining
// input and restarts scanning from there, per spec.md §4.1 rule 6.
func (p *Parser) expandAlias(expansion string) error {
	rest := p.lx.Rest()
	combined := make([]byte, 0, len(expansion)+1+len(rest))
	combined = append(combined, expansion...)
	combined = append(combined, ' ')
	combined = append(combined, rest...)
	p.lx = lexer.New(combined, p.opts)
	p.peeked = nil
	p.aliasDepth++
	return p.advance()
}
