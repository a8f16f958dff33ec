package parser

import (
	"fmt"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/token"
)

// boolParser parses a `[[ expr ]]` test body's extracted raw text into
// an ast.BoolExpr tree. It reuses a fresh lexer.Tokenizer over that raw
// text: the tokenizer already classifies `&&`, `||`, `(`, `)` as
// Operator tokens and everything else — including `!`, `==`, `!=`,
// `=~`, unary test flags like `-f`, and `-eq`-class binary operators —
// as plain Word tokens, which is exactly the split a test-expression
// grammar needs. This avoids writing a third dedicated tokenizer.
type boolParser struct {
	lx   *lexer.Tokenizer
	tk   token.Token
	base token.Pos
	p    *Parser
}

func newBoolParser(raw string, base token.Pos, p *Parser) (*boolParser, error) {
	bp := &boolParser{lx: lexer.New([]byte(raw), p.opts), base: base, p: p}
	if err := bp.advance(); err != nil {
		return nil, err
	}
	return bp, nil
}

func (bp *boolParser) advance() error {
	tk, err := bp.lx.Next()
	if err != nil {
		return err
	}
	// Positions from this inner tokenizer are relative to the extracted
	// raw body; rebase them onto the outer source for diagnostics.
	tk.Pos = bp.base + tk.Pos - 1
	bp.tk = tk
	return nil
}

func (bp *boolParser) curIsWord(lit string) bool {
	return bp.tk.Kind == token.Word && bp.tk.Text == lit
}

// parseOr handles the lowest-precedence `||`, per bash's `[[ ]]` test
// grammar (logically left-associative, short-circuiting at eval time).
func (bp *boolParser) parseOr() (ast.BoolExpr, error) {
	x, err := bp.parseAnd()
	if err != nil {
		return nil, err
	}
	for bp.tk.Kind == token.Operator && bp.tk.Op == token.OrOr {
		opPos := bp.tk.Pos
		if err := bp.advance(); err != nil {
			return nil, err
		}
		y, err := bp.parseAnd()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryTest{OpPos: opPos, Op: "||", X: x, Y: y}
	}
	return x, nil
}

func (bp *boolParser) parseAnd() (ast.BoolExpr, error) {
	x, err := bp.parseNot()
	if err != nil {
		return nil, err
	}
	for bp.tk.Kind == token.Operator && bp.tk.Op == token.AndAnd {
		opPos := bp.tk.Pos
		if err := bp.advance(); err != nil {
			return nil, err
		}
		y, err := bp.parseNot()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryTest{OpPos: opPos, Op: "&&", X: x, Y: y}
	}
	return x, nil
}

func (bp *boolParser) parseNot() (ast.BoolExpr, error) {
	if bp.curIsWord("!") {
		pos := bp.tk.Pos
		if err := bp.advance(); err != nil {
			return nil, err
		}
		x, err := bp.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryTest{OpPos: pos, Op: "!", X: x}, nil
	}
	return bp.parsePrimary()
}

var unaryTestOps = map[string]bool{
	"-a": true, "-b": true, "-c": true, "-d": true, "-e": true, "-f": true,
	"-g": true, "-h": true, "-k": true, "-p": true, "-r": true, "-s": true,
	"-t": true, "-u": true, "-w": true, "-x": true, "-G": true, "-L": true,
	"-N": true, "-O": true, "-S": true, "-n": true, "-z": true, "-o": true,
	"-v": true, "-R": true,
}

var binaryTestOps = map[string]bool{
	"==": true, "=": true, "!=": true, "=~": true, "<": true, ">": true,
	"-eq": true, "-ne": true, "-lt": true, "-le": true, "-gt": true, "-ge": true,
	"-nt": true, "-ot": true, "-ef": true,
}

// parsePrimary handles `( expr )`, a leading unary test flag, or falls
// through to a bare word which may turn out to be the left operand of
// a binary test once the next token is seen.
func (bp *boolParser) parsePrimary() (ast.BoolExpr, error) {
	if bp.tk.Kind == token.Operator && bp.tk.Op == token.Lparen {
		lp := bp.tk.Pos
		if err := bp.advance(); err != nil {
			return nil, err
		}
		x, err := bp.parseOr()
		if err != nil {
			return nil, err
		}
		if !(bp.tk.Kind == token.Operator && bp.tk.Op == token.Rparen) {
			return nil, fmt.Errorf("parser: expected ')' in [[ ]] expression")
		}
		rp := bp.tk.Pos
		if err := bp.advance(); err != nil {
			return nil, err
		}
		return &ast.ParenTest{Lparen: lp, Rparen: rp, X: x}, nil
	}
	if bp.tk.Kind == token.Word && unaryTestOps[bp.tk.Text] {
		op := bp.tk.Text
		pos := bp.tk.Pos
		if err := bp.advance(); err != nil {
			return nil, err
		}
		operand, err := bp.word()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryTest{OpPos: pos, Op: op, X: &ast.WordTest{W: operand}}, nil
	}
	left, err := bp.word()
	if err != nil {
		return nil, err
	}
	if bp.tk.Kind == token.Word && binaryTestOps[bp.tk.Text] {
		op := bp.tk.Text
		pos := bp.tk.Pos
		if err := bp.advance(); err != nil {
			return nil, err
		}
		right, err := bp.word()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryTest{OpPos: pos, Op: op, X: &ast.WordTest{W: left}, Y: &ast.WordTest{W: right}}, nil
	}
	return &ast.WordTest{W: left}, nil
}

func (bp *boolParser) word() (ast.Word, error) {
	if bp.tk.Kind != token.Word {
		return nil, fmt.Errorf("parser: expected word in [[ ]] expression, got %v", bp.tk.Kind)
	}
	w, err := bp.p.ParseWord(bp.tk.Text, bp.tk.Pos)
	if err != nil {
		return nil, err
	}
	if err := bp.advance(); err != nil {
		return nil, err
	}
	return w, nil
}
