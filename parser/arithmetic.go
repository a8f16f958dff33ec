package parser

import (
	"fmt"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/token"
)

// arithScanner is a precedence-climbing recursive-descent parser over
// arithmetic expression text (C2's arithmetic sub-parser, spec.md §4.2).
type arithScanner struct {
	src  string
	pos  int
	base token.Pos
	p    *Parser
}

// ParseArithm parses the text inside a `$((...))`, `(( ))`, or C-style
// `for ((;;))` clause into an ast.ArithmExpr.
func (p *Parser) ParseArithm(src string, base token.Pos) (ast.ArithmExpr, error) {
	as := &arithScanner{src: src, base: base, p: p}
	as.skipSpace()
	if as.pos >= len(as.src) {
		return nil, nil
	}
	x, err := as.comma()
	if err != nil {
		return nil, err
	}
	as.skipSpace()
	if as.pos < len(as.src) {
		return nil, fmt.Errorf("arith: unexpected trailing input %q", as.src[as.pos:])
	}
	return x, nil
}

func (as *arithScanner) bytePos() token.Pos { return as.base + token.Pos(as.pos) }

func (as *arithScanner) byteAt(i int) byte {
	if i < 0 || i >= len(as.src) {
		return 0
	}
	return as.src[i]
}

func (as *arithScanner) skipSpace() {
	for as.pos < len(as.src) {
		switch as.src[as.pos] {
		case ' ', '\t', '\n', '\r':
			as.pos++
		default:
			return
		}
	}
}

func (as *arithScanner) peekOp(texts ...string) (string, bool) {
	as.skipSpace()
	for _, text := range texts {
		n := len(text)
		if as.pos+n <= len(as.src) && as.src[as.pos:as.pos+n] == text {
			// Skip a candidate that is only the start of a longer
			// operator: `&` of `&&`, `<` of `<<`, `+` of `+=`, `<<` of
			// `<<=`.
			next := as.byteAt(as.pos + n)
			if (n == 1 && next == text[0] && next != '!' && next != '~') ||
				(next == '=' && text[n-1] != '=') {
				continue
			}
			return text, true
		}
	}
	return "", false
}

func (as *arithScanner) comma() (ast.ArithmExpr, error) {
	x, err := as.assign()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := as.peekOp(","); !ok {
			return x, nil
		}
		opPos := as.bytePos()
		as.pos++
		y, err := as.assign()
		if err != nil {
			return nil, err
		}
		x = &ast.ArithBinary{OpPos: opPos, Op: ast.ArithComma, X: x, Y: y}
	}
}

var assignOps = []struct {
	text string
	op   ast.ArithOp
}{
	{"<<=", ast.ArithShlAssign}, {">>=", ast.ArithShrAssign},
	{"+=", ast.ArithAddAssign}, {"-=", ast.ArithSubAssign},
	{"*=", ast.ArithMulAssign}, {"/=", ast.ArithDivAssign},
	{"%=", ast.ArithRemAssign}, {"&=", ast.ArithAndAssign},
	{"|=", ast.ArithOrAssign}, {"^=", ast.ArithXorAssign},
	{"=", ast.ArithAssign},
}

func (as *arithScanner) assign() (ast.ArithmExpr, error) {
	x, err := as.ternary()
	if err != nil {
		return nil, err
	}
	as.skipSpace()
	for _, cand := range assignOps {
		n := len(cand.text)
		if as.pos+n > len(as.src) || as.src[as.pos:as.pos+n] != cand.text {
			continue
		}
		// avoid matching `==`, `<=`, `>=`, `!=` as `=`
		if cand.text == "=" && (as.byteAt(as.pos+1) == '=' ||
			(as.pos > 0 && (as.src[as.pos-1] == '!' || as.src[as.pos-1] == '<' || as.src[as.pos-1] == '>'))) {
			continue
		}
		opPos := as.bytePos()
		as.pos += n
		y, err := as.assign()
		if err != nil {
			return nil, err
		}
		return &ast.ArithBinary{OpPos: opPos, Op: cand.op, X: x, Y: y}, nil
	}
	return x, nil
}

func (as *arithScanner) ternary() (ast.ArithmExpr, error) {
	cond, err := as.logOr()
	if err != nil {
		return nil, err
	}
	as.skipSpace()
	if as.byteAt(as.pos) != '?' {
		return cond, nil
	}
	as.pos++
	x, err := as.assign()
	if err != nil {
		return nil, err
	}
	as.skipSpace()
	if as.byteAt(as.pos) != ':' {
		return nil, fmt.Errorf("arith: expected ':' in ternary expression")
	}
	as.pos++
	y, err := as.assign()
	if err != nil {
		return nil, err
	}
	return &ast.ArithTernary{Cond: cond, X: x, Y: y}, nil
}

// binLevel is one precedence level of left-associative binary operators.
type binLevel struct {
	ops  []string
	arit map[string]ast.ArithOp
	next func(*arithScanner) (ast.ArithmExpr, error)
}

func (as *arithScanner) leftAssoc(lvl binLevel) (ast.ArithmExpr, error) {
	x, err := lvl.next(as)
	if err != nil {
		return nil, err
	}
	for {
		text, ok := as.peekOp(lvl.ops...)
		if !ok {
			return x, nil
		}
		opPos := as.bytePos()
		as.pos += len(text)
		y, err := lvl.next(as)
		if err != nil {
			return nil, err
		}
		x = &ast.ArithBinary{OpPos: opPos, Op: lvl.arit[text], X: x, Y: y}
	}
}

func (as *arithScanner) logOr() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"||"}, map[string]ast.ArithOp{"||": ast.ArithLOr}, (*arithScanner).logAnd})
}
func (as *arithScanner) logAnd() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"&&"}, map[string]ast.ArithOp{"&&": ast.ArithLAnd}, (*arithScanner).bitOr})
}
func (as *arithScanner) bitOr() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"|"}, map[string]ast.ArithOp{"|": ast.ArithOr}, (*arithScanner).bitXor})
}
func (as *arithScanner) bitXor() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"^"}, map[string]ast.ArithOp{"^": ast.ArithXor}, (*arithScanner).bitAnd})
}
func (as *arithScanner) bitAnd() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"&"}, map[string]ast.ArithOp{"&": ast.ArithAnd}, (*arithScanner).equality})
}
func (as *arithScanner) equality() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"==", "!="}, map[string]ast.ArithOp{"==": ast.ArithEq, "!=": ast.ArithNe}, (*arithScanner).relational})
}
func (as *arithScanner) relational() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"<=", ">=", "<", ">"}, map[string]ast.ArithOp{"<=": ast.ArithLe, ">=": ast.ArithGe, "<": ast.ArithLt, ">": ast.ArithGt}, (*arithScanner).shift})
}
func (as *arithScanner) shift() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"<<", ">>"}, map[string]ast.ArithOp{"<<": ast.ArithShl, ">>": ast.ArithShr}, (*arithScanner).additive})
}
func (as *arithScanner) additive() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"+", "-"}, map[string]ast.ArithOp{"+": ast.ArithAdd, "-": ast.ArithSub}, (*arithScanner).multiplicative})
}
func (as *arithScanner) multiplicative() (ast.ArithmExpr, error) {
	return as.leftAssoc(binLevel{[]string{"*", "/", "%"}, map[string]ast.ArithOp{"*": ast.ArithMul, "/": ast.ArithDiv, "%": ast.ArithRem}, (*arithScanner).power})
}

// power is right-associative.
func (as *arithScanner) power() (ast.ArithmExpr, error) {
	x, err := as.unary()
	if err != nil {
		return nil, err
	}
	if _, ok := as.peekOp("**"); !ok {
		return x, nil
	}
	opPos := as.bytePos()
	as.pos += 2
	y, err := as.power()
	if err != nil {
		return nil, err
	}
	return &ast.ArithBinary{OpPos: opPos, Op: ast.ArithPow, X: x, Y: y}, nil
}

func (as *arithScanner) unary() (ast.ArithmExpr, error) {
	as.skipSpace()
	opPos := as.bytePos()
	switch as.byteAt(as.pos) {
	case '+':
		if as.byteAt(as.pos+1) == '+' {
			as.pos += 2
			x, err := as.unary()
			if err != nil {
				return nil, err
			}
			return &ast.ArithUnary{OpPos: opPos, Op: "++", X: x}, nil
		}
		as.pos++
		x, err := as.unary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: opPos, Op: ast.ArithAdd, X: x}, nil
	case '-':
		if as.byteAt(as.pos+1) == '-' {
			as.pos += 2
			x, err := as.unary()
			if err != nil {
				return nil, err
			}
			return &ast.ArithUnary{OpPos: opPos, Op: "--", X: x}, nil
		}
		as.pos++
		x, err := as.unary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: opPos, Op: ast.ArithSub, X: x}, nil
	case '!':
		as.pos++
		x, err := as.unary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: opPos, Op: "!", X: x}, nil
	case '~':
		as.pos++
		x, err := as.unary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: opPos, Op: "~", X: x}, nil
	}
	return as.postfix()
}

func (as *arithScanner) postfix() (ast.ArithmExpr, error) {
	x, err := as.primary()
	if err != nil {
		return nil, err
	}
	as.skipSpace()
	if as.byteAt(as.pos) == '+' && as.byteAt(as.pos+1) == '+' {
		opPos := as.bytePos()
		as.pos += 2
		return &ast.ArithUnary{OpPos: opPos, Op: "++", Post: true, X: x}, nil
	}
	if as.byteAt(as.pos) == '-' && as.byteAt(as.pos+1) == '-' {
		opPos := as.bytePos()
		as.pos += 2
		return &ast.ArithUnary{OpPos: opPos, Op: "--", Post: true, X: x}, nil
	}
	return x, nil
}

func (as *arithScanner) primary() (ast.ArithmExpr, error) {
	as.skipSpace()
	if as.byteAt(as.pos) == '(' {
		lp := as.bytePos()
		as.pos++
		x, err := as.comma()
		if err != nil {
			return nil, err
		}
		as.skipSpace()
		if as.byteAt(as.pos) != ')' {
			return nil, fmt.Errorf("arith: expected ')'")
		}
		rp := as.bytePos()
		as.pos++
		return &ast.ArithParen{Lparen: lp, Rparen: rp, X: x}, nil
	}
	start := as.pos
	depth := 0
	for as.pos < len(as.src) {
		b := as.src[as.pos]
		if b == '[' {
			depth++
			as.pos++
			continue
		}
		if b == ']' {
			if depth == 0 {
				break
			}
			depth--
			as.pos++
			continue
		}
		if depth == 0 && isArithWordBreak(b) {
			break
		}
		as.pos++
	}
	if start == as.pos {
		return nil, fmt.Errorf("arith: unexpected character %q", string(as.byteAt(as.pos)))
	}
	lit := as.src[start:as.pos]
	base := as.base + token.Pos(start)
	var idx ast.ArithmExpr
	name := lit
	if i := indexByte(lit, '['); i >= 0 && lit[len(lit)-1] == ']' {
		name = lit[:i]
		idxSrc := lit[i+1 : len(lit)-1]
		var err error
		idx, err = as.p.ParseArithm(idxSrc, base+token.Pos(i+1))
		if err != nil {
			return nil, err
		}
	}
	w, err := as.p.ParseWord(name, base)
	if err != nil {
		return nil, err
	}
	return &ast.ArithWord{W: w, Index: idx}, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func isArithWordBreak(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '+', '-', '*', '/', '%', '(', ')', '<', '>',
		'=', '!', '&', '|', '^', '~', '?', ':', ',':
		return true
	}
	return false
}
