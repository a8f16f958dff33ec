// Package parser implements the sub-parsers (C2) and the grammar
// parser (C3): tokens from the lexer become an ast.Program.
package parser

import (
	"fmt"
	"strings"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/token"
)

// wordScanner re-parses a single Word token's raw text into its piece
// list (C2's word-internal sub-parser), recursively invoking the
// tokenizer+grammar parser for nested command substitutions.
type wordScanner struct {
	src  string
	pos  int
	base token.Pos // source position of src[0]
	p    *Parser   // for recursing into command/process substitutions
}

// ParseWord is the C2 word-internal sub-parser's entry point: given a
// Word token's raw text and its source position, it returns the piece
// list satisfying the word contract (joining pieces reproduces src).
func (p *Parser) ParseWord(src string, base token.Pos) (ast.Word, error) {
	ws := &wordScanner{src: src, base: base, p: p}
	return ws.parts(false)
}

func (ws *wordScanner) bytePos() token.Pos { return ws.base + token.Pos(ws.pos) }

func (ws *wordScanner) byteAt(i int) byte {
	if i < 0 || i >= len(ws.src) {
		return 0
	}
	return ws.src[i]
}

// parts scans word parts until end of input or, when inDouble, an
// unescaped closing quote.
func (ws *wordScanner) parts(inDouble bool) (ast.Word, error) {
	var out ast.Word
	var lit strings.Builder
	litStart := ws.bytePos()
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, &ast.Lit{ValuePos: litStart, Value: lit.String()})
			lit.Reset()
		}
	}
	for ws.pos < len(ws.src) {
		b := ws.src[ws.pos]
		if inDouble && b == '"' {
			break
		}
		switch {
		case b == '\\':
			flush()
			// Outside single quotes, backslash escapes the next byte;
			// inside double quotes only a restricted set is special,
			// but we keep the escape uniformly and let the expander's
			// quote-removal phase decide what survives.
			nxt := ws.byteAt(ws.pos + 1)
			if nxt == 0 {
				lit.WriteByte('\\')
				ws.pos++
				litStart = ws.bytePos()
				continue
			}
			litStart = ws.bytePos()
			lit.WriteByte('\\')
			lit.WriteByte(nxt)
			ws.pos += 2
			out = append(out, &ast.Lit{ValuePos: litStart, Value: string([]byte{'\\', nxt})})
			lit.Reset()
			litStart = ws.bytePos()
			continue
		case b == '\'' && !inDouble:
			flush()
			part, err := ws.singleQuoted()
			if err != nil {
				return nil, err
			}
			out = append(out, part)
			litStart = ws.bytePos()
		case b == '"' && !inDouble:
			flush()
			part, err := ws.doubleQuoted()
			if err != nil {
				return nil, err
			}
			out = append(out, part)
			litStart = ws.bytePos()
		case b == '`':
			flush()
			part, err := ws.backtick()
			if err != nil {
				return nil, err
			}
			out = append(out, part)
			litStart = ws.bytePos()
		case b == '~' && ws.pos == 0 && !inDouble:
			flush()
			out = append(out, ws.tilde())
			litStart = ws.bytePos()
		case b == '$':
			part, consumed, err := ws.dollar(inDouble)
			if err != nil {
				return nil, err
			}
			if !consumed {
				lit.WriteByte(b)
				ws.pos++
				continue
			}
			flush()
			if part != nil {
				out = append(out, part)
			}
			litStart = ws.bytePos()
		default:
			lit.WriteByte(b)
			ws.pos++
		}
	}
	flush()
	return out, nil
}

func (ws *wordScanner) singleQuoted() (ast.WordPart, error) {
	pos := ws.bytePos()
	ws.pos++ // opening '
	start := ws.pos
	for ws.pos < len(ws.src) && ws.src[ws.pos] != '\'' {
		ws.pos++
	}
	if ws.pos >= len(ws.src) {
		return nil, fmt.Errorf("word: unterminated single-quoted string")
	}
	val := ws.src[start:ws.pos]
	ws.pos++ // closing '
	return &ast.SglQuoted{Position: pos, Value: val}, nil
}

func (ws *wordScanner) doubleQuoted() (ast.WordPart, error) {
	pos := ws.bytePos()
	ws.pos++ // opening "
	parts, err := ws.parts(true)
	if err != nil {
		return nil, err
	}
	if ws.pos >= len(ws.src) || ws.src[ws.pos] != '"' {
		return nil, fmt.Errorf("word: unterminated double-quoted string")
	}
	ws.pos++ // closing "
	return &ast.DblQuoted{Position: pos, Parts: []ast.WordPart(parts)}, nil
}

func (ws *wordScanner) backtick() (ast.WordPart, error) {
	pos := ws.bytePos()
	ws.pos++
	start := ws.pos
	for ws.pos < len(ws.src) {
		if ws.src[ws.pos] == '\\' && ws.pos+1 < len(ws.src) {
			ws.pos += 2
			continue
		}
		if ws.src[ws.pos] == '`' {
			break
		}
		ws.pos++
	}
	if ws.pos >= len(ws.src) {
		return nil, fmt.Errorf("word: unterminated command substitution")
	}
	body := ws.src[start:ws.pos]
	ws.pos++
	prog, err := ws.p.parseSub(body, ws.base+token.Pos(start))
	if err != nil {
		return nil, err
	}
	return &ast.CmdSubst{Left: pos, Right: ws.bytePos() - 1, Backtick: true, Prog: prog}, nil
}

func (ws *wordScanner) tilde() ast.WordPart {
	pos := ws.bytePos()
	ws.pos++ // ~
	start := ws.pos
	for ws.pos < len(ws.src) {
		b := ws.src[ws.pos]
		if b == '/' || b == ':' || isWordMetaForTilde(b) {
			break
		}
		ws.pos++
	}
	return &ast.Tilde{Position: pos, User: ws.src[start:ws.pos]}
}

func isWordMetaForTilde(b byte) bool {
	switch b {
	case '$', '`', '"', '\'', '\\':
		return true
	}
	return false
}

// dollar scans a `$`-led construct. If the following byte does not
// start a recognized form, consumed is false and the caller treats `$`
// as a literal byte.
func (ws *wordScanner) dollar(inDouble bool) (ast.WordPart, bool, error) {
	pos := ws.bytePos()
	nxt := ws.byteAt(ws.pos + 1)
	switch {
	case nxt == '\'' && !inDouble:
		return ws.ansiCQuoted(pos)
	case nxt == '"' && !inDouble:
		return ws.localeQuoted(pos)
	case nxt == '(' && ws.byteAt(ws.pos+2) == '(':
		return ws.arithmExp(pos)
	case nxt == '(':
		return ws.cmdSubstDollar(pos)
	case nxt == '{':
		return ws.paramExpBraced(pos)
	case isNameStart(nxt) || isSpecialParam(nxt):
		return ws.paramExpShort(pos)
	}
	return nil, false, nil
}

func (ws *wordScanner) ansiCQuoted(pos token.Pos) (ast.WordPart, bool, error) {
	ws.pos += 2 // $'
	start := ws.pos
	for ws.pos < len(ws.src) {
		if ws.src[ws.pos] == '\\' && ws.pos+1 < len(ws.src) {
			ws.pos += 2
			continue
		}
		if ws.src[ws.pos] == '\'' {
			break
		}
		ws.pos++
	}
	if ws.pos >= len(ws.src) {
		return nil, true, fmt.Errorf("word: unterminated $'...'")
	}
	raw := ws.src[start:ws.pos]
	ws.pos++
	return &ast.AnsiCQuoted{Position: pos, Raw: raw, Value: unescapeAnsiC(raw)}, true, nil
}

func (ws *wordScanner) localeQuoted(pos token.Pos) (ast.WordPart, bool, error) {
	ws.pos += 2 // $"
	inner, err := ws.parts(true)
	if err != nil {
		return nil, true, err
	}
	if ws.pos >= len(ws.src) || ws.src[ws.pos] != '"' {
		return nil, true, fmt.Errorf("word: unterminated $\"...\"")
	}
	ws.pos++
	return &ast.LocaleQuoted{Position: pos, Parts: []ast.WordPart(inner)}, true, nil
}

func (ws *wordScanner) cmdSubstDollar(pos token.Pos) (ast.WordPart, bool, error) {
	ws.pos += 2 // $(
	start := ws.pos
	depth := 1
	for ws.pos < len(ws.src) && depth > 0 {
		switch ws.src[ws.pos] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				break
			}
		case '\\':
			if ws.pos+1 < len(ws.src) {
				ws.pos++
			}
		}
		ws.pos++
	}
	if depth != 0 {
		return nil, true, fmt.Errorf("word: unterminated $(...)")
	}
	body := ws.src[start : ws.pos-1]
	prog, err := ws.p.parseSub(body, ws.base+token.Pos(start))
	if err != nil {
		return nil, true, err
	}
	return &ast.CmdSubst{Left: pos, Right: ws.bytePos() - 1, Prog: prog}, true, nil
}

func (ws *wordScanner) arithmExp(pos token.Pos) (ast.WordPart, bool, error) {
	ws.pos += 3 // $((
	start := ws.pos
	depth := 1
	for ws.pos < len(ws.src) && depth > 0 {
		if ws.src[ws.pos] == '(' {
			depth++
		} else if ws.src[ws.pos] == ')' {
			depth--
			if depth == 0 {
				break
			}
		}
		ws.pos++
	}
	body := ws.src[start:ws.pos]
	if ws.pos+1 >= len(ws.src) || ws.src[ws.pos] != ')' || ws.src[ws.pos+1] != ')' {
		return nil, true, fmt.Errorf("word: unterminated $((...))")
	}
	x, err := ws.p.ParseArithm(body, ws.base+token.Pos(start))
	if err != nil {
		return nil, true, err
	}
	ws.pos += 2
	return &ast.ArithmExp{Left: pos, Right: ws.bytePos() - 1, X: x}, true, nil
}

func (ws *wordScanner) paramExpShort(pos token.Pos) (ast.WordPart, bool, error) {
	ws.pos++ // $
	start := ws.pos
	if isSpecialParam(ws.byteAt(ws.pos)) {
		ws.pos++
	} else {
		for ws.pos < len(ws.src) && isNameCont(ws.src[ws.pos]) {
			ws.pos++
		}
	}
	name := ws.src[start:ws.pos]
	return &ast.ParamExp{Dollar: pos, Short: true, Param: &ast.Lit{ValuePos: ws.base + token.Pos(start), Value: name}}, true, nil
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isNameCont(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}
func isSpecialParam(b byte) bool {
	switch b {
	case '@', '*', '#', '?', '-', '$', '!', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	return false
}

func unescapeAnsiC(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'e', 'E':
			b.WriteByte(0x1b)
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
