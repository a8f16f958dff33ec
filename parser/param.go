package parser

import (
	"fmt"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/token"
)

// paramExpBraced parses one `${...}` form, covering every variant
// listed in spec.md §4.5 phase 2.
func (ws *wordScanner) paramExpBraced(pos token.Pos) (ast.WordPart, bool, error) {
	ws.pos += 2 // ${
	pe := &ast.ParamExp{Dollar: pos}

	if ws.byteAt(ws.pos) == '#' && ws.byteAt(ws.pos+1) != '}' && !isLengthAmbiguous(ws) {
		pe.Length = true
		ws.pos++
	}
	if ws.byteAt(ws.pos) == '!' {
		// Could be indirection (${!name}) or a `${!prefix*}`/`${!prefix@}`
		// name-matching expansion; disambiguate once the name is read.
		ws.pos++
		pe.Indirect = true
	}

	start := ws.pos
	for ws.pos < len(ws.src) && isNameCont(ws.src[ws.pos]) {
		ws.pos++
	}
	if ws.pos == start && isSpecialParam(ws.byteAt(ws.pos)) {
		ws.pos++
	}
	name := ws.src[start:ws.pos]
	pe.Param = &ast.Lit{ValuePos: ws.base + token.Pos(start), Value: name}

	if pe.Indirect && (ws.byteAt(ws.pos) == '*' || ws.byteAt(ws.pos) == '@') && ws.byteAt(ws.pos+1) == '}' {
		pe.AtOp = ws.src[ws.pos]
		ws.pos += 2
		pe.Rbrace = ws.bytePos() - 1
		return pe, true, nil
	}

	// `${array[expr]}` or `${!array[@]}` / `${!array[*]}`
	if ws.byteAt(ws.pos) == '[' {
		ws.pos++
		idxStart := ws.pos
		depth := 1
		for ws.pos < len(ws.src) && depth > 0 {
			switch ws.src[ws.pos] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					continue
				}
			}
			ws.pos++
		}
		idxSrc := ws.src[idxStart:ws.pos]
		ws.pos++ // ]
		idx, err := ws.p.ParseWord(idxSrc, ws.base+token.Pos(idxStart))
		if err != nil {
			return nil, true, err
		}
		pe.Index = idx
	}

	if ws.byteAt(ws.pos) == '}' {
		ws.pos++
		pe.Rbrace = ws.bytePos() - 1
		return pe, true, nil
	}

	b := ws.byteAt(ws.pos)
	switch {
	case b == ':':
		ws.pos++
		if err := ws.parseColonOp(pe); err != nil {
			return nil, true, err
		}
	case b == '-' || b == '+' || b == '=' || b == '?':
		op := modFromByte(b, false)
		ws.pos++
		word, err := ws.scanUntilRbrace()
		if err != nil {
			return nil, true, err
		}
		pe.Modifier = &ast.Modifier{Op: op, UnsetOnly: true, Word: word}
	case b == '#' || b == '%':
		double := ws.byteAt(ws.pos+1) == b
		op := ast.ModRemSmallestPrefix
		if b == '%' {
			op = ast.ModRemSmallestSuffix
		}
		if double {
			if b == '#' {
				op = ast.ModRemLargestPrefix
			} else {
				op = ast.ModRemLargestSuffix
			}
			ws.pos += 2
		} else {
			ws.pos++
		}
		word, err := ws.scanUntilRbrace()
		if err != nil {
			return nil, true, err
		}
		pe.Modifier = &ast.Modifier{Op: op, Word: word}
	case b == '/':
		ws.pos++
		rep, err := ws.parseReplace()
		if err != nil {
			return nil, true, err
		}
		pe.Replace = rep
	case b == '@':
		ws.pos++
		opChar := ws.byteAt(ws.pos)
		ws.pos++
		pe.Modifier = &ast.Modifier{Op: ast.ModCaseAt, AtOpChar: opChar}
	default:
		return nil, true, fmt.Errorf("word: unsupported ${%s%c...} form", name, b)
	}

	if ws.byteAt(ws.pos) != '}' {
		return nil, true, fmt.Errorf("word: unterminated ${...}")
	}
	ws.pos++
	pe.Rbrace = ws.bytePos() - 1
	return pe, true, nil
}

// isLengthAmbiguous disambiguates `${#}` (length of $0? no — it's the
// positional parameter count) from `${#name}`. Called only when the
// byte after `#` is not `}`, so no ambiguity remains in practice; kept
// as a hook for the `${#-}`/`${#*}` edge cases.
func isLengthAmbiguous(ws *wordScanner) bool { return false }

func modFromByte(b byte, colon bool) ast.ModOp {
	switch b {
	case '-':
		return ast.ModUseDefault
	case '=':
		return ast.ModAssignDefault
	case '?':
		return ast.ModError
	default: // '+'
		return ast.ModUseAlt
	}
}

// parseColonOp handles the `:`-prefixed family: `:-`, `:=`, `:?`, `:+`,
// and the slice form `:offset[:length]`.
func (ws *wordScanner) parseColonOp(pe *ast.ParamExp) error {
	b := ws.byteAt(ws.pos)
	switch b {
	case '-', '=', '?', '+':
		op := modFromByte(b, true)
		ws.pos++
		word, err := ws.scanUntilRbrace()
		if err != nil {
			return err
		}
		pe.Modifier = &ast.Modifier{Op: op, UnsetOnly: false, Word: word}
		return nil
	default:
		offStart := ws.pos
		depth := 0
		for ws.pos < len(ws.src) {
			switch ws.src[ws.pos] {
			case '}':
				if depth == 0 {
					goto doneOffset
				}
			case '[':
				depth++
			case ']':
				depth--
			case ':':
				if depth == 0 {
					goto doneOffset
				}
			}
			ws.pos++
		}
	doneOffset:
		offSrc := ws.src[offStart:ws.pos]
		off, err := ws.p.ParseWord(offSrc, ws.base+token.Pos(offStart))
		if err != nil {
			return err
		}
		sl := &ast.Slice{Offset: off}
		if ws.byteAt(ws.pos) == ':' {
			ws.pos++
			lenWord, err := ws.scanUntilRbrace()
			if err != nil {
				return err
			}
			sl.Length = lenWord
		}
		pe.Slice = sl
		return nil
	}
}

// parseReplace handles `/pat/rep`, `//pat/rep`, `/#pat/rep`, `/%pat/rep`.
func (ws *wordScanner) parseReplace() (*ast.Replace, error) {
	rep := &ast.Replace{}
	if ws.byteAt(ws.pos) == '/' {
		rep.All = true
		ws.pos++
	} else if ws.byteAt(ws.pos) == '#' {
		rep.AnchorBeg = true
		ws.pos++
	} else if ws.byteAt(ws.pos) == '%' {
		rep.AnchorEnd = true
		ws.pos++
	}
	patStart := ws.pos
	for ws.pos < len(ws.src) && ws.src[ws.pos] != '/' && ws.src[ws.pos] != '}' {
		if ws.src[ws.pos] == '\\' && ws.pos+1 < len(ws.src) {
			ws.pos++
		}
		ws.pos++
	}
	pat, err := ws.p.ParseWord(ws.src[patStart:ws.pos], ws.base+token.Pos(patStart))
	if err != nil {
		return nil, err
	}
	rep.Pattern = pat
	if ws.byteAt(ws.pos) == '/' {
		ws.pos++
		with, err := ws.scanUntilRbrace()
		if err != nil {
			return nil, err
		}
		rep.With = with
	}
	return rep, nil
}

// scanUntilRbrace parses a word up to (but not including) the closing
// `}` of the enclosing ${...}, honoring nested braces/brackets.
func (ws *wordScanner) scanUntilRbrace() (ast.Word, error) {
	start := ws.pos
	depth := 0
	for ws.pos < len(ws.src) {
		switch ws.src[ws.pos] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				goto done
			}
			depth--
		case '\\':
			if ws.pos+1 < len(ws.src) {
				ws.pos++
			}
		}
		ws.pos++
	}
done:
	return ws.p.ParseWord(ws.src[start:ws.pos], ws.base+token.Pos(start))
}
