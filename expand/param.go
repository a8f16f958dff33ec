package expand

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/brushsh/brush/arith"
	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/parser"
)

// arithParser is shared across every subscript/arithmetic-expansion
// parse this Config performs; ParseArithm is stateless per call aside
// from the *parser.Parser it's handed, so one instance is safe to
// reuse (grounded on parser/arithmetic.go's own doc comment).
var arithParser = parser.NewParser(lexer.Options{})

// expandParamExp expands every `$name`/`${...}` form spec.md §4.5
// phase 2 names. Grounded on the teacher's (now-removed) expand/param.go,
// which walked its own syntax.ParamExp against expand.Environ; the
// modifier/slice/replace/case-introspection switch below follows the
// same structure but is rewritten against ast.ParamExp/env.Env, and
// only implements the operator set parser/param.go actually produces
// (notably: no `^`/`^^`/`,`/`,,` case-toggle operators, since the
// parser doesn't parse them — only `${param@opchar}` introspection).
func (c *Config) expandParamExp(pe *ast.ParamExp, quotedCtx bool) (field, []field, error) {
	name := pe.Param.Value

	if pe.Indirect && pe.AtOp != 0 {
		names := c.namesWithPrefix(name)
		return c.arrayLikeResult(names, pe.AtOp, quotedCtx), nil, nil
	}

	if pe.Indirect && pe.Index != nil {
		if atop := indexAtOp(pe.Index); atop != 0 {
			keys := c.arrayKeys(name)
			return c.arrayLikeResult(keys, atop, quotedCtx), nil, nil
		}
	}

	if pe.Indirect && pe.Index == nil {
		target, ok := c.Shell.Env.GetStr(name)
		if !ok {
			return c.applyModifiers("", false, pe, quotedCtx)
		}
		name = target
	}

	if pe.Length {
		n := c.paramLength(name, pe)
		return field{{s: strconv.Itoa(n), quoted: quotedCtx}}, nil, nil
	}

	if atop := c.wholeArrayOp(name, pe); atop != 0 {
		vals := c.arrayOrPositionalValues(name, pe)
		f := c.arrayLikeResult(vals, atop, quotedCtx)
		if len(f) == 1 {
			return f[0], nil, nil
		}
		return nil, f, nil
	}

	val, set := c.lookupScalar(name, pe)
	return c.applyModifiers(val, set, pe, quotedCtx)
}

// wholeArrayOp reports '@'/'*' when pe refers to an entire array or
// the positional-parameter list (`$@`, `$*`, `${arr[@]}`, `${arr[*]}`).
func (c *Config) wholeArrayOp(name string, pe *ast.ParamExp) byte {
	if name == "@" || name == "*" {
		return name[0]
	}
	if pe.Index != nil {
		return indexAtOp(pe.Index)
	}
	return 0
}

func indexAtOp(idx ast.Word) byte {
	switch idx.Lit() {
	case "@":
		return '@'
	case "*":
		return '*'
	}
	return 0
}

func (c *Config) arrayOrPositionalValues(name string, pe *ast.ParamExp) []string {
	if name == "@" || name == "*" {
		return c.Shell.Calls.Positional()
	}
	v, ok := c.Shell.Env.Get(name, env.AnyScope)
	if !ok {
		return nil
	}
	switch v.Kind {
	case env.Indexed:
		return v.List
	case env.Associative:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, len(keys))
		for i, k := range keys {
			out[i] = v.Map[k]
		}
		return out
	default:
		return []string{v.ScalarStr()}
	}
}

func (c *Config) arrayKeys(name string) []string {
	v, ok := c.Shell.Env.Get(name, env.AnyScope)
	if !ok {
		return nil
	}
	switch v.Kind {
	case env.Indexed:
		out := make([]string, len(v.List))
		for i := range v.List {
			out[i] = strconv.Itoa(i)
		}
		return out
	case env.Associative:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}
	return nil
}

func (c *Config) namesWithPrefix(prefix string) []string {
	var out []string
	c.Shell.Env.Each(func(name string, v env.Variable) bool {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
		return true
	})
	sort.Strings(out)
	return out
}

// arrayLikeResult turns a name/value list into either multiple fields
// (AtOp == '@', spec.md §4.5's "$@" splicing rule) or a single field
// joined on the first character of IFS (AtOp == '*').
func (c *Config) arrayLikeResult(vals []string, atOp byte, quotedCtx bool) []field {
	if atOp == '@' {
		if len(vals) == 0 {
			return []field{}
		}
		out := make([]field, len(vals))
		for i, v := range vals {
			out[i] = field{{s: v, quoted: quotedCtx}}
		}
		return out
	}
	sep := " "
	if ifs, ok := c.Shell.Env.GetStr("IFS"); ok {
		if ifs == "" {
			sep = ""
		} else {
			sep = ifs[:1]
		}
	}
	return []field{{{s: strings.Join(vals, sep), quoted: quotedCtx}}}
}

func (c *Config) paramLength(name string, pe *ast.ParamExp) int {
	if pe.Index != nil {
		if atop := indexAtOp(pe.Index); atop != 0 {
			return len(c.arrayOrPositionalValues(name, pe))
		}
		val, _ := c.lookupScalar(name, pe)
		return len([]rune(val))
	}
	if name == "@" || name == "*" {
		return len(c.Shell.Calls.Positional())
	}
	if v, ok := c.Shell.Env.Get(name, env.AnyScope); ok {
		switch v.Kind {
		case env.Indexed:
			return len(v.List)
		case env.Associative:
			return len(v.Map)
		}
	}
	val, _ := c.specialOrVar(name)
	return len([]rune(val))
}

func (c *Config) lookupScalar(name string, pe *ast.ParamExp) (string, bool) {
	if pe.Index != nil {
		idxLit, err := c.Literal(pe.Index)
		if err != nil {
			return "", false
		}
		n, err := c.evalSubscript(idxLit)
		if err != nil {
			return "", false
		}
		v, ok := c.Shell.Env.Get(name, env.AnyScope)
		if !ok {
			return "", false
		}
		switch v.Kind {
		case env.Indexed:
			if n < 0 || n >= len(v.List) {
				return "", false
			}
			return v.List[n], true
		case env.Associative:
			s, ok := v.Map[idxLit]
			return s, ok
		}
		return "", false
	}
	return c.specialOrVar(name)
}

// evalSubscript expands and arithmetically evaluates an array
// subscript, per spec.md §4.5's "subscripts undergo arithmetic
// expansion" rule.
func (c *Config) evalSubscript(src string) (int, error) {
	expr, err := arithParser.ParseArithm(src, 0)
	if err != nil {
		return 0, err
	}
	v, err := arith.Eval(c.arithConfig(), expr)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// specialOrVar resolves the POSIX special parameters ($?, $$, $!, $#,
// $-, $0-$9) and ordinary variables, per spec.md §4.4's special-
// parameter table.
func (c *Config) specialOrVar(name string) (string, bool) {
	switch name {
	case "?":
		return strconv.Itoa(int(c.Shell.LastExit)), true
	case "$":
		return strconv.Itoa(os.Getpid()), true
	case "!":
		if j := c.Shell.Jobs.LastBackgroundPID(); j != 0 {
			return strconv.Itoa(j), true
		}
		return "", true
	case "#":
		return strconv.Itoa(len(c.Shell.Calls.Positional())), true
	case "-":
		return c.shellOptFlags(), true
	case "0":
		return c.Shell.Name, true
	}
	if len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
		idx := int(name[0] - '1')
		pos := c.Shell.Calls.Positional()
		if idx < len(pos) {
			return pos[idx], true
		}
		return "", false
	}
	return c.Shell.Env.GetStr(name)
}

func (c *Config) shellOptFlags() string {
	var sb strings.Builder
	o := c.Shell.Opts
	if o.Errexit {
		sb.WriteByte('e')
	}
	if o.Nounset {
		sb.WriteByte('u')
	}
	if o.Xtrace {
		sb.WriteByte('x')
	}
	if o.Noglob {
		sb.WriteByte('f')
	}
	if o.Verbose {
		sb.WriteByte('v')
	}
	if o.Monitor {
		sb.WriteByte('m')
	}
	return sb.String()
}

// applyModifiers handles everything that can follow the bare name:
// Slice, Replace, and the Modifier family (default/assign/error/alt,
// prefix/suffix removal, and the `@opchar` introspection operators).
func (c *Config) applyModifiers(val string, set bool, pe *ast.ParamExp, quotedCtx bool) (field, []field, error) {
	if pe.Slice != nil {
		s, err := c.applySlice(val, pe.Slice)
		if err != nil {
			return nil, nil, err
		}
		val = s
	}
	if pe.Replace != nil {
		s, err := c.applyReplace(val, pe.Replace)
		if err != nil {
			return nil, nil, err
		}
		val = s
	}
	if pe.Modifier != nil {
		s, isAssignOrErr, err := c.applyModifier(val, set, pe)
		if err != nil {
			return nil, nil, err
		}
		if isAssignOrErr {
			set = true
		}
		val = s
	}
	return field{{s: val, quoted: quotedCtx}}, nil, nil
}

func (c *Config) applySlice(val string, sl *ast.Slice) (string, error) {
	offLit, err := c.Literal(sl.Offset)
	if err != nil {
		return "", err
	}
	off, err := c.evalSubscript(offLit)
	if err != nil {
		return "", err
	}
	runes := []rune(val)
	n := len(runes)
	if off < 0 {
		off += n
	}
	if off < 0 {
		off = 0
	}
	if off > n {
		off = n
	}
	end := n
	if sl.Length != nil {
		lenLit, err := c.Literal(sl.Length)
		if err != nil {
			return "", err
		}
		l, err := c.evalSubscript(lenLit)
		if err != nil {
			return "", err
		}
		if l < 0 {
			end = n + l
		} else {
			end = off + l
		}
	}
	if end > n {
		end = n
	}
	if end < off {
		end = off
	}
	return string(runes[off:end]), nil
}

func (c *Config) applyReplace(val string, r *ast.Replace) (string, error) {
	pat, err := c.Literal(r.Pattern)
	if err != nil {
		return "", err
	}
	with := ""
	if r.With != nil {
		with, err = c.Literal(r.With)
		if err != nil {
			return "", err
		}
	}
	switch {
	case r.AnchorBeg:
		if ok, n := matchPrefix(pat, val); ok {
			return with + val[n:], nil
		}
		return val, nil
	case r.AnchorEnd:
		if ok, n := matchSuffix(pat, val); ok {
			return val[:len(val)-n] + with, nil
		}
		return val, nil
	case r.All:
		return replaceAllGlob(pat, val, with), nil
	default:
		return replaceFirstGlob(pat, val, with), nil
	}
}

func (c *Config) applyModifier(val string, set bool, pe *ast.ParamExp) (string, bool, error) {
	m := pe.Modifier
	isNullish := !set || val == ""
	useIt := isNullish
	if m.UnsetOnly {
		// `:`-less forms (bash's `${p-x}` etc.) only trigger on unset,
		// not on set-but-empty.
		useIt = !set
	}
	switch m.Op {
	case ast.ModUseDefault:
		if useIt {
			s, err := c.Literal(m.Word)
			return s, false, err
		}
		return val, false, nil
	case ast.ModAssignDefault:
		if useIt {
			def, err := c.Literal(m.Word)
			if err != nil {
				return "", false, err
			}
			if err := c.Shell.Env.Set(pe.Param.Value, env.Variable{Kind: env.Scalar, Str: def}, nil, env.Nearest); err != nil {
				return "", false, err
			}
			return def, true, nil
		}
		return val, false, nil
	case ast.ModError:
		if useIt {
			msg, _ := c.Literal(m.Word)
			if msg == "" {
				msg = "parameter null or not set"
			}
			return "", false, fmt.Errorf("%s: %s", pe.Param.Value, msg)
		}
		return val, false, nil
	case ast.ModUseAlt:
		if !useIt {
			s, err := c.Literal(m.Word)
			return s, false, err
		}
		return "", false, nil
	case ast.ModRemSmallestPrefix, ast.ModRemLargestPrefix:
		pat, err := c.Literal(m.Word)
		if err != nil {
			return "", false, err
		}
		return trimGlobPrefix(pat, val, m.Op == ast.ModRemLargestPrefix), false, nil
	case ast.ModRemSmallestSuffix, ast.ModRemLargestSuffix:
		pat, err := c.Literal(m.Word)
		if err != nil {
			return "", false, err
		}
		return trimGlobSuffix(pat, val, m.Op == ast.ModRemLargestSuffix), false, nil
	case ast.ModCaseAt:
		return applyAtOperator(m.AtOpChar, val), false, nil
	default:
		return val, false, nil
	}
}

// applyAtOperator implements `${param@opchar}` introspection/
// transform operators (bash 5.x): Q (quote), E (backslash-escape
// interpretation), P (prompt expansion — not wired, returns as-is),
// A/a/K/k (declare/attribute introspection — not wired, returns as-is,
// since there is no declare-statement reconstruction in this engine
// yet).
func applyAtOperator(op byte, val string) string {
	switch op {
	case 'Q':
		return quoteForReuse(val)
	case 'E':
		return interpretBackslashes(val)
	default:
		return val
	}
}

func quoteForReuse(s string) string {
	if s == "" {
		return "''"
	}
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			sb.WriteString(`'\''`)
		} else {
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

func interpretBackslashes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
