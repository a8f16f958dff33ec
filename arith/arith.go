// Package arith implements the arithmetic evaluator (C7): it walks the
// ast.ArithmExpr trees produced by the parser's arithmetic sub-parser
// (C2) and computes their 64-bit signed integer value, per spec.md
// §4.7, mutating the variable environment for assignment operators.
//
// Grounded on the teacher's expand/arith.go (same recursive-descent
// walk over a syntax.ArithmExpr, the same envGet/envSet indirection
// through a *Config so the evaluator never imports the environment
// package directly), generalized from the teacher's machine `int` to a
// fixed int64 per spec.md's "values are 64-bit signed", with added
// support for `base#digits` literals (2..36) and array-indexed lvalues.
package arith

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brushsh/brush/ast"
)

// ErrDivideByZero is returned by Eval for `/`, `%`, `/=`, `%=` with a
// zero right-hand operand, per spec.md §4.7.
var ErrDivideByZero = fmt.Errorf("arith: division by zero")

// Config is the environment-access hook arith.Eval depends on, kept
// narrow (Get/Set by name, optional indexing, optional word expansion)
// so this package never imports env or expand directly — the caller
// (interp, by way of expand) supplies the bridge to C4, matching how
// the teacher's expand.Config bridges expand.Arithm to Environ.
type Config struct {
	// Get returns a variable's scalar string value.
	Get func(name string) (string, bool)
	// Set assigns a variable's scalar string value, applying any
	// declared attributes (Integer, ReadOnly, ...) via C4.
	Set func(name string, value string) error
	// GetIndex returns element idx of an array variable; nil if the
	// evaluator never needs to read `arr[i]` (scalar-only callers may
	// omit it).
	GetIndex func(name string, idx int64) (string, bool)
	// SetIndex assigns element idx of an array variable.
	SetIndex func(name string, idx int64, value string) error
	// ExpandWord expands a Word with non-literal parts (a parameter
	// or command substitution appearing as an arithmetic operand, e.g.
	// `$((${x})); $((` $(cmd) `))`) into its string value. Bare-name and
	// bare-literal words never need this hook.
	ExpandWord func(w ast.Word) (string, error)
}

const maxRecurseDepth = 100

// Eval computes expr's value under cfg.
func Eval(cfg *Config, expr ast.ArithmExpr) (int64, error) {
	return eval(cfg, expr, 0)
}

func eval(cfg *Config, expr ast.ArithmExpr, depth int) (int64, error) {
	if depth > maxRecurseDepth {
		return 0, fmt.Errorf("arith: expression nesting too deep")
	}
	switch x := expr.(type) {
	case nil:
		return 0, nil
	case *ast.ArithParen:
		return eval(cfg, x.X, depth+1)
	case *ast.ArithWord:
		return evalWord(cfg, x, depth)
	case *ast.ArithUnary:
		return evalUnary(cfg, x, depth)
	case *ast.ArithTernary:
		cond, err := eval(cfg, x.Cond, depth+1)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return eval(cfg, x.X, depth+1)
		}
		return eval(cfg, x.Y, depth+1)
	case *ast.ArithBinary:
		return evalBinary(cfg, x, depth)
	default:
		return 0, fmt.Errorf("arith: unexpected node %T", expr)
	}
}

// resolveName reads expr.W as a name string: its literal text, or
// cfg.ExpandWord's result for a non-literal word. An empty word gives "";
// a non-literal word with no ExpandWord hook is an error.
func resolveName(cfg *Config, w ast.Word) (string, error) {
	if lit := w.Lit(); lit != "" {
		return lit, nil
	}
	if len(w) == 0 {
		return "", nil
	}
	if cfg.ExpandWord != nil {
		return cfg.ExpandWord(w)
	}
	return "", fmt.Errorf("arith: cannot resolve operand without an ExpandWord hook")
}

func evalWord(cfg *Config, aw *ast.ArithWord, depth int) (int64, error) {
	name, err := resolveName(cfg, aw.W)
	if err != nil {
		return 0, err
	}
	if aw.Index != nil {
		idx, err := eval(cfg, aw.Index, depth+1)
		if err != nil {
			return 0, err
		}
		if cfg.GetIndex == nil {
			return 0, nil
		}
		s, _ := cfg.GetIndex(name, idx)
		return atoi(cfg, s, depth)
	}
	if isValidName(name) {
		var s string
		if cfg.Get != nil {
			s, _ = cfg.Get(name)
		}
		return atoi(cfg, s, depth)
	}
	return parseLiteral(name)
}

// atoi recursively follows a variable's value as an arithmetic
// expression (bash lets `x=y; y=5; $((x))` evaluate to 5), bounded by
// maxRecurseDepth, then defaults to 0 per spec.md's "a bare name (no
// value assigned) evaluates to 0".
func atoi(cfg *Config, s string, depth int) (int64, error) {
	seen := 0
	for isValidName(s) {
		if seen++; seen >= maxRecurseDepth {
			break
		}
		var next string
		var ok bool
		if cfg.Get != nil {
			next, ok = cfg.Get(s)
		}
		if !ok || next == "" {
			return 0, nil
		}
		s = next
	}
	n, err := parseLiteral(s)
	if err != nil {
		return 0, nil // bash: a non-numeric literal defaults to 0, not an error
	}
	return n, nil
}

func isValidName(s string) bool {
	if s == "" {
		return false
	}
	if !(s[0] == '_' || (s[0] >= 'a' && s[0] <= 'z') || (s[0] >= 'A' && s[0] <= 'Z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// parseLiteral parses an integer literal honoring bash's arithmetic
// notations: decimal, `0x`/`0X` hex, a leading `0` octal prefix, and
// `base#digits` for base in [2,36], per spec.md §4.7.
func parseLiteral(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	var n int64
	var err error
	switch {
	case strings.Contains(s, "#"):
		parts := strings.SplitN(s, "#", 2)
		base, perr := strconv.Atoi(parts[0])
		if perr != nil || base < 2 || base > 36 {
			return 0, fmt.Errorf("arith: invalid base %q", parts[0])
		}
		n, err = strconv.ParseInt(parts[1], base, 64)
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		n, err = strconv.ParseInt(s[2:], 16, 64)
	case len(s) > 1 && s[0] == '0':
		n, err = strconv.ParseInt(s, 8, 64)
	default:
		n, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		n = -n
	}
	return n, nil
}

func evalUnary(cfg *Config, u *ast.ArithUnary, depth int) (int64, error) {
	switch u.Op {
	case ast.ArithOp("++"), ast.ArithOp("--"):
		aw, ok := u.X.(*ast.ArithWord)
		if !ok {
			return 0, fmt.Errorf("arith: %s requires an lvalue", u.Op)
		}
		name, err := resolveName(cfg, aw.W)
		if err != nil {
			return 0, err
		}
		old, err := atoi(cfg, getOrEmpty(cfg, name), depth)
		if err != nil {
			return 0, err
		}
		val := old
		if u.Op == ast.ArithOp("++") {
			val++
		} else {
			val--
		}
		if cfg.Set != nil {
			if err := cfg.Set(name, strconv.FormatInt(val, 10)); err != nil {
				return 0, err
			}
		}
		if u.Post {
			return old, nil
		}
		return val, nil
	}
	val, err := eval(cfg, u.X, depth+1)
	if err != nil {
		return 0, err
	}
	switch u.Op {
	case ast.ArithOp("!"):
		return oneIf(val == 0), nil
	case ast.ArithOp("~"):
		return ^val, nil
	case ast.ArithOp("+"):
		return val, nil
	default: // "-"
		return -val, nil
	}
}

func getOrEmpty(cfg *Config, name string) string {
	if cfg.Get == nil {
		return ""
	}
	s, _ := cfg.Get(name)
	return s
}

func oneIf(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

var assignOps = map[ast.ArithOp]bool{
	ast.ArithAssign: true, ast.ArithAddAssign: true, ast.ArithSubAssign: true,
	ast.ArithMulAssign: true, ast.ArithDivAssign: true, ast.ArithRemAssign: true,
	ast.ArithAndAssign: true, ast.ArithOrAssign: true, ast.ArithXorAssign: true,
	ast.ArithShlAssign: true, ast.ArithShrAssign: true,
}

func evalBinary(cfg *Config, b *ast.ArithBinary, depth int) (int64, error) {
	if assignOps[b.Op] {
		return evalAssign(cfg, b, depth)
	}
	if b.Op == ast.ArithComma {
		if _, err := eval(cfg, b.X, depth+1); err != nil {
			return 0, err
		}
		return eval(cfg, b.Y, depth+1)
	}
	if b.Op == ast.ArithLAnd {
		x, err := eval(cfg, b.X, depth+1)
		if err != nil {
			return 0, err
		}
		if x == 0 {
			return 0, nil
		}
		y, err := eval(cfg, b.Y, depth+1)
		if err != nil {
			return 0, err
		}
		return oneIf(y != 0), nil
	}
	if b.Op == ast.ArithLOr {
		x, err := eval(cfg, b.X, depth+1)
		if err != nil {
			return 0, err
		}
		if x != 0 {
			return 1, nil
		}
		y, err := eval(cfg, b.Y, depth+1)
		if err != nil {
			return 0, err
		}
		return oneIf(y != 0), nil
	}
	x, err := eval(cfg, b.X, depth+1)
	if err != nil {
		return 0, err
	}
	y, err := eval(cfg, b.Y, depth+1)
	if err != nil {
		return 0, err
	}
	switch b.Op {
	case ast.ArithAdd:
		return x + y, nil
	case ast.ArithSub:
		return x - y, nil
	case ast.ArithMul:
		return x * y, nil
	case ast.ArithDiv:
		if y == 0 {
			return 0, ErrDivideByZero
		}
		return x / y, nil
	case ast.ArithRem:
		if y == 0 {
			return 0, ErrDivideByZero
		}
		return x % y, nil
	case ast.ArithPow:
		return intPow(x, y), nil
	case ast.ArithEq:
		return oneIf(x == y), nil
	case ast.ArithNe:
		return oneIf(x != y), nil
	case ast.ArithLt:
		return oneIf(x < y), nil
	case ast.ArithGt:
		return oneIf(x > y), nil
	case ast.ArithLe:
		return oneIf(x <= y), nil
	case ast.ArithGe:
		return oneIf(x >= y), nil
	case ast.ArithAnd:
		return x & y, nil
	case ast.ArithOr:
		return x | y, nil
	case ast.ArithXor:
		return x ^ y, nil
	case ast.ArithShl:
		return x << uint(y), nil
	case ast.ArithShr:
		return x >> uint(y), nil
	default:
		return 0, fmt.Errorf("arith: unsupported operator %q", b.Op)
	}
}

// intPow implements two's-complement wraparound exponentiation, per
// spec.md §4.7's "overflow wraps (two's complement) by convention".
func intPow(a, b int64) int64 {
	if b < 0 {
		return 0
	}
	var p int64 = 1
	for b > 0 {
		if b&1 != 0 {
			p *= a
		}
		b >>= 1
		a *= a
	}
	return p
}

func evalAssign(cfg *Config, b *ast.ArithBinary, depth int) (int64, error) {
	aw, ok := b.X.(*ast.ArithWord)
	if !ok {
		return 0, fmt.Errorf("arith: assignment target must be an lvalue")
	}
	name, err := resolveName(cfg, aw.W)
	if err != nil {
		return 0, err
	}
	rhs, err := eval(cfg, b.Y, depth+1)
	if err != nil {
		return 0, err
	}

	if aw.Index != nil {
		idx, err := eval(cfg, aw.Index, depth+1)
		if err != nil {
			return 0, err
		}
		cur := int64(0)
		if b.Op != ast.ArithAssign && cfg.GetIndex != nil {
			s, _ := cfg.GetIndex(name, idx)
			cur, _ = atoi(cfg, s, depth)
		}
		val, err := applyAssignOp(b.Op, cur, rhs)
		if err != nil {
			return 0, err
		}
		if cfg.SetIndex != nil {
			if err := cfg.SetIndex(name, idx, strconv.FormatInt(val, 10)); err != nil {
				return 0, err
			}
		}
		return val, nil
	}

	cur := int64(0)
	if b.Op != ast.ArithAssign {
		cur, err = atoi(cfg, getOrEmpty(cfg, name), depth)
		if err != nil {
			return 0, err
		}
	}
	val, err := applyAssignOp(b.Op, cur, rhs)
	if err != nil {
		return 0, err
	}
	if cfg.Set != nil {
		if err := cfg.Set(name, strconv.FormatInt(val, 10)); err != nil {
			return 0, err
		}
	}
	return val, nil
}

func applyAssignOp(op ast.ArithOp, cur, rhs int64) (int64, error) {
	switch op {
	case ast.ArithAssign:
		return rhs, nil
	case ast.ArithAddAssign:
		return cur + rhs, nil
	case ast.ArithSubAssign:
		return cur - rhs, nil
	case ast.ArithMulAssign:
		return cur * rhs, nil
	case ast.ArithDivAssign:
		if rhs == 0 {
			return 0, ErrDivideByZero
		}
		return cur / rhs, nil
	case ast.ArithRemAssign:
		if rhs == 0 {
			return 0, ErrDivideByZero
		}
		return cur % rhs, nil
	case ast.ArithAndAssign:
		return cur & rhs, nil
	case ast.ArithOrAssign:
		return cur | rhs, nil
	case ast.ArithXorAssign:
		return cur ^ rhs, nil
	case ast.ArithShlAssign:
		return cur << uint(rhs), nil
	case ast.ArithShrAssign:
		return cur >> uint(rhs), nil
	default:
		return 0, fmt.Errorf("arith: unsupported assignment operator %q", op)
	}
}
