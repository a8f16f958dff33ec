package builtin

import (
	"fmt"
	"os"
	"strconv"

	"github.com/brushsh/brush/interp"
)

// Grounded on original_source/shell/src/builtins/test.rs: a small
// recursive-descent evaluator over the already-expanded argument list,
// covering POSIX test's unary file/string tests, binary string/integer
// comparisons, and the `!`/`-a`/`-o` logical connectives (deprecated by
// POSIX but still required by spec.md's bash-compatibility scope).

func testCmd(ctx *interp.ExecContext, args []string) interp.Result {
	ok, err := evalTest(ctx, args)
	if err != nil {
		return failf(ctx, "%v", err)
	}
	if ok {
		return normal(interp.Success)
	}
	return normal(interp.GeneralError)
}

func bracketCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) == 0 || args[len(args)-1] != "]" {
		return usageError(ctx, "missing ']'")
	}
	return testCmd(ctx, args[:len(args)-1])
}

type testParser struct {
	ctx  *interp.ExecContext
	args []string
	pos  int
}

func evalTest(ctx *interp.ExecContext, args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	p := &testParser{ctx: ctx, args: args}
	v, err := p.orExpr()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.args) {
		return false, errf("unexpected argument %q", p.args[p.pos])
	}
	return v, nil
}

func errf(format string, args ...any) error { return fmt.Errorf(format, args...) }

func (p *testParser) peek() (string, bool) {
	if p.pos >= len(p.args) {
		return "", false
	}
	return p.args[p.pos], true
}

func (p *testParser) next() string {
	a := p.args[p.pos]
	p.pos++
	return a
}

func (p *testParser) orExpr() (bool, error) {
	left, err := p.andExpr()
	if err != nil {
		return false, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok != "-o" {
			return left, nil
		}
		p.next()
		right, err := p.andExpr()
		if err != nil {
			return false, err
		}
		left = left || right
	}
}

func (p *testParser) andExpr() (bool, error) {
	left, err := p.notExpr()
	if err != nil {
		return false, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok != "-a" {
			return left, nil
		}
		p.next()
		right, err := p.notExpr()
		if err != nil {
			return false, err
		}
		left = left && right
	}
}

func (p *testParser) notExpr() (bool, error) {
	if tok, ok := p.peek(); ok && tok == "!" {
		p.next()
		v, err := p.notExpr()
		return !v, err
	}
	return p.primary()
}

var unaryOps = map[string]func(string) bool{
	"-z": func(s string) bool { return len(s) == 0 },
	"-n": func(s string) bool { return len(s) != 0 },
	"-e": func(s string) bool { _, err := os.Stat(s); return err == nil },
	"-f": func(s string) bool { fi, err := os.Stat(s); return err == nil && fi.Mode().IsRegular() },
	"-d": func(s string) bool { fi, err := os.Stat(s); return err == nil && fi.IsDir() },
	"-s": func(s string) bool { fi, err := os.Stat(s); return err == nil && fi.Size() > 0 },
	"-L": func(s string) bool { fi, err := os.Lstat(s); return err == nil && fi.Mode()&os.ModeSymlink != 0 },
	"-r": func(s string) bool { return accessOK(s, 4) },
	"-w": func(s string) bool { return accessOK(s, 2) },
	"-x": func(s string) bool { return accessOK(s, 1) },
}

func accessOK(path string, mode uint32) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	perm := uint32(fi.Mode().Perm())
	return perm&(mode<<6) != 0 || perm&(mode<<3) != 0 || perm&mode != 0
}

var binaryStrOps = map[string]func(a, b string) bool{
	"=":  func(a, b string) bool { return a == b },
	"==": func(a, b string) bool { return a == b },
	"!=": func(a, b string) bool { return a != b },
	"<":  func(a, b string) bool { return a < b },
	">":  func(a, b string) bool { return a > b },
}

var binaryIntOps = map[string]func(a, b int64) bool{
	"-eq": func(a, b int64) bool { return a == b },
	"-ne": func(a, b int64) bool { return a != b },
	"-lt": func(a, b int64) bool { return a < b },
	"-le": func(a, b int64) bool { return a <= b },
	"-gt": func(a, b int64) bool { return a > b },
	"-ge": func(a, b int64) bool { return a >= b },
}

func (p *testParser) primary() (bool, error) {
	tok, ok := p.peek()
	if !ok {
		return false, errf("argument expected")
	}
	if tok == "(" {
		p.next()
		v, err := p.orExpr()
		if err != nil {
			return false, err
		}
		if t, ok := p.peek(); !ok || t != ")" {
			return false, errf("expected ')'")
		}
		p.next()
		return v, nil
	}
	if tok == "-t" && p.pos+1 < len(p.args) {
		p.next()
		fd, err := strconv.ParseInt(p.next(), 10, 64)
		if err != nil {
			return false, nil
		}
		return p.ctx.Shell.FdIsTerminal(int(fd)), nil
	}
	if fn, ok := unaryOps[tok]; ok && p.pos+1 < len(p.args) {
		p.next()
		return fn(p.next()), nil
	}
	// lookahead for a binary operator between this token and the next
	if p.pos+1 < len(p.args) {
		op := p.args[p.pos+1]
		if fn, ok := binaryStrOps[op]; ok {
			left := p.next()
			p.next()
			right := p.next()
			return fn(left, right), nil
		}
		if fn, ok := binaryIntOps[op]; ok {
			left := p.next()
			p.next()
			right := p.next()
			li, err := strconv.ParseInt(left, 10, 64)
			if err != nil {
				return false, errf("%s: integer expression expected", left)
			}
			ri, err := strconv.ParseInt(right, 10, 64)
			if err != nil {
				return false, errf("%s: integer expression expected", right)
			}
			return fn(li, ri), nil
		}
	}
	v := p.next()
	return v != "", nil
}
