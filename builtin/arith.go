package builtin

import (
	"github.com/brushsh/brush/arith"
	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/interp"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/parser"
)

// arithParser is shared by `let` and `((...))`-style evaluation
// requests, the same stateless-per-call use expand/param.go makes of
// its own package-level parser.Parser.
var arithParser = parser.NewParser(lexer.Options{})

func arithEval(ctx *interp.ExecContext, expr ast.ArithmExpr) (int64, error) {
	return arith.Eval(ctx.Shell.ArithConfig(), expr)
}
