package ast

// Visitor's Visit method is invoked for every node encountered by Walk.
// If the result is non-nil, Walk visits each of the node's children
// with that visitor, then calls Visit(nil) once children are done.
type Visitor interface {
	Visit(node Node) Visitor
}

// Walk traverses an AST in depth-first order, grounded on the same
// shape as go/ast.Walk.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	v = v.Visit(node)
	if v == nil {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, c := range n.Commands {
			Walk(v, c)
		}
	case *CompleteCommand:
		for _, l := range n.Lists {
			Walk(v, l)
		}
	case *AndOrList:
		Walk(v, n.First)
		for _, r := range n.Rest {
			Walk(v, r.Pipeline)
		}
	case *Pipeline:
		for _, s := range n.Commands {
			Walk(v, s)
		}
	case *Stmt:
		Walk(v, n.Cmd)
	case *SimpleCommand:
		for _, a := range n.Assigns {
			Walk(v, a)
		}
		for _, r := range n.Redirs {
			Walk(v, r)
		}
		if n.Name != nil {
			Walk(v, n.Name)
		}
		for _, a := range n.Args {
			Walk(v, a)
		}
	case *CompoundStmt:
		Walk(v, n.Cmd)
		for _, r := range n.Redirs {
			Walk(v, r)
		}
	case *BraceGroup:
		Walk(v, n.Body)
	case *Subshell:
		Walk(v, n.Body)
	case *ForClause:
		Walk(v, n.Body)
	case *ArithForC:
		Walk(v, n.Body)
	case *CaseClause:
		Walk(v, n.Word)
		for _, it := range n.Items {
			Walk(v, it.Body)
		}
	case *IfClause:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		for _, e := range n.Elifs {
			Walk(v, e.Cond)
			Walk(v, e.Then)
		}
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *WhileClause:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *UntilClause:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *SelectClause:
		Walk(v, n.Body)
	case *CoprocClause:
		Walk(v, n.Body)
	case *FunctionDef:
		Walk(v, n.Body)
	case *ExtendedTest:
		Walk(v, n.X)
	case *BinaryTest:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *UnaryTest:
		Walk(v, n.X)
	case *ParenTest:
		Walk(v, n.X)
	case *WordTest:
		Walk(v, n.W)
	case *CompoundList:
		for _, s := range n.Stmts {
			Walk(v, s)
		}
	case *Assignment:
		Walk(v, n.Name)
		Walk(v, n.Value)
	case *Redirect:
		Walk(v, n.Word)
	case Word:
		for _, p := range n {
			Walk(v, p)
		}
	case *DblQuoted:
		for _, p := range n.Parts {
			Walk(v, p)
		}
	case *ParamExp:
		if n.Slice != nil {
			Walk(v, n.Slice.Offset)
			if n.Slice.Length != nil {
				Walk(v, n.Slice.Length)
			}
		}
		if n.Replace != nil {
			Walk(v, n.Replace.Pattern)
			Walk(v, n.Replace.With)
		}
		if n.Modifier != nil {
			Walk(v, n.Modifier.Word)
		}
	case *CmdSubst:
		Walk(v, n.Prog)
	case *ArithmExp:
		Walk(v, n.X)
	case *ProcSubst:
		Walk(v, n.Prog)
	case *ArithBinary:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *ArithUnary:
		Walk(v, n.X)
	case *ArithTernary:
		Walk(v, n.Cond)
		Walk(v, n.X)
		Walk(v, n.Y)
	case *ArithParen:
		Walk(v, n.X)
	case *ArithWord:
		Walk(v, n.W)
	}
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect calls f for every node encountered by Walk, in depth-first
// order, stopping that branch's recursion when f returns false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
