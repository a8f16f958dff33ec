// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shell

import (
	"fmt"
	"os"
	"strings"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/expand"
	"github.com/brushsh/brush/interp"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/parser"
)

// paramCollector walks a word's AST gathering every name its
// parameter expansions reference, so Expand/Fields only have to
// answer for names actually used rather than seed a whole
// environment; it also rejects command substitution, since neither
// function may run arbitrary code.
type paramCollector struct {
	names []string
	err   error
}

func (v *paramCollector) Visit(n ast.Node) ast.Visitor {
	switch x := n.(type) {
	case *ast.CmdSubst:
		if v.err == nil {
			v.err = fmt.Errorf("unexpected command substitution")
		}
		return nil
	case *ast.ParamExp:
		if x.Param != nil {
			v.names = append(v.names, x.Param.Value)
		}
	}
	return v
}

func paramNames(w ast.Word) ([]string, error) {
	c := &paramCollector{}
	for _, p := range w {
		ast.Walk(c, p)
	}
	return c.names, c.err
}

// envShell builds a bare Shell wired only for C5 expansion, its Env
// seeded lazily: envFn (or os.Getenv if nil) is consulted once per
// name actually referenced, plus HOME (tilde expansion always
// consults it), per the teacher's shell.Expand/Fields contract.
func envShell(names []string, envFn func(string) string) *interp.Shell {
	if envFn == nil {
		envFn = os.Getenv
	}
	sh := interp.New("shell.Expand", nil)
	sh.Expand = expand.New(sh)
	seen := map[string]bool{"HOME": true}
	sh.Env.Set("HOME", env.Variable{Kind: env.Scalar, Str: envFn("HOME")}, nil, env.Nearest)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		sh.Env.Set(name, env.Variable{Kind: env.Scalar, Str: envFn(name)}, nil, env.Nearest)
	}
	return sh
}

// Expand performs shell parameter, arithmetic, and tilde expansion on
// s, resolving variable names via envFn (nil uses the process
// environment). Command substitution is rejected, since Expand never
// runs arbitrary code.
func Expand(s string, envFn func(string) string) (string, error) {
	p := parser.NewParser(lexer.Options{})
	w, err := p.ParseWord(s, 0)
	if err != nil {
		return "", err
	}
	names, err := paramNames(w)
	if err != nil {
		return "", err
	}
	sh := envShell(names, envFn)
	fields, err := sh.Expand.Fields([]ast.Word{w})
	if err != nil {
		return "", err
	}
	return strings.Join(fields, ""), nil
}

// Fields performs shell expansion on s like Expand, but returns the
// separate fields word splitting produces instead of joining them.
// s is parsed the same way a simple command's argument list is, so
// quoting and `$IFS`-driven splitting behave identically.
func Fields(s string, envFn func(string) string) ([]string, error) {
	p := parser.NewParser(lexer.Options{})
	prog, err := p.Parse([]byte(": "+s), "")
	if err != nil {
		return nil, err
	}
	words := simpleCommandArgs(prog)
	var names []string
	for _, w := range words {
		ns, err := paramNames(w)
		if err != nil {
			return nil, err
		}
		names = append(names, ns...)
	}
	sh := envShell(names, envFn)
	return sh.Expand.Fields(words)
}

// simpleCommandArgs extracts the argument words (skipping the leading
// `:` we prefixed the source with) of prog's sole simple command, the
// shape Parse always produces for a bare word list.
func simpleCommandArgs(prog *ast.Program) []ast.Word {
	if len(prog.Commands) == 0 || len(prog.Commands[0].Lists) == 0 {
		return nil
	}
	ao := prog.Commands[0].Lists[0]
	if len(ao.First.Commands) == 0 {
		return nil
	}
	sc, ok := ao.First.Commands[0].Cmd.(*ast.SimpleCommand)
	if !ok {
		return nil
	}
	return sc.Args
}
