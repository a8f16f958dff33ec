// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shell

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/builtin"
	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/expand"
	"github.com/brushsh/brush/interp"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/parser"
)

// SourceFile sources a shell file from disk and returns the scalar
// variables it declares, via SourceNode.
func SourceFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open: %v", err)
	}
	p := parser.NewParser(lexer.Options{})
	prog, err := p.Parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("could not parse: %v", err)
	}
	return SourceNode(prog)
}

// purePrograms holds a list of common external programs with no
// meaningful side effects, the only ones SourceNode permits a sourced
// script to invoke.
var purePrograms = []string{
	"sed", "grep", "tr", "cut", "cat", "head", "tail", "seq", "yes", "wc",
	"ls", "pwd", "basename", "realpath",
	"env", "sleep", "uniq", "sort",
}

// pureShell returns a Shell whose only reachable external commands are
// purePrograms, resolved to an absolute path up front against the
// real environment and wrapped as builtins; every other external name
// is unreachable because PATH is cleared before any script text runs,
// so the executor's own PATH search can never resolve it.
func pureShell() *interp.Shell {
	sh := interp.New("shell.SourceNode", nil)
	sh.Expand = expand.New(sh)
	for _, name := range purePrograms {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		sh.Builtins[name] = builtin.Func(func(ctx *interp.ExecContext, args []string) interp.Result {
			cmd := exec.Command(path, args...)
			cmd.Stdin, cmd.Stdout, cmd.Stderr = ctx.Stdin, ctx.Stdout, ctx.Stderr
			if err := cmd.Run(); err != nil {
				if ee, ok := err.(*exec.ExitError); ok {
					return interp.Result{ExitCode: interp.ExitCode(ee.ExitCode())}
				}
				return interp.Result{ExitCode: interp.CannotExecute}
			}
			return interp.Result{ExitCode: interp.Success}
		})
	}
	sh.Env.Set("PATH", env.Variable{Kind: env.Scalar, Str: ""}, nil, env.Nearest)
	return sh
}

// SourceNode sources a parsed program and returns the scalar variables
// it declares, forbidding any side effect on the host system beyond
// the purePrograms whitelist.
func SourceNode(prog *ast.Program) (map[string]string, error) {
	sh := pureShell()
	res := sh.Run(prog)
	if res.ExitCode != interp.Success {
		return nil, fmt.Errorf("program exited with status %d", res.ExitCode)
	}
	out := make(map[string]string)
	sh.Env.Each(func(name string, v env.Variable) bool {
		switch name {
		case "PWD", "HOME", "PATH", "IFS", "OPTIND":
			return true
		}
		if v.IsSet() {
			out[name] = v.ScalarStr()
		}
		return true
	})
	return out, nil
}
