package interp

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/brushsh/brush/arith"
	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/openfiles"
	"github.com/brushsh/brush/parser"
	"github.com/brushsh/brush/token"
)

// subscriptParser parses the arithmetic text inside `arr[i]=`, the same
// way expand/param.go's arithParser parses `${arr[i]}` subscripts; kept
// as its own package-level instance here since interp cannot import
// expand (expand.Config already depends on *Shell, the reverse would
// cycle).
var subscriptParser = parser.NewParser(lexer.Options{})

// Expander is C5's contract as consumed by the executor: turning a
// word into its final field list (after tilde/parameter/command/
// arithmetic expansion, splitting, and pathname expansion) or a single
// joined string (quote-removed, no splitting — used for assignment
// values, redirection targets, and case subjects). Kept as a narrow
// interface here, the same way arith.Config avoids importing env
// directly, so exec.go does not need to import the expand package and
// risk a cycle while expand is still being adapted.
type Expander interface {
	Fields(words []ast.Word) ([]string, error)
	Literal(w ast.Word) (string, error)
}

// Builtin is the contract every built-in command implements, per
// spec.md §6's "Built-in command contract".
type Builtin interface {
	Run(ctx *ExecContext, args []string) Result
}

// ExecContext is what a Builtin or externally-spawned command sees:
// the shell handle plus the three standard streams and the full
// open-files view, per spec.md §6.
type ExecContext struct {
	Shell  *Shell
	Name   string
	Files  *openfiles.Table
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Shell is the C9 executor: it owns one Env (C4), one JobManager
// (C10), one CallStack (C11), one TrapTable (C12), and the current
// open-files view, and walks an *ast.Program. Grounded on the
// teacher's single Runner type (interp/runner.go), split along the
// component boundaries spec.md names.
type Shell struct {
	Env       *env.Env
	Jobs      *JobManager
	Calls     *CallStack
	Traps     *TrapTable
	Files     *openfiles.Table
	Functions map[string]*ast.FunctionDef
	Expand    Expander
	Builtins  map[string]Builtin

	Opts     Options
	LastExit ExitCode
	Name     string // $0

	// ParseAndRun lets the top-level driver supply a reparse-and-execute
	// hook for trap bodies, `eval`, and `source`, without interp
	// importing parser directly (parser does not depend on interp, but
	// keeping the dependency one-directional avoids ever having to
	// care which way it would go). The returned Result is the program's
	// final Result, needed by `eval`/`source` to propagate exit status
	// and control flow (trap firing ignores it).
	ParseAndRun func(s *Shell, src string) Result

	hashCache map[string]string
}

// Options is the C9/C12 boolean option set, `set -o`/`shopt` names
// from spec.md §6 kept as a flat struct rather than a map for cheap,
// typo-proof access from hot executor paths; anything not promoted to
// a field here is tracked only via Shopt for introspection.
type Options struct {
	Errexit   bool
	Nounset   bool
	Xtrace    bool
	Noexec    bool
	Noglob    bool
	Pipefail  bool
	Noclobber bool
	Verbose   bool
	Monitor   bool
	Errtrace  bool
	Shopt     map[string]bool
}

// New returns a Shell ready to execute, wired to the host process's
// standard streams.
func New(name string, args []string) *Shell {
	return &Shell{
		Env:       env.New(),
		Jobs:      NewJobManager(),
		Calls:     NewCallStack(args),
		Traps:     NewTrapTable(),
		Files:     openfiles.New(os.Stdin, os.Stdout, os.Stderr),
		Functions: make(map[string]*ast.FunctionDef),
		Builtins:  make(map[string]Builtin),
		Opts:      Options{Shopt: make(map[string]bool)},
		Name:      name,
		hashCache: make(map[string]string),
	}
}

// Subshell returns a clone of s suitable for `(...)`, a pipeline
// element, or a command substitution, per spec.md §5's "a deep-clone
// snapshot is taken and mutations do not propagate back" and §9's
// "Subshells are deep clones with their own open-files view,
// environment stack, job table, and traps": a fresh Env scope stack
// sharing no scope with the parent, a cloned open-files table, an
// independent job table and trap table, and the clone's own call-stack
// frames, so a `trap`, background job, or `set --`/`shift` run inside
// the subshell never mutates the parent's live state.
func (s *Shell) Subshell() *Shell {
	return &Shell{
		Env:         s.Env.Clone(),
		Jobs:        s.Jobs.Clone(),
		Calls:       s.Calls.Clone(),
		Traps:       s.Traps.Clone(),
		Files:       s.Files.Clone(),
		Functions:   cloneFuncs(s.Functions),
		Expand:      s.Expand,
		Builtins:    s.Builtins,
		Opts:        s.Opts,
		LastExit:    s.LastExit,
		Name:        s.Name,
		ParseAndRun: s.ParseAndRun,
		hashCache:   s.hashCache,
	}
}

func cloneFuncs(m map[string]*ast.FunctionDef) map[string]*ast.FunctionDef {
	out := make(map[string]*ast.FunctionDef, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Run executes a full parsed program (spec.md §4.9's top-level entry
// point), returning the final Result once every CompleteCommand has
// run or the program requests ExitShell.
func (s *Shell) Run(prog *ast.Program) Result {
	var last Result
	for _, cc := range prog.Commands {
		for _, ao := range cc.Lists {
			last = s.runCommand(ao)
			s.drainTraps()
			if last.Flow == ExitShell {
				return last
			}
			if last.Flow != Normal {
				// break/continue/return escaping every enclosing construct
				// at the top level decays to Normal, matching bash's
				// behavior for a stray `return`/`break` outside a function
				// or loop.
				last = last.decayToNormal()
			}
		}
	}
	return last
}

func (s *Shell) drainTraps() {
	for _, name := range s.Traps.DrainPending() {
		if cmd, ok := s.Traps.Handler(name); ok {
			s.runTrapText(cmd)
		}
	}
}

func (s *Shell) runTrapText(src string) {
	if s.ParseAndRun != nil {
		s.ParseAndRun(s, src)
	}
}

// Eval re-parses and runs src in s, per spec.md's `eval`/`.`/`source`
// built-ins; it reports GeneralError with no-op Normal flow if no
// driver has wired ParseAndRun (e.g. a test harness constructing a
// bare Shell).
func (s *Shell) Eval(src string) Result {
	if s.ParseAndRun == nil {
		return normal(GeneralError)
	}
	return s.ParseAndRun(s, src)
}

func (s *Shell) runAndOr(ao *ast.AndOrList) Result {
	res := s.runPipeline(ao.First)
	for _, part := range ao.Rest {
		if res.Flow != Normal {
			return res
		}
		shouldRun := (part.Op == ast.And && res.ExitCode == Success) ||
			(part.Op == ast.Or && res.ExitCode != Success)
		if !shouldRun {
			continue
		}
		res = s.runPipeline(part.Pipeline)
	}
	return res
}

func (s *Shell) runPipeline(p *ast.Pipeline) Result {
	if len(p.Commands) == 1 {
		res := s.runCommand(p.Commands[0].Cmd)
		if p.Negated {
			res.ExitCode = negate(res.ExitCode)
		}
		return res
	}

	n := len(p.Commands)
	results := make([]Result, n)
	readers := make([]*os.File, n)
	writers := make([]*os.File, n)
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			return normal(GeneralError)
		}
		readers[i+1] = r
		writers[i] = w
	}

	done := make(chan struct{}, n)
	for i, stmt := range p.Commands {
		i, stmt := i, stmt
		sub := s.Subshell()
		if readers[i] != nil {
			sub.Files.Set(0, &openfiles.File{Reader: readers[i], Closer: readers[i]})
		}
		if writers[i] != nil {
			sub.Files.Set(1, &openfiles.File{Writer: writers[i], Closer: writers[i]})
		}
		go func() {
			results[i] = sub.runCommand(stmt.Cmd)
			if writers[i] != nil {
				writers[i].Close()
			}
			if readers[i] != nil {
				readers[i].Close()
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	last := results[n-1]
	if s.Opts.Pipefail {
		for i := n - 1; i >= 0; i-- {
			if results[i].ExitCode != Success {
				last.ExitCode = results[i].ExitCode
				break
			}
		}
	}
	if p.Negated {
		last.ExitCode = negate(last.ExitCode)
	}
	return last
}

func negate(c ExitCode) ExitCode {
	if c == Success {
		return GeneralError
	}
	return Success
}

func (s *Shell) runCommand(c ast.Command) Result {
	switch cmd := c.(type) {
	case *ast.AndOrList:
		return s.runAndOr(cmd)
	case *ast.SimpleCommand:
		return s.runSimpleCommand(cmd)
	case *ast.CompoundStmt:
		return s.withRedirs(cmd.Redirs, func() Result { return s.runCompound(cmd.Cmd) })
	case *ast.FunctionDef:
		s.Functions[cmd.Name.Value] = cmd
		return normal(Success)
	case *ast.ExtendedTest:
		ok, err := s.evalBoolExpr(cmd.X)
		if err != nil {
			return normal(GeneralError)
		}
		if ok {
			return normal(Success)
		}
		return normal(GeneralError)
	default:
		return normal(Unimplemented)
	}
}

func (s *Shell) runCompound(cc ast.CompoundCommand) Result {
	switch n := cc.(type) {
	case *ast.BraceGroup:
		return s.runList(n.Body)
	case *ast.Subshell:
		sub := s.Subshell()
		return sub.runList(n.Body)
	case *ast.IfClause:
		return s.runIf(n)
	case *ast.WhileClause:
		return s.runWhile(n.Cond, n.Body, false)
	case *ast.UntilClause:
		return s.runWhile(n.Cond, n.Body, true)
	case *ast.ForClause:
		return s.runFor(n)
	case *ast.ArithForC:
		return s.runArithFor(n)
	case *ast.CaseClause:
		return s.runCase(n)
	case *ast.SelectClause:
		return s.runSelect(n)
	case *ast.ArithCmd:
		v, err := arith.Eval(s.arithConfig(), n.X)
		if err != nil {
			return normal(GeneralError)
		}
		if v == 0 {
			return normal(GeneralError)
		}
		return normal(Success)
	case *ast.CoprocClause:
		return s.runCoproc(n)
	default:
		return normal(Unimplemented)
	}
}

func (s *Shell) runList(cl *ast.CompoundList) Result {
	var last Result
	for _, st := range cl.Stmts {
		last = s.runCommand(st.Cmd)
		if last.Flow != Normal {
			return last
		}
	}
	return last
}

func (s *Shell) runIf(n *ast.IfClause) Result {
	cond := s.runList(n.Cond)
	if cond.Flow != Normal {
		return cond
	}
	if cond.ExitCode == Success {
		return s.runList(n.Then)
	}
	for _, elif := range n.Elifs {
		c := s.runList(elif.Cond)
		if c.Flow != Normal {
			return c
		}
		if c.ExitCode == Success {
			return s.runList(elif.Then)
		}
	}
	if n.Else != nil {
		return s.runList(n.Else)
	}
	return normal(Success)
}

func (s *Shell) runWhile(cond, body *ast.CompoundList, until bool) Result {
	last := normal(Success)
	for {
		cres := s.runList(cond)
		if cres.Flow != Normal {
			return cres
		}
		ok := cres.ExitCode == Success
		if until {
			ok = !ok
		}
		if !ok {
			break
		}
		last = s.runList(body)
		if res, stop := last.consumeLoopLevel(); stop {
			if last.Flow == ContinueLoop {
				last = res
				continue
			}
			return res
		} else if last.Flow != Normal {
			return res
		}
	}
	return last
}

func (s *Shell) runFor(n *ast.ForClause) Result {
	words, err := s.Expand.Fields(n.Words)
	if err != nil {
		return normal(GeneralError)
	}
	last := normal(Success)
	for _, w := range words {
		s.Env.Set(n.Name.Value, env.Variable{Kind: env.Scalar, Str: w}, nil, env.Nearest)
		last = s.runList(n.Body)
		if res, stop := last.consumeLoopLevel(); stop {
			if last.Flow == ContinueLoop {
				last = res
				continue
			}
			return res
		} else if last.Flow != Normal {
			return res
		}
	}
	return last
}

func (s *Shell) runArithFor(n *ast.ArithForC) Result {
	cfg := s.arithConfig()
	if n.Init != nil {
		if _, err := arith.Eval(cfg, n.Init); err != nil {
			return normal(GeneralError)
		}
	}
	last := normal(Success)
	for {
		if n.Cond != nil {
			v, err := arith.Eval(cfg, n.Cond)
			if err != nil {
				return normal(GeneralError)
			}
			if v == 0 {
				break
			}
		}
		last = s.runList(n.Body)
		if res, stop := last.consumeLoopLevel(); stop {
			if last.Flow != ContinueLoop {
				return res
			}
			last = res
		} else if last.Flow != Normal {
			return res
		}
		if n.Post != nil {
			if _, err := arith.Eval(cfg, n.Post); err != nil {
				return normal(GeneralError)
			}
		}
	}
	return last
}

func (s *Shell) runCase(n *ast.CaseClause) Result {
	subject, err := s.Expand.Literal(n.Word)
	if err != nil {
		return normal(GeneralError)
	}
	for i := 0; i < len(n.Items); i++ {
		item := n.Items[i]
		if !s.caseItemMatches(item, subject) {
			continue
		}
		res := s.runList(item.Body)
		switch item.Term {
		case ast.CaseFallthrough:
			for i+1 < len(n.Items) {
				i++
				res = s.runList(n.Items[i].Body)
				if n.Items[i].Term != ast.CaseFallthrough {
					break
				}
			}
			return res
		case ast.CaseContinueMatch:
			continue
		default:
			return res
		}
	}
	return normal(Success)
}

func (s *Shell) caseItemMatches(item *ast.CaseItem, subject string) bool {
	for _, pat := range item.Patterns {
		lit, err := s.Expand.Literal(pat)
		if err != nil {
			continue
		}
		if globMatch(lit, subject) {
			return true
		}
	}
	return false
}

func (s *Shell) runSelect(n *ast.SelectClause) Result {
	words, err := s.Expand.Fields(n.Words)
	if err != nil {
		return normal(GeneralError)
	}
	ps3, _ := s.Env.GetStr("PS3")
	if ps3 == "" {
		ps3 = "#? "
	}
	last := normal(Success)
	for {
		for i, w := range words {
			fmt.Fprintf(s.Files.Writer(2), "%d) %s\n", i+1, w)
		}
		fmt.Fprint(s.Files.Writer(2), ps3)
		line, rerr := readLine(s.Files.Reader(0))
		if rerr != nil {
			return last
		}
		s.Env.Set("REPLY", env.Variable{Kind: env.Scalar, Str: line}, nil, env.Nearest)
		idx, convErr := parseIndex(line)
		choice := ""
		if convErr == nil && idx >= 1 && idx <= len(words) {
			choice = words[idx-1]
		}
		s.Env.Set(n.Name.Value, env.Variable{Kind: env.Scalar, Str: choice}, nil, env.Nearest)
		last = s.runList(n.Body)
		if res, stop := last.consumeLoopLevel(); stop {
			if last.Flow == ContinueLoop {
				last = res
				continue
			}
			return res
		} else if last.Flow != Normal {
			return res
		}
	}
}

// runCoproc runs `coproc [NAME] command` as a bidirectional-pipe
// background job, per spec.md's coproc addition. The body runs in a
// Subshell (the same isolation a background job or pipeline stage
// gets) with fd 0/1 wired to one end of each pipe; the shell keeps the
// other ends open on two freshly allocated fds, published as NAME's
// (default "COPROC") [0]=read (coproc's stdout) and [1]=write
// (coproc's stdin) elements, matching bash's own COPROC[0]/COPROC[1]
// convention. Grounded on the goroutine-per-stage/os.Pipe shape
// runPipeline already uses above; the body is tracked in the job table
// the same way a plain `cmd &` would be, except the tracked Job has no
// backing *os.Process when the body isn't a single external command
// (an AST subtree, not a PID, is what's actually running) — `wait`/`fg`
// on such a job report "no backing process" rather than blocking,
// documented in DESIGN.md.
func (s *Shell) runCoproc(n *ast.CoprocClause) Result {
	name := "COPROC"
	if n.Name != nil {
		name = n.Name.Value
	}

	inR, inW, err := os.Pipe()
	if err != nil {
		return normal(GeneralError)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		inR.Close()
		inW.Close()
		return normal(GeneralError)
	}
	fds := s.allocFds(2)
	if len(fds) < 2 {
		inR.Close()
		inW.Close()
		outR.Close()
		outW.Close()
		return normal(GeneralError)
	}
	readFd, writeFd := fds[0], fds[1]

	sub := s.Subshell()
	sub.Files.Set(0, &openfiles.File{Reader: inR, Closer: inR})
	sub.Files.Set(1, &openfiles.File{Writer: outW, Closer: outW})

	s.Files.Set(readFd, &openfiles.File{Reader: outR, Closer: outR})
	s.Files.Set(writeFd, &openfiles.File{Writer: inW, Closer: inW})
	s.Env.Set(name, env.Variable{Kind: env.Indexed, List: []string{
		strconv.Itoa(readFd), strconv.Itoa(writeFd),
	}}, nil, env.Nearest)

	job := s.Jobs.Add(0, "coproc "+name, nil)
	done := make(chan Result, 1)
	go func() {
		res := sub.runCommand(n.Body.Cmd)
		inR.Close()
		outW.Close()
		done <- res
	}()
	go func() {
		res := <-done
		s.Jobs.SetState(job.ID, JobDone, res.ExitCode)
	}()

	return normal(Success)
}

// allocFds returns up to n currently-unused fd numbers, scanning
// downward from 63 the way bash itself picks high fds for coproc pipes
// to stay clear of the script's own descriptors.
func (s *Shell) allocFds(n int) []int {
	var out []int
	for fd := 63; fd > 2 && len(out) < n; fd-- {
		if s.Files.Get(fd) == nil {
			out = append(out, fd)
		}
	}
	return out
}

func (s *Shell) withRedirs(redirs []*ast.Redirect, fn func() Result) Result {
	if len(redirs) == 0 {
		return fn()
	}
	saved := s.Files
	s.Files = s.Files.Clone()
	defer func() { s.Files = saved }()
	for _, rd := range redirs {
		if err := s.applyRedirect(rd); err != nil {
			fmt.Fprintf(saved.Writer(2), "%s: %v\n", s.Name, err)
			return normal(GeneralError)
		}
	}
	return fn()
}

func (s *Shell) runSimpleCommand(sc *ast.SimpleCommand) Result {
	return s.withRedirs(sc.Redirs, func() Result {
		if len(sc.Assigns) > 0 && sc.Name == nil {
			for _, a := range sc.Assigns {
				if err := s.applyAssignment(a, env.Nearest); err != nil {
					fmt.Fprintf(s.Files.Writer(2), "%s: %v\n", s.Name, err)
					return normal(GeneralError)
				}
			}
			return normal(Success)
		}

		words := make([]ast.Word, 0, len(sc.Args)+1)
		words = append(words, sc.Name)
		words = append(words, sc.Args...)
		args, err := s.Expand.Fields(words)
		if err != nil {
			fmt.Fprintf(s.Files.Writer(2), "%s: %v\n", s.Name, err)
			return normal(GeneralError)
		}
		if len(args) == 0 {
			return normal(Success)
		}
		name, rest := args[0], args[1:]

		if len(sc.Assigns) > 0 {
			s.Env.PushScope()
			for _, a := range sc.Assigns {
				s.applyAssignment(a, env.Local)
			}
			defer s.Env.PopScope()
		}

		if fn, ok := s.Functions[name]; ok {
			return s.callFunction(fn, rest)
		}
		if b, ok := s.Builtins[name]; ok {
			return b.Run(&ExecContext{
				Shell: s, Name: name, Files: s.Files,
				Stdin: s.Files.Reader(0), Stdout: s.Files.Writer(1), Stderr: s.Files.Writer(2),
			}, rest)
		}
		return s.runExternal(name, rest)
	})
}

// CallFunction invokes a shell function by name with the given
// positional parameters, exactly as a simple command naming that
// function would. Used by the completion engine to drive `complete -F`
// handlers outside of normal command dispatch. ok is false if no
// function is registered under name.
func (s *Shell) CallFunction(name string, args []string) (res Result, ok bool) {
	fn, ok := s.Functions[name]
	if !ok {
		return Result{}, false
	}
	return s.callFunction(fn, args), true
}

func (s *Shell) callFunction(fn *ast.FunctionDef, args []string) Result {
	s.Env.PushScope()
	defer s.Env.PopScope()
	if err := s.Calls.Push(&Frame{Name: fn.Name.Value, Positional: args, IsFunction: true}); err != nil {
		fmt.Fprintf(s.Files.Writer(2), "%s: %v\n", s.Name, err)
		return normal(GeneralError)
	}
	defer s.Calls.Pop()

	res := s.withRedirs(fn.Body.Redirs, func() Result { return s.runCompound(fn.Body.Cmd) })
	if res.Flow == ReturnFromFunctionOrScript {
		res = res.decayToNormal()
	}
	if cmd, ok := s.Traps.Handler(TrapReturn); ok {
		s.runTrapText(cmd)
	}
	return res
}

func (s *Shell) runExternal(name string, args []string) Result {
	path := s.lookupPath(name)
	if path == "" {
		fmt.Fprintf(s.Files.Writer(2), "%s: %s: command not found\n", s.Name, name)
		return normal(NotFound)
	}
	cmd := exec.Command(path, args...)
	cmd.Stdin = s.Files.Reader(0)
	cmd.Stdout = s.Files.Writer(1)
	cmd.Stderr = s.Files.Writer(2)
	cmd.Env = s.Env.ExportedPairs()

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(s.Files.Writer(2), "%s: %s: cannot execute\n", s.Name, name)
		return normal(CannotExecute)
	}
	err := cmd.Wait()
	if err == nil {
		return normal(Success)
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return normal(ExitCode(exitErr.ExitCode() & 0xff))
	}
	return normal(GeneralError)
}

func (s *Shell) lookupPath(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	if p, ok := s.hashCache[name]; ok {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	pathVar, _ := s.Env.GetStr("PATH")
	for _, dir := range strings.Split(pathVar, ":") {
		if dir == "" {
			dir = "."
		}
		full := dir + "/" + name
		if fi, err := os.Stat(full); err == nil && !fi.IsDir() && fi.Mode()&0o111 != 0 {
			s.hashCache[name] = full
			return full
		}
	}
	return ""
}

// HashEntries returns a snapshot of the command-path hash cache, for
// the `hash` built-in.
func (s *Shell) HashEntries() map[string]string {
	out := make(map[string]string, len(s.hashCache))
	for k, v := range s.hashCache {
		out[k] = v
	}
	return out
}

// ClearHash empties the command-path hash cache (`hash -r`).
func (s *Shell) ClearHash() { s.hashCache = make(map[string]string) }

// LookupPath resolves name against PATH the same way command
// execution does, exported for the `type`/`hash` built-ins.
func (s *Shell) LookupPath(name string) string { return s.lookupPath(name) }

// applyAssignment implements spec.md §4.4's three assignment shapes:
// `name=word` (Scalar), `name=(w1 w2 ...)`/`name=([k]=w ...)` (Array,
// Indexed or Associative), and `name[i]=word` (Index, a single-element
// update of an existing or newly-created array).
func (s *Shell) applyAssignment(a *ast.Assignment, scope env.ScopeKind) error {
	switch {
	case a.Array != nil:
		return s.applyArrayAssignment(a, scope)
	case a.Index != nil:
		return s.applyIndexedAssignment(a, scope)
	}
	val, err := s.Expand.Literal(a.Value)
	if err != nil {
		return err
	}
	return s.Env.Set(a.Name.Value, env.Variable{Kind: env.Scalar, Str: val}, nil, scope)
}

// applyArrayAssignment builds the env.Variable from an ArrayLiteral's
// elements. Keyed elements (`[k]=v`) make it Associative; unkeyed
// elements (`a b c`) fill an Indexed array at consecutive slots
// starting from 0, per spec.md §4.4. A literal may not mix the two:
// the first element decides the kind, matching bash's own behavior of
// letting the declared/existing attribute (or, absent one, the first
// subscript form seen) pick Indexed vs Associative.
func (s *Shell) applyArrayAssignment(a *ast.Assignment, scope env.ScopeKind) error {
	assoc := s.arrayLiteralIsAssoc(a)
	v := env.Variable{}
	if assoc {
		v.Kind = env.Associative
		v.Map = make(map[string]string, len(a.Array.Elems))
	} else {
		v.Kind = env.Indexed
	}

	next := 0
	for _, elem := range a.Array.Elems {
		val, err := s.Expand.Literal(elem.Value)
		if err != nil {
			return err
		}
		if assoc {
			key := val
			if len(elem.Key) > 0 {
				k, err := s.Expand.Literal(elem.Key)
				if err != nil {
					return err
				}
				key = k
			}
			v.Map[key] = val
			continue
		}
		idx := next
		if len(elem.Key) > 0 {
			n, err := s.evalSubscript(elem.Key)
			if err != nil {
				return err
			}
			idx = n
		}
		for len(v.List) <= idx {
			v.List = append(v.List, "")
		}
		v.List[idx] = val
		next = idx + 1
	}
	return s.Env.Set(a.Name.Value, v, nil, scope)
}

// arrayLiteralIsAssoc decides Indexed vs Associative for a bare array
// literal: an already-declared AssocArray variable stays Associative,
// otherwise any `[k]=v` element (a non-numeric key is the common case,
// per spec.md §4.4) makes the whole literal Associative.
func (s *Shell) arrayLiteralIsAssoc(a *ast.Assignment) bool {
	if existing, ok := s.Env.Get(a.Name.Value, env.AnyScope); ok && existing.Kind == env.Associative {
		return true
	}
	for _, elem := range a.Array.Elems {
		if len(elem.Key) > 0 {
			return true
		}
	}
	return false
}

// applyIndexedAssignment implements `name[i]=word`: a read-modify-write
// against the existing array (created fresh if unset), per spec.md
// §4.4. An Associative target takes the subscript as a literal key; an
// Indexed (or not-yet-declared) target arithmetically evaluates it.
func (s *Shell) applyIndexedAssignment(a *ast.Assignment, scope env.ScopeKind) error {
	val, err := s.Expand.Literal(a.Value)
	if err != nil {
		return err
	}
	v, found := s.Env.Get(a.Name.Value, env.AnyScope)
	if !found {
		v = env.Variable{Kind: env.Indexed}
	}
	if v.Kind == env.Associative {
		key, err := s.Expand.Literal(a.Index)
		if err != nil {
			return err
		}
		if v.Map == nil {
			v.Map = make(map[string]string)
		}
		v.Map[key] = val
		return s.Env.Set(a.Name.Value, v, nil, scope)
	}
	idx, err := s.evalSubscript(a.Index)
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("%s: bad array subscript", a.Name.Value)
	}
	if v.Kind == env.Unset {
		v.Kind = env.Indexed
	}
	for len(v.List) <= idx {
		v.List = append(v.List, "")
	}
	v.List[idx] = val
	return s.Env.Set(a.Name.Value, v, nil, scope)
}

// evalSubscript expands w (an array subscript's word) and arithmetically
// evaluates the result, per spec.md §4.4's "subscripts undergo
// arithmetic expansion" rule — the same two-step Literal-then-
// ParseArithm-then-Eval pipeline expand/param.go's evalSubscript uses
// for `${arr[i]}`.
func (s *Shell) evalSubscript(w ast.Word) (int, error) {
	src, err := s.Expand.Literal(w)
	if err != nil {
		return 0, err
	}
	expr, err := subscriptParser.ParseArithm(src, 0)
	if err != nil {
		return 0, err
	}
	v, err := arith.Eval(s.arithConfig(), expr)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (s *Shell) applyRedirect(rd *ast.Redirect) error {
	fd := 1
	if rd.Op == token.Less || rd.Op == token.LessAnd || rd.Op == token.LessGreater ||
		rd.Op == token.DLess || rd.Op == token.DLessDash || rd.Op == token.TLess {
		fd = 0
	}
	if rd.Fd != nil {
		n, err := parseIndex(rd.Fd.Value)
		if err != nil {
			return fmt.Errorf("bad redirection fd %q", rd.Fd.Value)
		}
		fd = n
	}

	if rd.Hdoc != nil {
		body := rd.Hdoc.Body
		if rd.Hdoc.Expand {
			if expanded, err := s.Expand.Literal(ast.Word{&ast.Lit{Value: body}}); err == nil {
				body = expanded
			}
		}
		s.Files.SetHeredoc(fd, body)
		return nil
	}

	target, err := s.Expand.Literal(rd.Word)
	if err != nil {
		return err
	}
	switch rd.Op {
	case token.Less:
		return s.Files.OpenRead(fd, target)
	case token.Greater:
		return s.Files.OpenWrite(fd, target, false, s.Opts.Noclobber)
	case token.ClobberOut:
		return s.Files.OpenWrite(fd, target, true, s.Opts.Noclobber)
	case token.DGreater:
		return s.Files.OpenAppend(fd, target)
	case token.LessGreater:
		return s.Files.OpenReadWrite(fd, target)
	case token.LessAnd, token.GreaterAnd:
		if target == "-" {
			s.Files.Close(fd)
			return nil
		}
		src, convErr := parseIndex(target)
		if convErr != nil {
			return fmt.Errorf("bad fd duplication target %q", target)
		}
		return s.Files.Dup2(fd, src)
	case token.AndGreater:
		if err := s.Files.OpenWrite(1, target, false, s.Opts.Noclobber); err != nil {
			return err
		}
		return s.Files.Dup2(2, 1)
	case token.AndDGreater:
		if err := s.Files.OpenAppend(1, target); err != nil {
			return err
		}
		return s.Files.Dup2(2, 1)
	default:
		return fmt.Errorf("unsupported redirection")
	}
}

// ArithConfig exposes the C7 evaluator bridge for built-ins (`let`,
// `((...))`) that need to evaluate arithmetic text outside the normal
// word-expansion path.
func (s *Shell) ArithConfig() *arith.Config { return s.arithConfig() }

func (s *Shell) arithConfig() *arith.Config {
	return &arith.Config{
		Get: func(name string) (string, bool) { return s.Env.GetStr(name) },
		Set: func(name, value string) error {
			return s.Env.Set(name, env.Variable{Kind: env.Scalar, Str: value}, nil, env.Nearest)
		},
		GetIndex: func(name string, idx int64) (string, bool) {
			v, ok := s.Env.Get(name, env.AnyScope)
			if !ok || v.Kind != env.Indexed || idx < 0 || int(idx) >= len(v.List) {
				return "", false
			}
			return v.List[idx], true
		},
		SetIndex: func(name string, idx int64, value string) error {
			v, _ := s.Env.Get(name, env.AnyScope)
			if v.Kind != env.Indexed {
				v = env.Variable{Kind: env.Indexed}
			}
			for int64(len(v.List)) <= idx {
				v.List = append(v.List, "")
			}
			v.List[idx] = value
			return s.Env.Set(name, v, nil, env.Nearest)
		},
		ExpandWord: func(w ast.Word) (string, error) { return s.Expand.Literal(w) },
	}
}

func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
	}
}

func parseIndex(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not numeric: %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
