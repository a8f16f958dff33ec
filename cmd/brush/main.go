// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// brush is a POSIX-compatible command shell with bash extensions.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/brushsh/brush/builtin"
	"github.com/brushsh/brush/expand"
	"github.com/brushsh/brush/fileutil"
	"github.com/brushsh/brush/interp"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/parser"
	"github.com/brushsh/brush/prompt"
)

var (
	command     = flag.String("c", "", "command to be executed")
	noProfile   = flag.Bool("norc", false, "do not read the startup file")
	interactive = flag.Bool("i", false, "force interactive mode")
)

func main() {
	flag.Parse()
	os.Exit(int(runAll()))
}

func newShell() *interp.Shell {
	sh := interp.New("brush", flag.Args())
	sh.Expand = expand.New(sh)
	builtin.Register(sh)
	sh.ParseAndRun = func(s *interp.Shell, src string) interp.Result {
		p := parser.NewParser(lexer.Options{})
		p.SetAliasLookup(builtin.Lookup)
		prog, err := p.Parse([]byte(src), s.Name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return interp.Result{Flow: interp.Normal, ExitCode: interp.GeneralError}
		}
		return s.Run(prog)
	}

	sigs := make(chan os.Signal, 8)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range sigs {
			switch sig {
			case os.Interrupt:
				sh.Traps.Raise("INT")
			case syscall.SIGTERM:
				sh.Traps.Raise("TERM")
			}
		}
	}()

	return sh
}

func runAll() interp.ExitCode {
	sh := newShell()

	if !*noProfile {
		runRCFile(sh)
	}

	if *command != "" {
		return runSource(sh, *command, "")
	}
	if flag.NArg() == 0 {
		if *interactive || term.IsTerminal(int(os.Stdin.Fd())) {
			return runInteractive(sh, os.Stdin, os.Stdout)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return interp.GeneralError
		}
		return runSource(sh, string(data), "")
	}

	path := flag.Arg(0)
	sh.Calls.SetPositional(flag.Args()[1:])
	if info, err := os.Stat(path); err == nil && fileutil.CouldBeScript(info) == fileutil.ConfNotScript {
		fmt.Fprintf(os.Stderr, "brush: warning: %s does not look like a shell script\n", path)
	}
	return runPath(sh, path)
}

// runRCFile loads ~/.brushrc if it exists.
func runRCFile(sh *interp.Shell) {
	home, _ := sh.Env.GetStr("HOME")
	if home == "" {
		return
	}
	path := home + "/.brushrc"
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	runSource(sh, string(data), path)
}

func runSource(sh *interp.Shell, src, name string) interp.ExitCode {
	p := parser.NewParser(lexer.Options{})
	p.SetAliasLookup(builtin.Lookup)
	prog, err := p.Parse([]byte(src), name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return interp.GeneralError
	}
	res := sh.Run(prog)
	return res.ExitCode
}

func runPath(sh *interp.Shell, path string) interp.ExitCode {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return interp.GeneralError
	}
	return runSource(sh, string(data), path)
}

func runInteractive(sh *interp.Shell, stdin io.Reader, stdout io.Writer) interp.ExitCode {
	rd := bufio.NewReader(stdin)
	var last interp.ExitCode
	for {
		fmt.Fprint(stdout, renderPrompt(sh))
		line, err := rd.ReadString('\n')
		if line == "" && err != nil {
			break
		}
		trimmed := strings.TrimRight(line, "\n")
		if trimmed == "" {
			if err != nil {
				break
			}
			continue
		}
		builtin.Append(trimmed)
		last = runSource(sh, line, "")
		sh.LastExit = last
		if err != nil {
			break
		}
	}
	fmt.Fprintln(stdout)
	return last
}

// renderPrompt renders PS1 via the C2 prompt package, falling back to
// a bare "$ " when PS1 is unset, the same default bash uses for a
// non-interactive-login shell's interactive prompt.
func renderPrompt(sh *interp.Shell) string {
	ps1, ok := sh.Env.GetStr("PS1")
	if !ok || ps1 == "" {
		return "$ "
	}
	return prompt.Format(promptContext(sh), prompt.Parse(ps1))
}

func promptContext(sh *interp.Shell) prompt.Context {
	wd, _ := os.Getwd()
	home, _ := sh.Env.GetStr("HOME")
	hostname, _ := os.Hostname()

	username := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	return prompt.Context{
		WorkingDir:    wd,
		Home:          home,
		User:          username,
		Hostname:      hostname,
		ShellName:     sh.Name,
		IsRoot:        os.Geteuid() == 0,
		JobCount:      len(sh.Jobs.All()),
		HistoryNumber: builtin.HistoryCount(),
		CommandNumber: builtin.HistoryCount(),
		Now:           time.Now(),
	}
}
