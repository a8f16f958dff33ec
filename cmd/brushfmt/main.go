// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// brushfmt formats shell programs.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	maybeio "github.com/google/renameio/v2/maybe"
	diffpkg "github.com/rogpeppe/go-internal/diff"
	"golang.org/x/term"

	"github.com/brushsh/brush/fileutil"
	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/parser"
	"github.com/brushsh/brush/printer"
)

var (
	list        = flag.Bool("l", false, "list files whose formatting differs")
	write       = flag.Bool("w", false, "write result to file instead of stdout")
	diffFlag    = flag.Bool("d", false, "error with a diff when the formatting differs")
	applyIgnore = flag.Bool("apply-ignore", false, "always apply EditorConfig ignore rules")
	indent      = flag.Uint("i", 0, "0 for tabs (default), >0 for number of spaces")
	binNext     = flag.Bool("bn", false, "binary ops like && and | may start a line")
	useEC       = true

	color bool
)

func main() { os.Exit(main1()) }

// main1 holds the CLI's real logic and returns its exit status instead of
// calling os.Exit directly, so main_test.go's testscript.RunMain can invoke
// it as a subprocess entry point and observe the status without the test
// binary itself exiting.
func main1() int {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: brushfmt [flags] [path ...]

brushfmt formats shell programs. If the only argument is a dash ('-') or no
arguments are given, standard input will be used. If a given path is a
directory, all shell scripts found under that directory will be used.

  -l  list files whose formatting differs from brushfmt
  -w  write result to file instead of stdout
  -d  error with a diff when the formatting differs
  --apply-ignore  always apply EditorConfig ignore rules

  -i  uint  0 for tabs (default), >0 for number of spaces
  -bn       binary ops like && and | may start a line

Formatting options can also be read from EditorConfig files.
`)
	}
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i", "bn":
			useEC = false
		}
	})

	if os.Getenv("FORCE_COLOR") != "" {
		color = true
	} else if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
	} else if term.IsTerminal(int(os.Stdout.Fd())) {
		color = true
	}

	if flag.NArg() == 0 || (flag.NArg() == 1 && flag.Arg(0) == "-") {
		if err := formatStdin(); err != nil {
			if err != errChangedWithDiff {
				fmt.Fprintln(os.Stderr, err)
			}
			return 1
		}
		return 0
	}

	status := 0
	for _, path := range flag.Args() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			if err := formatPath(path, false); err != nil {
				if err != errChangedWithDiff {
					fmt.Fprintln(os.Stderr, err)
				}
				status = 1
			}
			continue
		}
		if err := filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			switch err := walkPath(p, entry); err {
			case nil:
			case filepath.SkipDir:
				return err
			case errChangedWithDiff:
				status = 1
			default:
				fmt.Fprintln(os.Stderr, err)
				status = 1
			}
			return nil
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
		}
	}
	return status
}

var errChangedWithDiff = fmt.Errorf("")

func formatStdin() error {
	if *write {
		return fmt.Errorf("-w cannot be used on standard input")
	}
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	return formatBytes(src, "<standard input>")
}

func walkPath(path string, entry fs.DirEntry) error {
	if entry.IsDir() && entry.Name() != "." && entry.Name()[0] == '.' {
		return filepath.SkipDir
	}
	conf := fileutil.CouldBeScript2(entry)
	if conf == fileutil.ConfNotScript {
		return nil
	}
	return formatPath(path, conf == fileutil.ConfIfShebang)
}

func formatPath(path string, checkShebang bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if checkShebang && !fileutil.HasShebang(src) {
		return nil
	}
	return formatBytes(src, path)
}

func printConfig(path string) printer.Config {
	if !useEC {
		return printer.Config{Spaces: int(*indent), BinaryNextLine: *binNext}
	}
	c, err := printer.ConfigForPath(path)
	if err != nil {
		return printer.Config{}
	}
	return c
}

func formatBytes(src []byte, path string) error {
	p := parser.NewParser(lexer.Options{KeepComments: true})
	prog, err := p.Parse(src, path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := printConfig(path).Fprint(&buf, prog); err != nil {
		return err
	}
	res := buf.Bytes()

	if !bytes.Equal(src, res) {
		if *list {
			fmt.Println(path)
		}
		if *write {
			info, err := os.Lstat(path)
			if err != nil {
				return err
			}
			if err := maybeio.WriteFile(path, res, info.Mode().Perm()); err != nil {
				return err
			}
		}
		if *diffFlag {
			diffBytes := diffpkg.Diff(path+".orig", src, path, res)
			if !color {
				os.Stdout.Write(diffBytes)
				return errChangedWithDiff
			}
			current := terminalBold
			os.Stdout.WriteString(current)
			for i, line := range bytes.SplitAfter(diffBytes, []byte("\n")) {
				last := current
				switch {
				case i < 3:
				case bytes.HasPrefix(line, []byte("@@")):
					current = terminalCyan
				case bytes.HasPrefix(line, []byte("-")):
					current = terminalRed
				case bytes.HasPrefix(line, []byte("+")):
					current = terminalGreen
				default:
					current = terminalReset
				}
				if current != last {
					os.Stdout.WriteString(current)
				}
				os.Stdout.Write(line)
			}
			return errChangedWithDiff
		}
	}
	if !*list && !*write && !*diffFlag {
		os.Stdout.Write(res)
	}
	return nil
}

const (
	terminalGreen = "[32m"
	terminalRed   = "[31m"
	terminalCyan  = "[36m"
	terminalReset = "[0m"
	terminalBold  = "[1m"
)
