//go:build !windows

package interp

import (
	"os"
	"testing"

	"github.com/creack/pty"

	"github.com/brushsh/brush/ast"
	"github.com/brushsh/brush/openfiles"
)

// Grounded on the teacher's interp/terminal_test.go (TestRunnerTerminalStdIO):
// a pseudo-terminal slave reports true for `[[ -t fd ]]` where a pipe or a
// nil reader does not, exercising the fd-is-a-tty check a real interactive
// shell depends on to decide whether to show a prompt at all.
func TestFdIsTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable in this environment: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	s := New("brush", nil)
	s.Files.Set(0, &openfiles.File{Reader: tty})

	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer pr.Close()
	defer pw.Close()
	s.Files.Set(1, &openfiles.File{Reader: pr})

	if !s.FdIsTerminal(0) {
		t.Error("expected fd 0 bound to a pty slave to report as a terminal")
	}
	if s.FdIsTerminal(1) {
		t.Error("expected fd 1 bound to a pipe to not report as a terminal")
	}
	if s.FdIsTerminal(9) {
		t.Error("expected an unbound fd to not report as a terminal")
	}
}

// TestUnaryTestDashT drives the same check through `[[ -t fd ]]`'s actual
// evalBoolExpr path, using a pty slave as fd 3.
func TestUnaryTestDashT(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable in this environment: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	s := New("brush", nil)
	s.Expand = literalExpander{}
	s.Files.Set(3, &openfiles.File{Reader: tty})

	test := &ast.UnaryTest{Op: "-t", X: &ast.WordTest{W: lit("3")}}
	ok, err := s.evalBoolExpr(test)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected [[ -t 3 ]] to be true for a pty-bound fd")
	}

	notATerminal := &ast.UnaryTest{Op: "-t", X: &ast.WordTest{W: lit("99")}}
	ok, err = s.evalBoolExpr(notATerminal)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected [[ -t 99 ]] to be false for an unbound fd")
	}
}
