package lexer

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/brushsh/brush/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	tok := New([]byte(src), Options{})
	var out []token.Token
	for {
		tk, err := tok.Next()
		if err != nil {
			t.Fatalf("Next(%q) error: %v", src, err)
		}
		out = append(out, tk)
		if tk.Kind == token.EOF {
			return out
		}
	}
}

func TestNextSimpleCommand(t *testing.T) {
	c := qt.New(t)
	toks := scanAll(t, "echo hello world")
	c.Assert(len(toks), qt.Equals, 4) // echo, hello, world, EOF
	for i, want := range []string{"echo", "hello", "world"} {
		c.Assert(toks[i].Kind, qt.Equals, token.Word)
		c.Assert(toks[i].Text, qt.Equals, want)
	}
	c.Assert(toks[3].Kind, qt.Equals, token.EOF)
}

func TestNextOperators(t *testing.T) {
	c := qt.New(t)
	toks := scanAll(t, "a && b || c | d")
	var ops []token.Op
	for _, tk := range toks {
		if tk.Kind == token.Operator {
			ops = append(ops, tk.Op)
		}
	}
	c.Assert(ops, qt.DeepEquals, []token.Op{token.AndAnd, token.OrOr, token.Pipe})
}

func TestNextRedirectionWithFd(t *testing.T) {
	c := qt.New(t)
	toks := scanAll(t, "cmd 2>&1")
	var redir token.Token
	for _, tk := range toks {
		if tk.Kind == token.Operator && tk.Op.IsRedirection() {
			redir = tk
		}
	}
	c.Assert(redir.Op, qt.Equals, token.GreaterAnd)
	c.Assert(redir.Text, qt.Equals, "2>&")
}

func TestNextQuotedWordKeepsWhitespace(t *testing.T) {
	c := qt.New(t)
	toks := scanAll(t, `echo "hello world"`)
	c.Assert(toks[1].Text, qt.Equals, `"hello world"`)
}

func TestNextUnterminatedQuoteIsIncomplete(t *testing.T) {
	tok := New([]byte(`echo "unterminated`), Options{})
	tok.Next() // echo
	_, err := tok.Next()
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("got err %v, want ErrIncomplete", err)
	}
}

func TestNextCommentSkipped(t *testing.T) {
	c := qt.New(t)
	toks := scanAll(t, "echo hi # a comment\necho bye")
	var words []string
	for _, tk := range toks {
		if tk.Kind == token.Word {
			words = append(words, tk.Text)
		}
	}
	c.Assert(words, qt.DeepEquals, []string{"echo", "hi", "echo", "bye"})
}

func TestNextCommandSubstitutionIsOneWord(t *testing.T) {
	c := qt.New(t)
	toks := scanAll(t, "echo $(echo nested)")
	c.Assert(toks[1].Text, qt.Equals, "$(echo nested)")
}
