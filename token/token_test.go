package token

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// Grounded on the teacher's own use of frankban/quicktest for table-driven
// assertions (syntax/quote_test.go), adopted here for the same
// small-expected-value style of check.
func TestOpString(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		op   Op
		want string
	}{
		{Semicolon, ";"},
		{AndAnd, "&&"},
		{OrOr, "||"},
		{DLess, "<<"},
		{DLessDash, "<<-"},
		{Case, "case"},
		{DLbrack, "[["},
		{illegalOp, "ILLEGAL"},
	}
	for _, test := range tests {
		c.Assert(test.op.String(), qt.Equals, test.want)
	}
}

func TestKindString(t *testing.T) {
	c := qt.New(t)
	c.Assert(Word.String(), qt.Equals, "Word")
	c.Assert(Operator.String(), qt.Equals, "Operator")
	c.Assert(Comment.String(), qt.Equals, "Comment")
	c.Assert(EOF.String(), qt.Equals, "EOF")
	c.Assert(Kind(99).String(), qt.Equals, "?")
}

func TestIsRedirection(t *testing.T) {
	c := qt.New(t)
	redirs := []Op{Less, Greater, DGreater, DLess, DLessDash, TLess,
		LessAnd, GreaterAnd, LessGreater, ClobberOut, AndGreater, AndDGreater}
	for _, op := range redirs {
		c.Assert(op.IsRedirection(), qt.IsTrue, qt.Commentf("%v should be a redirection op", op))
	}
	nonRedirs := []Op{Semicolon, Pipe, AndAnd, If, Case}
	for _, op := range nonRedirs {
		c.Assert(op.IsRedirection(), qt.IsFalse, qt.Commentf("%v should not be a redirection op", op))
	}
}

func TestLookupReserved(t *testing.T) {
	c := qt.New(t)
	op, ok := LookupReserved("while")
	c.Assert(ok, qt.IsTrue)
	c.Assert(op, qt.Equals, While)

	_, ok = LookupReserved("notareservedword")
	c.Assert(ok, qt.IsFalse)
}
