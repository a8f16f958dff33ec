package completion

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/brushsh/brush/env"
	"github.com/brushsh/brush/interp"
)

func newTestShell(t *testing.T) *interp.Shell {
	t.Helper()
	return interp.New("brush", nil)
}

func TestTokenizeForCompletionRoles(t *testing.T) {
	cases := []struct {
		line string
		pos  int
		role Role
		cmd  string
		text string
	}{
		{"", 0, RoleCommand, "", ""},
		{"ech", 3, RoleCommand, "", "ech"},
		{"echo $HO", 8, RoleVariable, "", "$HO"},
		{"echo foo ", 9, RoleArgument, "echo", ""},
		{"ls -l /tm", 9, RoleArgument, "ls", "/tm"},
		{"echo a; cd /et", 14, RoleArgument, "cd", "/et"},
		{"echo a | gre", 12, RoleCommand, "", "gre"},
	}
	for _, c := range cases {
		w := tokenizeForCompletion(c.line, c.pos)
		if w.Role != c.role || w.Command != c.cmd || w.Text != c.text {
			t.Errorf("tokenizeForCompletion(%q, %d) = %+v, want role=%v cmd=%q text=%q",
				c.line, c.pos, w, c.role, c.cmd, c.text)
		}
	}
}

func TestDetectQuoteContext(t *testing.T) {
	cases := []struct {
		line string
		pos  int
		want byte
	}{
		{`echo hi`, 7, 0},
		{`echo 'hi`, 8, '\''},
		{`echo "hi`, 8, '"'},
		{`echo 'hi' `, 10, 0},
		{`echo \'`, 7, 0},
	}
	for _, c := range cases {
		if got := detectQuoteContext(c.line, c.pos); got != c.want {
			t.Errorf("detectQuoteContext(%q, %d) = %q, want %q", c.line, c.pos, got, c.want)
		}
	}
}

func TestFilterCandidatesPrefixAndFignore(t *testing.T) {
	cands := []Candidate{{Value: "foo.o"}, {Value: "foo.c"}, {Value: "foobar"}, {Value: "bar"}}
	got := filterCandidates(cands, "foo", "*.o", false)
	var values []string
	for _, c := range got {
		values = append(values, c.Value)
	}
	sort.Strings(values)
	want := []string{"foo.c", "foobar"}
	if len(values) != len(want) || values[0] != want[0] || values[1] != want[1] {
		t.Fatalf("got %#v want %#v", values, want)
	}
}

func TestFilterCandidatesNocasematch(t *testing.T) {
	cands := []Candidate{{Value: "FooBar"}, {Value: "baz"}}
	got := filterCandidates(cands, "foo", "", true)
	if len(got) != 1 || got[0].Value != "FooBar" {
		t.Fatalf("got %#v", got)
	}
}

func TestEscapeForInsertionQuoteModes(t *testing.T) {
	cases := []struct {
		cand string
		opts Options
		want string
	}{
		{"hello", Options{TreatAsFilenames: true}, "hello"},
		{"a b", Options{TreatAsFilenames: true}, `a\ b`},
		{"it's", Options{TreatAsFilenames: true, QuoteChar: '\''}, `it'\''s`},
		{`a"b`, Options{TreatAsFilenames: true, QuoteChar: '"'}, `a\"b`},
		{"a b", Options{}, "a b"},
	}
	for _, c := range cases {
		if got := EscapeForInsertion(c.cand, c.opts); got != c.want {
			t.Errorf("EscapeForInsertion(%q, %+v) = %q, want %q", c.cand, c.opts, got, c.want)
		}
	}
}

func TestCompleteFilename(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alpha.txt", "alt.txt", "beta.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	sh := newTestShell(t)
	rs := NewRuleSet()
	ctx := &Context{Shell: sh, Rules: rs}

	line := "cat " + filepath.Join(dir, "al")
	res := ctx.Complete(line, len(line))

	var bases []string
	for _, c := range res.Candidates {
		bases = append(bases, filepath.Base(c))
	}
	sort.Strings(bases)
	want := []string{"alpha.txt ", "alt.txt "}
	if len(bases) != 2 || bases[0] != want[0] || bases[1] != want[1] {
		t.Fatalf("got %#v want %#v", bases, want)
	}
	if res.InsertionIndex != len("cat ") {
		t.Fatalf("InsertionIndex = %d", res.InsertionIndex)
	}
}

func TestCompleteWordlistRule(t *testing.T) {
	sh := newTestShell(t)
	rs := NewRuleSet()
	rs.Register("mytool", Rule{Wordlist: []string{"start", "stop", "status"}})
	ctx := &Context{Shell: sh, Rules: rs}

	res := ctx.Complete("mytool st", 9)
	sort.Strings(res.Candidates)
	want := []string{"start ", "status ", "stop "}
	if len(res.Candidates) != len(want) {
		t.Fatalf("got %#v want %#v", res.Candidates, want)
	}
	for i := range want {
		if res.Candidates[i] != want[i] {
			t.Fatalf("got %#v want %#v", res.Candidates, want)
		}
	}
}

func TestCompleteVariable(t *testing.T) {
	sh := newTestShell(t)
	sh.Env.Set("HOSTNAME", env.Variable{Kind: env.Scalar, Str: "box"}, nil, env.Nearest)
	sh.Env.Set("HOME", env.Variable{Kind: env.Scalar, Str: "/home/u"}, nil, env.Nearest)
	rs := NewRuleSet()
	ctx := &Context{Shell: sh, Rules: rs}

	res := ctx.Complete("echo $HO", 8)
	sort.Strings(res.Candidates)
	if len(res.Candidates) != 2 || res.Candidates[0] != "$HOME " || res.Candidates[1] != "$HOSTNAME " {
		t.Fatalf("got %#v", res.Candidates)
	}
}

func TestCompleteEmptyLineRule(t *testing.T) {
	sh := newTestShell(t)
	rs := NewRuleSet()
	rs.EmptyLine = &Rule{Wordlist: []string{"help", "status"}}
	ctx := &Context{Shell: sh, Rules: rs}

	res := ctx.Complete("", 0)
	sort.Strings(res.Candidates)
	want := []string{"help ", "status "}
	if len(res.Candidates) != len(want) {
		t.Fatalf("got %#v want %#v", res.Candidates, want)
	}
	for i := range want {
		if res.Candidates[i] != want[i] {
			t.Fatalf("got %#v want %#v", res.Candidates, want)
		}
	}

	// A whitespace-only line should also trigger the empty-line rule.
	res = ctx.Complete("   ", 3)
	if len(res.Candidates) != len(want) {
		t.Fatalf("whitespace line: got %#v want %#v", res.Candidates, want)
	}
}
