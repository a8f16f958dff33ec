package expand

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestGlobFieldLiteralPassthroughWhenNoMeta(t *testing.T) {
	c := newTestConfig(t)
	got, err := c.globField(field{{s: "plain/path.txt", quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "plain/path.txt" {
		t.Fatalf("got %#v", got)
	}
}

func TestGlobFieldQuotedMetacharsAreLiteral(t *testing.T) {
	c := newTestConfig(t)
	// A quoted "*" is not a glob metacharacter, so this path (almost
	// certainly absent) should pass through unmatched rather than
	// expanding to every file in the directory.
	got, err := c.globField(field{{s: "*", quoted: true}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "*" {
		t.Fatalf("quoted glob metachar was expanded: %#v", got)
	}
}

func TestGlobFieldMatchesDirectoryEntries(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.go"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c := newTestConfig(t)
	pat := filepath.Join(dir, "*.txt")
	got, err := c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestGlobFieldDotglob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{".hidden.txt", "visible.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c := newTestConfig(t)
	pat := filepath.Join(dir, "*.txt")

	got, err := c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != filepath.Join(dir, "visible.txt") {
		t.Fatalf("without dotglob, got %#v", got)
	}

	c.Shell.Opts.Shopt["dotglob"] = true
	got, err = c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	want := []string{filepath.Join(dir, ".hidden.txt"), filepath.Join(dir, "visible.txt")}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("with dotglob, got %#v want %#v", got, want)
	}
}

func TestGlobFieldNocaseglob(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "FILE.TXT"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	c := newTestConfig(t)
	pat := filepath.Join(dir, "file.*")

	got, err := c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != pat {
		t.Fatalf("without nocaseglob, expected no match and a literal passthrough, got %#v", got)
	}

	c.Shell.Opts.Shopt["nocaseglob"] = true
	got, err = c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != filepath.Join(dir, "FILE.TXT") {
		t.Fatalf("with nocaseglob, got %#v", got)
	}
}

func TestGlobFieldGlobstar(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "nested.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	c := newTestConfig(t)
	pat := filepath.Join(dir, "**", "*.txt")

	got, err := c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != pat {
		t.Fatalf("without globstar, expected a literal passthrough, got %#v", got)
	}

	c.Shell.Opts.Shopt["globstar"] = true
	got, err = c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != filepath.Join(dir, "sub", "nested.txt") {
		t.Fatalf("with globstar, got %#v", got)
	}
}

func TestGlobFieldNullglob(t *testing.T) {
	dir := t.TempDir()
	c := newTestConfig(t)
	pat := filepath.Join(dir, "*.missing")

	got, err := c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != pat {
		t.Fatalf("without nullglob, expected a literal passthrough, got %#v", got)
	}

	c.Shell.Opts.Shopt["nullglob"] = true
	got, err = c.globField(field{{s: pat, quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("with nullglob, expected the field to be removed, got %#v", got)
	}

	// A word with no glob metacharacters at all is never subject to
	// nullglob, even when it happens to match nothing on disk.
	got, err = c.globField(field{{s: filepath.Join(dir, "plain.txt"), quoted: false}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != filepath.Join(dir, "plain.txt") {
		t.Fatalf("a literal (non-glob) word must survive nullglob, got %#v", got)
	}
}

func TestTrimGlobSuffixLargestVsSmallest(t *testing.T) {
	if got := trimGlobSuffix(".*", "file.tar.gz", true); got != "file" {
		t.Fatalf("largest: got %q", got)
	}
	if got := trimGlobSuffix(".*", "file.tar.gz", false); got != "file.tar" {
		t.Fatalf("smallest: got %q", got)
	}
}

func TestReplaceAllGlob(t *testing.T) {
	got := replaceAllGlob("o", "foo bar foo", "0")
	if got != "f00 bar f00" {
		t.Fatalf("got %q", got)
	}
}

func TestReplaceFirstGlob(t *testing.T) {
	got := replaceFirstGlob("o", "foo bar foo", "0")
	if got != "f0o bar foo" {
		t.Fatalf("got %q", got)
	}
}
