package openfiles

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	tbl := New(nil, &bytes.Buffer{}, &bytes.Buffer{})
	if err := tbl.OpenWrite(1, path, true, false); err != nil {
		t.Fatal(err)
	}
	tbl.Writer(1).Write([]byte("hello\n"))
	tbl.CloseAll()

	if err := tbl.OpenAppend(1, path); err != nil {
		t.Fatal(err)
	}
	tbl.Writer(1).Write([]byte("world\n"))
	tbl.CloseAll()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello\nworld\n" {
		t.Fatalf("got %q", got)
	}
}

func TestNoclobber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	os.WriteFile(path, []byte("x"), 0o644)

	tbl := New(nil, &bytes.Buffer{}, &bytes.Buffer{})
	if err := tbl.OpenWrite(1, path, false, true); err == nil {
		t.Fatal("expected noclobber error")
	}
	if err := tbl.OpenWrite(1, path, true, true); err != nil {
		t.Fatalf("clobber=true should override noclobber: %v", err)
	}
}

func TestDup2AndClose(t *testing.T) {
	var out bytes.Buffer
	tbl := New(nil, &out, &bytes.Buffer{})
	if err := tbl.Dup2(2, 1); err != nil {
		t.Fatal(err)
	}
	tbl.Writer(2).Write([]byte("via dup\n"))
	if out.String() != "via dup\n" {
		t.Fatalf("got %q", out.String())
	}
	tbl.Close(2)
	if tbl.Get(2) != nil {
		t.Fatal("expected fd 2 closed")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := New(nil, &bytes.Buffer{}, &bytes.Buffer{})
	clone := tbl.Clone()
	clone.Close(1)
	if tbl.Get(1) == nil {
		t.Fatal("closing a clone's fd must not affect the original")
	}
}

func TestHeredoc(t *testing.T) {
	tbl := New(nil, &bytes.Buffer{}, &bytes.Buffer{})
	tbl.SetHeredoc(0, "line one\nline two\n")
	buf := make([]byte, 64)
	n, _ := tbl.Reader(0).Read(buf)
	if string(buf[:n]) != "line one\nline two\n" {
		t.Fatalf("got %q", buf[:n])
	}
}
