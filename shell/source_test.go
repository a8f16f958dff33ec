// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shell

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/brushsh/brush/lexer"
	"github.com/brushsh/brush/parser"
)

var mapTests = []struct {
	in   string
	want map[string]string
}{
	{"a=x; b=y", map[string]string{"a": "x", "b": "y"}},
	{"a=x; a=y", map[string]string{"a": "y"}},
}

func TestSourceNode(t *testing.T) {
	for i, tc := range mapTests {
		t.Run(fmt.Sprintf("%02d", i), func(t *testing.T) {
			p := parser.NewParser(lexer.Options{})
			prog, err := p.Parse([]byte(tc.in), "")
			if err != nil {
				t.Fatal(err)
			}
			got, err := SourceNode(prog)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(tc.want, got) {
				t.Fatalf("want %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestSourceNodeExitStatus(t *testing.T) {
	p := parser.NewParser(lexer.Options{})
	prog, err := p.Parse([]byte("a=b; exit 1"), "")
	if err != nil {
		t.Fatal(err)
	}
	_, err = SourceNode(prog)
	if err == nil {
		t.Fatal("wanted a non-nil error")
	}
	if !strings.Contains(err.Error(), "1") {
		t.Fatalf("error %q does not mention the exit status", err)
	}
}

func TestSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/f.sh"
	src := "foo=abc\nfoo=${foo}012\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	vars, err := SourceFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if vars["foo"] != "abc012" {
		t.Fatalf("got foo=%q", vars["foo"])
	}
}
