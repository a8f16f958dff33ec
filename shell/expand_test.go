// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shell

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func strEnviron(pairs ...string) func(string) string {
	return func(name string) string {
		prefix := name + "="
		for _, pair := range pairs {
			if val := strings.TrimPrefix(pair, prefix); val != pair {
				return val
			}
		}
		return ""
	}
}

var expandTests = []struct {
	in   string
	env  func(name string) string
	want string
}{
	{"foo", nil, "foo"},
	{"a-$b-c", nil, "a--c"},
	{"a-$b-c", strEnviron(), "a--c"},
	{"a-$b-c", strEnviron("b=b_val"), "a-b_val-c"},
	{"${x:-fallback}", strEnviron(), "fallback"},
	{"${x:-fallback}", strEnviron("x=set"), "set"},
	{"Math is fun! $((12 * 34))", nil, "Math is fun! 408"},
}

func TestExpand(t *testing.T) {
	for i := range expandTests {
		tc := expandTests[i]
		t.Run(fmt.Sprintf("%02d", i), func(t *testing.T) {
			got, err := Expand(tc.in, tc.env)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExpandRejectsCommandSubstitution(t *testing.T) {
	if _, err := Expand("$(echo hi)", nil); err == nil {
		t.Fatal("expected an error for command substitution")
	}
}

var fieldsTests = []struct {
	in   string
	env  func(name string) string
	want []string
}{
	{"foo", nil, []string{"foo"}},
	{"foo bar", nil, []string{"foo", "bar"}},
	{`"many quoted" ' strings '`, nil, []string{"many quoted", " strings "}},
	{"$x", strEnviron("x=foo bar"), []string{"foo", "bar"}},
	{`"$x"`, strEnviron("x=foo bar"), []string{"foo bar"}},
}

func TestFields(t *testing.T) {
	for i := range fieldsTests {
		tc := fieldsTests[i]
		t.Run(fmt.Sprintf("%02d", i), func(t *testing.T) {
			got, err := Fields(tc.in, tc.env)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("want %#v, got %#v", tc.want, got)
			}
		})
	}
}
