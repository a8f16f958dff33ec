package env

import "testing"

func TestSetGet(t *testing.T) {
	e := New()
	if err := e.Set("FOO", Variable{Kind: Scalar, Str: "bar"}, nil, Nearest); err != nil {
		t.Fatal(err)
	}
	v, ok := e.Get("FOO", AnyScope)
	if !ok || v.ScalarStr() != "bar" {
		t.Fatalf("got %+v, %v", v, ok)
	}
}

func TestReadOnly(t *testing.T) {
	e := New()
	e.Declare("FOO", ReadOnly, Unset, Nearest)
	if err := e.Set("FOO", Variable{Kind: Scalar, Str: "bar"}, nil, Nearest); err == nil {
		t.Fatal("expected readonly error")
	}
	if err := e.Set("FOO", Variable{Kind: Scalar, Str: "baz"}, nil, Nearest); err == nil {
		t.Fatal("expected readonly error")
	}
}

func TestScopes(t *testing.T) {
	e := New()
	if err := e.Set("X", Variable{Kind: Scalar, Str: "global"}, nil, Nearest); err != nil {
		t.Fatal(err)
	}
	e.PushScope()
	if err := e.Set("X", Variable{Kind: Scalar, Str: "local"}, nil, Local); err != nil {
		t.Fatal(err)
	}
	v, _ := e.Get("X", AnyScope)
	if v.ScalarStr() != "local" {
		t.Fatalf("got %q, want local", v.ScalarStr())
	}
	e.PopScope()
	v, _ = e.Get("X", AnyScope)
	if v.ScalarStr() != "global" {
		t.Fatalf("got %q, want global", v.ScalarStr())
	}
}

func TestUnset(t *testing.T) {
	e := New()
	e.Set("X", Variable{Kind: Scalar, Str: "v"}, nil, Nearest)
	if err := e.Unset("X"); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Get("X", AnyScope); ok {
		t.Fatal("expected unset")
	}
}

func TestNameRef(t *testing.T) {
	e := New()
	e.Set("TARGET", Variable{Kind: Scalar, Str: "value"}, nil, Nearest)
	e.Set("ref", Variable{Kind: Scalar, Str: "TARGET", Attrs: NameRef}, nil, Nearest)
	v, ok := e.Get("ref", AnyScope)
	if !ok || v.ScalarStr() != "value" {
		t.Fatalf("got %+v, %v", v, ok)
	}
	if err := e.Set("ref", Variable{Kind: Scalar, Str: "updated"}, nil, Nearest); err != nil {
		t.Fatal(err)
	}
	tv, _ := e.Get("TARGET", AnyScope)
	if tv.ScalarStr() != "updated" {
		t.Fatalf("nameref assignment did not follow through: got %q", tv.ScalarStr())
	}
}

func TestExportedPairs(t *testing.T) {
	e := New()
	e.Set("A", Variable{Kind: Scalar, Str: "1", Attrs: Exported}, nil, Nearest)
	e.Set("B", Variable{Kind: Scalar, Str: "2"}, nil, Nearest)
	pairs := e.ExportedPairs()
	if len(pairs) != 1 || pairs[0] != "A=1" {
		t.Fatalf("got %v", pairs)
	}
}
