package builtin

import (
	"strings"
	"testing"

	"github.com/brushsh/brush/completion"
)

func resetRules(t *testing.T) {
	t.Helper()
	rules = completion.NewRuleSet()
}

func TestCompleteRegistersWordlistRule(t *testing.T) {
	resetRules(t)
	ctx, _, _ := newTestCtx(t)

	if r := completeCmd(ctx, []string{"-W", "start stop status", "mytool"}); r.ExitCode != 0 {
		t.Fatalf("complete -W failed: %v", r.ExitCode)
	}

	rule, ok := rules.Lookup("mytool")
	if !ok {
		t.Fatal("expected a rule registered for mytool")
	}
	if len(rule.Wordlist) != 3 {
		t.Fatalf("got wordlist %#v", rule.Wordlist)
	}
}

func TestCompleteDashRRemovesRule(t *testing.T) {
	resetRules(t)
	ctx, _, _ := newTestCtx(t)
	completeCmd(ctx, []string{"-W", "a b", "mytool"})
	completeCmd(ctx, []string{"-r", "mytool"})
	if _, ok := rules.Lookup("mytool"); ok {
		t.Fatal("expected rule to be removed")
	}
}

func TestCompleteDashERegistersEmptyLineRule(t *testing.T) {
	resetRules(t)
	ctx, _, _ := newTestCtx(t)

	if r := completeCmd(ctx, []string{"-W", "help status", "-E"}); r.ExitCode != 0 {
		t.Fatalf("complete -E failed: %v", r.ExitCode)
	}
	if rules.EmptyLine == nil {
		t.Fatal("expected EmptyLine rule to be registered")
	}
	if len(rules.EmptyLine.Wordlist) != 2 {
		t.Fatalf("got wordlist %#v", rules.EmptyLine.Wordlist)
	}
}

func TestCompgenWordlist(t *testing.T) {
	resetRules(t)
	ctx, out, _ := newTestCtx(t)
	compgenCmd(ctx, []string{"-W", "alpha beta alarm", "--", "al"})
	got := strings.Fields(out.String())
	want := []string{"alarm", "alpha"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestRegisterPopulatesBuiltinNames(t *testing.T) {
	resetRules(t)
	ctx, _, _ := newTestCtx(t)
	_ = ctx
	if len(rules.BuiltinNames) == 0 {
		t.Fatal("expected Register to populate BuiltinNames")
	}
	found := false
	for _, n := range rules.BuiltinNames {
		if n == "echo" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected \"echo\" among BuiltinNames")
	}
}
