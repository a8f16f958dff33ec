package interp

import "strings"

// Trap names that are not OS signals, per spec.md §4.12.
const (
	TrapExit  = "EXIT"
	TrapErr   = "ERR"
	TrapDebug = "DEBUG"
	TrapReturn = "RETURN"
)

// TrapTable is the C12 component: a map from trap/signal name to the
// raw handler command text, re-parsed on every firing (spec.md §4.12,
// "so that the text can be re-parsed per invocation... allowing
// self-modifying handlers"). Grounded on
// original_source/shell/src/builtins/trap.rs; the teacher has no trap
// support (mvdan.cc/sh is a non-interactive batch interpreter).
type TrapTable struct {
	handlers map[string]string
	ignored  map[string]bool
	// pending holds signal names observed but not yet dispatched,
	// consumed at the executor's next safe point per spec.md §4.12
	// ("handlers do not interrupt mid-expansion").
	pending []string
}

func NewTrapTable() *TrapTable {
	return &TrapTable{handlers: make(map[string]string), ignored: make(map[string]bool)}
}

// Clone returns an independent copy of t, for spec.md §5/§9's subshell
// semantics: `trap` run inside `(...)`/`$(...)` must not reach the
// parent's handlers.
func (t *TrapTable) Clone() *TrapTable {
	out := &TrapTable{
		handlers: make(map[string]string, len(t.handlers)),
		ignored:  make(map[string]bool, len(t.ignored)),
		pending:  append([]string(nil), t.pending...),
	}
	for k, v := range t.handlers {
		out.handlers[k] = v
	}
	for k, v := range t.ignored {
		out.ignored[k] = v
	}
	return out
}

// Set installs command as the handler for name ("" means ignore, per
// `trap '' SIGNAL`).
func (t *TrapTable) Set(name, command string) {
	name = strings.ToUpper(strings.TrimPrefix(name, "SIG"))
	if command == "" {
		t.ignored[name] = true
		delete(t.handlers, name)
		return
	}
	delete(t.ignored, name)
	t.handlers[name] = command
}

// Reset restores name to its default (un-ignored, unhandled) disposition.
func (t *TrapTable) Reset(name string) {
	name = strings.ToUpper(strings.TrimPrefix(name, "SIG"))
	delete(t.handlers, name)
	delete(t.ignored, name)
}

// Handler returns the raw command text registered for name, if any.
func (t *TrapTable) Handler(name string) (string, bool) {
	name = strings.ToUpper(strings.TrimPrefix(name, "SIG"))
	cmd, ok := t.handlers[name]
	return cmd, ok
}

// Ignored reports whether name is explicitly set to be ignored.
func (t *TrapTable) Ignored(name string) bool {
	name = strings.ToUpper(strings.TrimPrefix(name, "SIG"))
	return t.ignored[name]
}

// Raise records that name occurred, to be dispatched at the next safe
// point (called from a signal.Notify consumer goroutine).
func (t *TrapTable) Raise(name string) {
	t.pending = append(t.pending, strings.ToUpper(strings.TrimPrefix(name, "SIG")))
}

// DrainPending returns and clears the signals observed since the last
// drain, called by the executor between AST nodes.
func (t *TrapTable) DrainPending() []string {
	if len(t.pending) == 0 {
		return nil
	}
	out := t.pending
	t.pending = nil
	return out
}

// Names returns every trap name with a registered (non-ignore)
// handler, for `trap -p`.
func (t *TrapTable) Names() []string {
	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	return names
}
