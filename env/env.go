// Package env implements the scoped variable environment (C4): a stack
// of scopes holding named Variables with attributes, plus lookup and
// mutation policies per spec.md §4.4.
//
// This is an independent generalization of the teacher's (mvdan.cc/sh)
// expand.Environ/Variable model (expand/environ.go): the teacher's
// Variable is a flat, single-scope, attribute-light value used only to
// answer lookups for expansion. spec.md §4.4 additionally needs a scope
// *stack* (function locals), a ReadOnly/Exported/NameRef/Integer/Case
// attribute set, and scoped unset/set/push/pop operations, none of which
// the teacher's Environ models — those are grounded on
// original_source/brush-core/src/variables.rs and
// original_source/brush-core/src/shell/env.rs instead.
package env

import "fmt"

// Attr is a bitmask of variable attributes, set via `declare`/`export`/
// `readonly`/`local` and consulted by C5 (expansion) and C9 (executor).
type Attr uint16

const (
	Exported Attr = 1 << iota
	ReadOnly
	Integer      // declare -i: RHS of assignment is arithmetic
	Lowercase    // declare -l
	Uppercase    // declare -u
	NameRef      // declare -n: value names another variable
	IndexedArray // declare -a
	AssocArray   // declare -A
)

func (a Attr) Has(flag Attr) bool { return a&flag != 0 }

// Kind distinguishes a Variable's value shape.
type Kind uint8

const (
	Unset Kind = iota
	Scalar
	Indexed
	Associative
)

// Variable is one named shell variable.
type Variable struct {
	Declared bool // true once `declare`d or assigned, even if unset again
	Attrs    Attr
	Kind     Kind

	Str string            // Kind == Scalar or NameRef target name
	List []string          // Kind == Indexed, sparse by convention: index i lives at List[i] if present
	Map  map[string]string // Kind == Associative
}

// IsSet reports whether the variable currently holds a value (as
// opposed to being merely declared, e.g. `declare -i n` with no `=`).
func (v Variable) IsSet() bool { return v.Kind != Unset }

// ScalarStr returns the variable's value collapsed to a single string, per
// spec.md §4.4's get_str: scalar → value, indexed array → element [0],
// associative array → element ["0"] or "".
func (v Variable) ScalarStr() string {
	switch v.Kind {
	case Scalar:
		return v.Str
	case Indexed:
		if len(v.List) > 0 {
			return v.List[0]
		}
	case Associative:
		if s, ok := v.Map["0"]; ok {
			return s
		}
	}
	return ""
}

// ScopeKind selects which scope an operation targets.
type ScopeKind int

const (
	// Nearest is the innermost scope already holding the name, falling
	// back to global if undeclared anywhere (ordinary assignment). For
	// Declare, an undeclared name lands in the innermost scope instead.
	Nearest ScopeKind = iota
	// Local forces placement into the current (innermost) scope, per
	// the `local` builtin.
	Local
	// Global forces placement into the outermost scope, per `declare -g`.
	Global
)

// LookupPolicy controls how Get walks the scope stack.
type LookupPolicy int

const (
	// AnyScope searches from the innermost scope outward (ordinary `$x`
	// lookup and dynamic scoping of shell functions).
	AnyScope LookupPolicy = iota
	// LocalScope restricts the search to the innermost scope only, used
	// by `local -p`/completion introspection of just-declared locals.
	LocalScope
)

const maxNameRefDepth = 100

var errNameRefCycle = fmt.Errorf("env: nameref cycle exceeds depth %d", maxNameRefDepth)

type scope struct {
	vars map[string]*Variable
}

func newScope() *scope { return &scope{vars: make(map[string]*Variable)} }

// Env is the C4 variable environment: a stack of scopes, scope 0 always
// present and never popped (the global/top-level scope).
type Env struct {
	scopes []*scope
}

// New returns an Env with just the global scope.
func New() *Env {
	return &Env{scopes: []*scope{newScope()}}
}

// PushScope pushes a new local scope, per spec.md §4.4 push_scope(Local),
// called on function-call entry.
func (e *Env) PushScope() {
	e.scopes = append(e.scopes, newScope())
}

// PopScope pops the innermost scope, per spec.md §4.4 pop_scope(Local),
// called on function-call return. Popping the global scope panics: it is
// a caller bug (unbalanced push/pop), not a runtime error condition.
func (e *Env) PopScope() {
	if len(e.scopes) == 1 {
		panic("env: PopScope called with only the global scope present")
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Depth reports the number of scopes currently pushed, including global.
func (e *Env) Depth() int { return len(e.scopes) }

// Clone returns a deep copy of every scope and Variable, used when
// entering a subshell or command substitution per spec.md §5: the
// clone's mutations never propagate back to e.
func (e *Env) Clone() *Env {
	scopes := make([]*scope, len(e.scopes))
	for i, sc := range e.scopes {
		ns := newScope()
		for name, v := range sc.vars {
			cp := *v
			cp.List = append([]string(nil), v.List...)
			if v.Map != nil {
				cp.Map = make(map[string]string, len(v.Map))
				for k, mv := range v.Map {
					cp.Map[k] = mv
				}
			}
			ns.vars[name] = &cp
		}
		scopes[i] = ns
	}
	return &Env{scopes: scopes}
}

func (e *Env) innermost() *scope { return e.scopes[len(e.scopes)-1] }
func (e *Env) global() *scope    { return e.scopes[0] }

// rawLookup returns the variable and the scope index it was found in,
// without following NameRef indirection.
func (e *Env) rawLookup(name string, policy LookupPolicy) (*Variable, int, bool) {
	if policy == LocalScope {
		if v, ok := e.innermost().vars[name]; ok {
			return v, len(e.scopes) - 1, true
		}
		return nil, -1, false
	}
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].vars[name]; ok {
			return v, i, true
		}
	}
	return nil, -1, false
}

// Get resolves name per policy, following NameRef indirection with a
// cycle guard, per spec.md §4.4's "NameRef indirection is resolved on
// every access".
func (e *Env) Get(name string, policy LookupPolicy) (Variable, bool) {
	v, _, ok := e.rawLookup(name, policy)
	if !ok {
		return Variable{}, false
	}
	resolved, err := e.resolveNameRef(*v, policy)
	if err != nil {
		return Variable{}, false
	}
	return resolved, true
}

func (e *Env) resolveNameRef(v Variable, policy LookupPolicy) (Variable, error) {
	for i := 0; i < maxNameRefDepth; i++ {
		if !v.Attrs.Has(NameRef) || v.Kind != Scalar {
			return v, nil
		}
		next, _, ok := e.rawLookup(v.Str, policy)
		if !ok {
			return Variable{}, nil
		}
		v = *next
	}
	return Variable{}, errNameRefCycle
}

// GetStr is spec.md §4.4's get_str: the variable collapsed to a single
// string, or ("", false) if unset.
func (e *Env) GetStr(name string) (string, bool) {
	v, ok := e.Get(name, AnyScope)
	if !ok {
		return "", false
	}
	return v.ScalarStr(), true
}

// targetName resolves where an assignment through name should actually
// land: itself, unless name currently holds a NameRef, in which case the
// assignment follows the reference (spec.md §4.4, "assignment through a
// NameRef assigns to the pointed-to variable").
func (e *Env) targetName(name string) (string, error) {
	seen := map[string]bool{}
	for {
		if seen[name] {
			return "", errNameRefCycle
		}
		seen[name] = true
		v, _, ok := e.rawLookup(name, AnyScope)
		if !ok || !v.Attrs.Has(NameRef) || v.Kind != Scalar {
			return name, nil
		}
		name = v.Str
	}
}

// Set implements spec.md §4.4's set(name, literal, updater, policy,
// scope). value is either a Scalar string (kind Scalar) or an array
// (kind Indexed/Associative); updater, if non-nil, runs after placement
// to apply attribute changes (export/readonly/case-folding) and may
// itself transform the value (e.g. the Integer attribute's "RHS is
// arithmetic" rule is applied by the caller before Set is invoked, since
// arithmetic evaluation needs the full expression AST that env does not
// depend on — see interp's assignment path).
func (e *Env) Set(name string, value Variable, updater func(*Variable), sk ScopeKind) error {
	target, err := e.targetName(name)
	if err != nil {
		return err
	}
	existing, idx, found := e.rawLookup(target, AnyScope)
	if found && existing.Attrs.Has(ReadOnly) {
		return fmt.Errorf("env: %s: readonly variable", target)
	}

	var dest *scope
	switch sk {
	case Local:
		dest = e.innermost()
	case Global:
		dest = e.global()
	default:
		if found {
			dest = e.scopes[idx]
		} else {
			dest = e.global()
		}
	}

	nv := value
	nv.Declared = true
	if found && dest == e.scopes[idx] {
		nv.Attrs |= existing.Attrs &^ (ReadOnly | Exported)
		if existing.Attrs.Has(Exported) {
			nv.Attrs |= Exported
		}
	}
	applyCase(&nv)
	if updater != nil {
		updater(&nv)
	}
	dest.vars[target] = &nv
	return nil
}

func applyCase(v *Variable) {
	if v.Kind != Scalar {
		return
	}
	switch {
	case v.Attrs.Has(Lowercase):
		v.Str = toLower(v.Str)
	case v.Attrs.Has(Uppercase):
		v.Str = toUpper(v.Str)
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// Unset removes name from the first scope it is found in, unless
// ReadOnly, per spec.md §4.4.
func (e *Env) Unset(name string) error {
	v, idx, found := e.rawLookup(name, AnyScope)
	if !found {
		return nil
	}
	if v.Attrs.Has(ReadOnly) {
		return fmt.Errorf("env: %s: readonly variable", name)
	}
	delete(e.scopes[idx].vars, name)
	return nil
}

// Declare records name with the given attributes in scope without
// necessarily assigning a value (e.g. `declare -i n`, `export PATH`
// with no `=`), per spec.md §4.4's attribute-interaction rules.
func (e *Env) Declare(name string, attrs Attr, kind Kind, sk ScopeKind) {
	var dest *scope
	switch sk {
	case Local:
		dest = e.innermost()
	case Global:
		dest = e.global()
	default:
		if v, idx, found := e.rawLookup(name, AnyScope); found {
			dest = e.scopes[idx]
			v.Attrs |= attrs
			if kind != Unset {
				v.Kind = kind
			}
			v.Declared = true
			return
		}
		dest = e.innermost()
	}
	if v, ok := dest.vars[name]; ok {
		v.Attrs |= attrs
		if kind != Unset {
			v.Kind = kind
		}
		v.Declared = true
		return
	}
	dest.vars[name] = &Variable{Declared: true, Attrs: attrs, Kind: kind}
}

// Each calls fn for every variable visible from the innermost scope
// outward, shadowing duplicate names the way shell scoping requires;
// iteration stops early if fn returns false. Required by C5 to build
// the exported environment passed to spawned processes.
func (e *Env) Each(fn func(name string, v Variable) bool) {
	seen := make(map[string]bool)
	for i := len(e.scopes) - 1; i >= 0; i-- {
		for name, v := range e.scopes[i].vars {
			if seen[name] {
				continue
			}
			seen[name] = true
			if !fn(name, *v) {
				return
			}
		}
	}
}

// ExportedPairs returns "name=value" for every Exported variable
// visible, in the form required to spawn an external process (os/exec's
// Cmd.Env), per spec.md §4.4 "Exported variables are visible to child
// processes at spawn time".
func (e *Env) ExportedPairs() []string {
	var out []string
	e.Each(func(name string, v Variable) bool {
		if v.Attrs.Has(Exported) {
			out = append(out, name+"="+v.ScalarStr())
		}
		return true
	})
	return out
}
