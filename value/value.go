// Package value implements the runtime value domain shared by the
// compiler's constant pool and the VM's stack: a tagged union of the
// handful of kinds a program can produce, plus the lexical environment
// those values live in.
//
// Every mutable kind (*List, *Map, *Environment) is a Go pointer, and a
// Func holds its captured *Environment by pointer, so sharing and
// in-place mutation fall out of ordinary Go reference
// semantics and Go's own tracing collector reclaims cycles — there is no
// hand-rolled allocator here, matching the contract that the core only
// assumes a tracing GC over shared, mutably-borrowable cells.
package value

import "fmt"

// Kind identifies which case of the tagged union a Value holds.
type Kind int

const (
	KindNil Kind = iota
	KindStr
	KindNum
	KindAstStr
	KindFunc
	KindHostFunc
	KindHostClosure
	KindCatchResult
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindStr:
		return "string"
	case KindNum:
		return "number"
	case KindAstStr:
		return "string"
	case KindFunc:
		return "function"
	case KindHostFunc:
		return "function"
	case KindHostClosure:
		return "function"
	case KindCatchResult:
		return "catch-result"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the interface every runtime value implements. It deliberately
// carries no behaviour beyond identifying its Kind; all other operations
// (stringification, truthiness, coercion, equality) are free functions so
// that new kinds can't silently skip one of them.
type Value interface {
	Kind() Kind
}

// Nil is the absence of a value. The zero value is ready to use.
type Nil struct{}

func (Nil) Kind() Kind { return KindNil }

// Str is a plain string value.
type Str struct {
	Text string
}

func (Str) Kind() Kind { return KindStr }

// Num is an IEEE-754 double.
type Num struct {
	N float64
}

func (Num) Kind() Kind { return KindNum }

// AstStr is a string literal carried over from the parser, with its
// numeric interpretation computed once (if the text is numeric-shaped) so
// the VM never has to re-parse it. It behaves as a Str for string
// operations and as a Num when Numeric is non-nil and a numeric context
// applies.
type AstStr struct {
	Text    string
	Numeric *float64
}

func (AstStr) Kind() Kind { return KindAstStr }

// Func is a user-defined closure: its parameter names, the bytecode range
// implementing its body (as offsets into the single linked program
// image), and the environment it closed over at the point of creation.
type Func struct {
	Params   []string
	BodyAddr int
	BodySize int
	Captured *Environment
}

func (Func) Kind() Kind { return KindFunc }

// HostFunc is a built-in implemented by the host (e.g. add, eq, not).
type HostFunc struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (HostFunc) Kind() Kind { return KindHostFunc }

// HostClosure is a built-in that has captured some runtime state, such as
// a bound method like list.push.
type HostClosure struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (HostClosure) Kind() Kind { return KindHostClosure }

// CatchResult is the outcome of a catch block: whether the body completed
// (Success) and either its produced value or the thrown value (Inner).
type CatchResult struct {
	Success bool
	Inner   Value
}

func (CatchResult) Kind() Kind { return KindCatchResult }

// List is an ordered, mutable, shared sequence of values. It is always
// held by pointer so every holder observes the same backing storage.
type List struct {
	Items []Value
}

func (*List) Kind() Kind { return KindList }

// NewList builds a List from the given items, copying the slice header
// only (not the backing array already owned by the caller is assumed
// to be theirs to keep using, so callers should pass a fresh slice).
func NewList(items []Value) *List {
	return &List{Items: items}
}

// Map is a mutable, shared string-keyed dictionary. Keys is kept in
// insertion order purely so `keys`/`values` iterate deterministically;
// the spec does not require this, but nothing forbids it either.
type Map struct {
	Entries map[string]Value
	Keys    []string
}

func (*Map) Kind() Kind { return KindMap }

// NewMap creates an empty Map ready for Set calls.
func NewMap() *Map {
	return &Map{Entries: make(map[string]Value)}
}

// Get returns the value bound to key and whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.Entries[key]
	return v, ok
}

// Set inserts or overwrites the value bound to key, tracking insertion
// order for freshly added keys.
func (m *Map) Set(key string, v Value) {
	if _, exists := m.Entries[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = v
}

// Delete removes key from the map, if present.
func (m *Map) Delete(key string) {
	if _, exists := m.Entries[key]; !exists {
		return
	}
	delete(m.Entries, key)
	for i, k := range m.Keys {
		if k == key {
			m.Keys = append(m.Keys[:i], m.Keys[i+1:]...)
			break
		}
	}
}

// ThrownError wraps a Value thrown with {throw;} (or by a built-in) so it
// can travel as a Go error across the VM's call boundaries until a catch
// frame claims it or it escapes the program uncaught.
type ThrownError struct {
	Val Value
}

func (e *ThrownError) Error() string {
	return fmt.Sprintf("uncaught throw: %s", ToDisplayString(e.Val))
}

// Throwf builds a *ThrownError carrying a diagnostic Str of the
// conventional `<op:message>` shape built-ins use.
func Throwf(op, format string, args ...any) error {
	return &ThrownError{Val: Str{Text: fmt.Sprintf("<%s:%s>", op, fmt.Sprintf(format, args...))}}
}
