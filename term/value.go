package term

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Value is the tagged variant every term value implements: atoms, integers,
// booleans, strings, lists, dictionaries, symbols (variables), predicates
// (compound terms), instance literals, and opaque external-instance
// handles.
type Value interface {
	// Equal reports whether this value is syntactically identical to other.
	Equal(other Value) bool
	// IsGround reports whether the value contains no unbound variables.
	IsGround() bool
	// Hash returns a content hash of the value.
	Hash() uint64
	fmt.Stringer
}

// Term wraps a Value with an optional source span, used for diagnostics.
type Term struct {
	Value    Value
	Location *Location
}

// NewTerm returns a new Term wrapping v with no location.
func NewTerm(v Value) *Term {
	return &Term{Value: v}
}

// WithLocation returns a copy of the term carrying loc.
func (t *Term) WithLocation(loc *Location) *Term {
	return &Term{Value: t.Value, Location: loc}
}

// Equal reports whether two terms hold equal values.
func (t *Term) Equal(other *Term) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Value.Equal(other.Value)
}

// Hash returns the term's value's hash.
func (t *Term) Hash() uint64 {
	return t.Value.Hash()
}

// IsGround reports whether the term's value contains no unbound variables.
func (t *Term) IsGround() bool {
	return t.Value.IsGround()
}

func (t *Term) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Value.String()
}

// hashString mixes a type tag and payload into a single hash so that values
// of different kinds with coincidentally similar encodings never collide
// silently (e.g. Integer(1) vs String("1")).
func hashString(tag byte, s string) uint64 {
	h := xxhash.New()
	h.Write([]byte{tag})
	_, _ = h.WriteString(s)
	return h.Sum64()
}

// --- Integer -----------------------------------------------------------

// Integer is a signed 64-bit integer atom.
type Integer int64

func (i Integer) Equal(other Value) bool {
	o, ok := other.(Integer)
	return ok && i == o
}
func (Integer) IsGround() bool { return true }
func (i Integer) Hash() uint64 { return hashString('i', strconv.FormatInt(int64(i), 10)) }
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

// --- Boolean -------------------------------------------------------------

// Boolean is a true/false atom.
type Boolean bool

func (b Boolean) Equal(other Value) bool {
	o, ok := other.(Boolean)
	return ok && b == o
}
func (Boolean) IsGround() bool { return true }
func (b Boolean) Hash() uint64 { return hashString('b', strconv.FormatBool(bool(b))) }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// --- String --------------------------------------------------------------

// String is an opaque string atom; equality only.
type String string

func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && s == o
}
func (String) IsGround() bool { return true }
func (s String) Hash() uint64 { return hashString('s', string(s)) }
func (s String) String() string { return strconv.Quote(string(s)) }

// --- Symbol ----------------------------------------------------------------

// Symbol is a logic variable name. Symbol values are also reused as
// dictionary keys and instance-literal tags, where they act as plain
// labels rather than unification targets.
type Symbol string

func (s Symbol) Equal(other Value) bool {
	o, ok := other.(Symbol)
	return ok && s == o
}

// IsGround is always false for a bare Symbol value: a symbol that has been
// bound is represented by the bound Term, not by this Value, once the VM
// has dereferenced it (Plug). An un-dereferenced Symbol is by definition
// unbound.
func (Symbol) IsGround() bool    { return false }
func (s Symbol) Hash() uint64    { return hashString('v', string(s)) }
func (s Symbol) String() string  { return string(s) }

// --- List ------------------------------------------------------------------

// List is an ordered sequence of terms.
type List []*Term

func (l List) Equal(other Value) bool {
	o, ok := other.(List)
	if !ok || len(l) != len(o) {
		return false
	}
	for i := range l {
		if !l[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (l List) IsGround() bool {
	for _, e := range l {
		if !e.IsGround() {
			return false
		}
	}
	return true
}

func (l List) Hash() uint64 {
	h := xxhash.New()
	h.Write([]byte{'l'})
	for _, e := range l {
		var buf [8]byte
		putUint64(buf[:], e.Hash())
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// --- Dictionary --------------------------------------------------------------

// DictEntry is a single key/value pair of a Dictionary.
type DictEntry struct {
	Key   Symbol
	Value *Term
}

// Dictionary is a mapping from Symbol to Term. Keys are unique; equality
// is iteration-order insensitive. Construction preserves insertion
// order so Dictionary.String() and trace rendering are deterministic.
type Dictionary []DictEntry

// Get returns the term bound to key and whether it was present.
func (d Dictionary) Get(key Symbol) (*Term, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the dictionary's keys in insertion order.
func (d Dictionary) Keys() []Symbol {
	keys := make([]Symbol, len(d))
	for i, e := range d {
		keys[i] = e.Key
	}
	return keys
}

// Equal implements exact-key-set, order-insensitive equality: two
// dictionaries unify only when they have identical key sets and every
// shared key's value unifies.
func (d Dictionary) Equal(other Value) bool {
	o, ok := other.(Dictionary)
	if !ok || len(d) != len(o) {
		return false
	}
	for _, e := range d {
		v, ok := o.Get(e.Key)
		if !ok || !e.Value.Equal(v) {
			return false
		}
	}
	return true
}

func (d Dictionary) IsGround() bool {
	for _, e := range d {
		if !e.Value.IsGround() {
			return false
		}
	}
	return true
}

func (d Dictionary) Hash() uint64 {
	// Order-insensitive: sum per-entry hashes instead of hashing the
	// serialized (order-dependent) form.
	var sum uint64
	for _, e := range d {
		sum += hashString('k', string(e.Key)) ^ e.Value.Hash()
	}
	return sum
}

func (d Dictionary) String() string {
	sorted := make([]DictEntry, len(d))
	copy(sorted, d)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	parts := make([]string, len(sorted))
	for i, e := range sorted {
		parts[i] = fmt.Sprintf("%s: %s", e.Key, e.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// --- Call (compound term / predicate application) ---------------------------

// Call is a compound term: a functor name applied to a sequence of
// argument terms. Rule heads and body predicate invocations are
// represented as Call; instance literals are InstanceLiteral values.
type Call struct {
	Name string
	Args []*Term
}

// Arity returns the number of arguments.
func (c *Call) Arity() int { return len(c.Args) }

func (c *Call) Equal(other Value) bool {
	o, ok := other.(*Call)
	if !ok || c.Name != o.Name || len(c.Args) != len(o.Args) {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (c *Call) IsGround() bool {
	for _, a := range c.Args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

func (c *Call) Hash() uint64 {
	h := xxhash.New()
	h.Write([]byte{'c'})
	_, _ = h.WriteString(c.Name)
	for _, a := range c.Args {
		var buf [8]byte
		putUint64(buf[:], a.Hash())
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

// --- InstanceLiteral -----------------------------------------------------

// InstanceLiteral is a syntactic request to construct a host instance:
// `Tag{field: value, ...}`.
type InstanceLiteral struct {
	Tag    Symbol
	Fields Dictionary
}

func (il *InstanceLiteral) Equal(other Value) bool {
	o, ok := other.(*InstanceLiteral)
	return ok && il.Tag == o.Tag && il.Fields.Equal(o.Fields)
}

func (il *InstanceLiteral) IsGround() bool { return il.Fields.IsGround() }

func (il *InstanceLiteral) Hash() uint64 {
	return hashString('T', string(il.Tag)) ^ il.Fields.Hash()
}

func (il *InstanceLiteral) String() string {
	return fmt.Sprintf("%s%s", il.Tag, il.Fields.String())
}

// --- ExternalInstance ------------------------------------------------------

// ExternalInstance is an opaque handle owned by the host, identified by an
// id the engine never interprets.
type ExternalInstance struct {
	ID      uint64
	Literal *InstanceLiteral // optional: set if this handle originated from an InstanceLiteral
}

func (e *ExternalInstance) Equal(other Value) bool {
	o, ok := other.(*ExternalInstance)
	return ok && e.ID == o.ID
}

func (*ExternalInstance) IsGround() bool { return true }

func (e *ExternalInstance) Hash() uint64 {
	return hashString('x', strconv.FormatUint(e.ID, 10))
}

func (e *ExternalInstance) String() string {
	return fmt.Sprintf("#<external:%d>", e.ID)
}
